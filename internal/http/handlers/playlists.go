package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/credentials"
	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/service"
	"server/pkg/zip"
)

type playlistResponse struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	VideoCount int       `json:"videoCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type videoResponse struct {
	ID            string               `json:"id"`
	VideoID       string               `json:"videoId"`
	Title         string               `json:"title"`
	Thumbnail     string               `json:"thumbnail,omitempty"`
	Duration      string               `json:"duration,omitempty"`
	URL           string               `json:"url"`
	HasTranscript bool                 `json:"hasTranscript"`
	Infographic   *infographicResponse `json:"infographic,omitempty"`
}

type playlistDetailResponse struct {
	playlistResponse
	Videos []videoResponse `json:"videos"`
}

func toPlaylistResponse(p domain.Playlist) playlistResponse {
	return playlistResponse{
		ID:         p.ID,
		URL:        p.URL,
		Title:      p.Title,
		VideoCount: p.VideoCount,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toPlaylistDetailResponse(detail *service.PlaylistDetail) playlistDetailResponse {
	out := playlistDetailResponse{
		playlistResponse: toPlaylistResponse(detail.Playlist),
		Videos:           make([]videoResponse, 0, len(detail.Videos)),
	}
	for _, v := range detail.Videos {
		vr := videoResponse{
			ID:            v.ID,
			VideoID:       v.SourceID,
			Title:         v.Title,
			Thumbnail:     v.Thumbnail,
			Duration:      v.Duration,
			URL:           v.URL,
			HasTranscript: v.HasTranscript(),
		}
		if ig, ok := detail.Infographics[v.ID]; ok {
			igr := toInfographicResponse(ig)
			vr.Infographic = &igr
		}
		out.Videos = append(out.Videos, vr)
	}
	return out
}

type extractRequest struct {
	URL string `json:"url"`
}

// Extract scrapes a playlist URL and stores its videos for the user.
func (a *App) Extract(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		a.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req extractRequest
	if !a.decodeBody(w, r, &req) {
		return
	}
	playlistURL := strings.TrimSpace(req.URL)
	if !isPlaylistURL(playlistURL) {
		a.writeError(w, http.StatusBadRequest, "a valid YouTube playlist URL is required")
		return
	}

	keys, err := a.Resolver.Resolve(user, credentials.CapabilityExtract)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	detail, err := a.Playlists.Extract(r.Context(), user.ID, playlistURL, keys.ApifyAPIToken)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toPlaylistDetailResponse(detail))
}

func isPlaylistURL(raw string) bool {
	if raw == "" {
		return false
	}
	return strings.Contains(raw, "youtube.com/playlist") || strings.Contains(raw, "list=")
}

// ListPlaylists returns the user's playlists.
func (a *App) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		a.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	playlists, err := a.Playlists.List(r.Context(), user.ID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	out := make([]playlistResponse, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, toPlaylistResponse(p))
	}
	a.writeJSON(w, http.StatusOK, out)
}

// GetPlaylist returns one playlist with its videos and their infographic
// states.
func (a *App) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		a.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	playlistID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(playlistID); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}
	detail, err := a.Playlists.Get(r.Context(), user.ID, playlistID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toPlaylistDetailResponse(detail))
}

// PlaylistInfographics lists all infographic rows for a playlist's videos.
func (a *App) PlaylistInfographics(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		a.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	playlistID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(playlistID); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}
	infographics, err := a.Playlists.Infographics(r.Context(), user.ID, playlistID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	out := make([]infographicResponse, 0, len(infographics))
	for _, ig := range infographics {
		out = append(out, toInfographicResponse(ig))
	}
	a.writeJSON(w, http.StatusOK, out)
}

// DownloadInfographics streams a zip of every completed infographic image in
// the playlist.
func (a *App) DownloadInfographics(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		a.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	playlistID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(playlistID); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	infographics, err := a.Playlists.Infographics(r.Context(), user.ID, playlistID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	entries := make([]zip.Entry, 0, len(infographics))
	for _, ig := range infographics {
		if ig.Status != domain.InfographicStatusCompleted || ig.ImageURL == "" {
			continue
		}
		data, err := a.Images.Download(r.Context(), ig.ImageURL)
		if err != nil {
			a.Logger.Warn().Err(err).Str("video_id", ig.VideoID).Msg("skipping image in archive")
			continue
		}
		entries = append(entries, zip.Entry{Name: ig.VideoID + ".png", Data: data})
	}
	if len(entries) == 0 {
		a.writeError(w, http.StatusNotFound, "no completed infographics to download")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "infographics-"+playlistID+".zip"))
	if err := zip.Write(w, entries); err != nil {
		a.Logger.Error().Err(err).Str("playlist_id", playlistID).Msg("cannot stream archive")
	}
}
