package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/credentials"
	"server/internal/domain"
	"server/internal/middleware"
)

type infographicResponse struct {
	ID             string    `json:"id"`
	VideoID        string    `json:"videoId"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	AnalysisReport string    `json:"analysisReport,omitempty"`
	DesignPrompt   string    `json:"designPrompt,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toInfographicResponse(ig domain.Infographic) infographicResponse {
	return infographicResponse{
		ID:             ig.ID,
		VideoID:        ig.VideoID,
		ImageURL:       ig.ImageURL,
		AnalysisReport: ig.AnalysisReport,
		DesignPrompt:   ig.DesignPrompt,
		Status:         string(ig.Status),
		CreatedAt:      ig.CreatedAt,
		UpdatedAt:      ig.UpdatedAt,
	}
}

type jobResponse struct {
	JobID          string          `json:"jobId"`
	PlaylistID     string          `json:"playlistId"`
	PlaylistTitle  string          `json:"playlistTitle,omitempty"`
	VideoIDs       []string        `json:"videoIds"`
	Status         string          `json:"status"`
	Progress       int             `json:"progress"`
	CurrentVideoID *string         `json:"currentVideoId"`
	CurrentStep    *string         `json:"currentStep"`
	Options        json.RawMessage `json:"options,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func toJobResponse(j domain.ProcessingJob, playlistTitle string) jobResponse {
	return jobResponse{
		JobID:          j.ID,
		PlaylistID:     j.PlaylistID,
		PlaylistTitle:  playlistTitle,
		VideoIDs:       j.VideoIDs,
		Status:         string(j.Status),
		Progress:       j.Progress,
		CurrentVideoID: j.CurrentVideoID,
		CurrentStep:    j.CurrentStep,
		Options:        j.Options,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

type generateRequest struct {
	PlaylistID string                     `json:"playlistId"`
	VideoIDs   []string                   `json:"videoIds"`
	Options    *domain.InfographicOptions `json:"options"`
}

// Generate queues an infographic generation job and responds 202 with the
// job handle for polling.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		a.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req generateRequest
	if !a.decodeBody(w, r, &req) {
		return
	}
	if _, err := uuid.Parse(req.PlaylistID); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}
	if len(req.VideoIDs) == 0 {
		a.writeError(w, http.StatusBadRequest, "at least one video must be selected")
		return
	}

	keys, err := a.Resolver.Resolve(user, credentials.CapabilityGenerate)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	opts := req.Options
	if opts == nil {
		opts = &domain.InfographicOptions{}
	}
	opts.Normalize(middleware.LocaleFromContext(r.Context()))

	job, err := a.Infographics.CreateJob(r.Context(), user.ID, req.PlaylistID, req.VideoIDs, keys, opts)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusAccepted, map[string]any{
		"jobId":       job.ID,
		"status":      string(job.Status),
		"totalVideos": len(job.VideoIDs),
		"progress":    0,
	})
}

// JobStatus returns the polling view of one job.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		a.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	jobID := chi.URLParam(r, "jobID")
	if _, err := uuid.Parse(jobID); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	job, err := a.Infographics.GetJob(r.Context(), user.ID, jobID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toJobResponse(*job, ""))
}

// ListJobs returns the user's job history across all playlists.
func (a *App) ListJobs(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		a.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	jobs, err := a.Infographics.ListJobs(r.Context(), user.ID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j.Job, j.PlaylistTitle))
	}
	a.writeJSON(w, http.StatusOK, out)
}

// GetInfographic returns the infographic generated for one video.
func (a *App) GetInfographic(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		a.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	videoID := chi.URLParam(r, "videoID")
	if _, err := uuid.Parse(videoID); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid video id")
		return
	}
	ig, err := a.Infographics.GetByVideo(r.Context(), user.ID, videoID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toInfographicResponse(*ig))
}
