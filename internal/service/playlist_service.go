package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/providers/scrape"
)

// PlaylistScraper is the slice of the scrape client this service needs.
type PlaylistScraper interface {
	ScrapePlaylist(ctx context.Context, token, playlistURL string) ([]scrape.PlaylistItem, error)
}

// PlaylistDetail bundles a playlist with its videos and their infographic
// states for detail views.
type PlaylistDetail struct {
	Playlist domain.Playlist
	Videos   []domain.Video
	// Infographics is keyed by video id; videos without a row are absent.
	Infographics map[string]domain.Infographic
}

// PlaylistService extracts playlists through the scraper and serves stored
// playlist data.
type PlaylistService struct {
	playlists    domain.PlaylistRepository
	videos       domain.VideoRepository
	infographics domain.InfographicRepository
	scraper      PlaylistScraper
	logger       zerolog.Logger
}

// NewPlaylistService wires the playlist service.
func NewPlaylistService(
	playlists domain.PlaylistRepository,
	videos domain.VideoRepository,
	infographics domain.InfographicRepository,
	scraper PlaylistScraper,
	logger zerolog.Logger,
) *PlaylistService {
	return &PlaylistService{
		playlists:    playlists,
		videos:       videos,
		infographics: infographics,
		scraper:      scraper,
		logger:       logger.With().Str("component", "playlist_service").Logger(),
	}
}

// Extract scrapes the playlist URL with the given token, upserts the playlist
// and all of its videos for the user, and returns the stored result.
// Re-extracting a known URL refreshes metadata without losing transcripts.
func (s *PlaylistService) Extract(ctx context.Context, userID, playlistURL, token string) (*PlaylistDetail, error) {
	items, err := s.scraper.ScrapePlaylist(ctx, token, playlistURL)
	if err != nil {
		return nil, fmt.Errorf("extract playlist: %w", err)
	}

	title := "Untitled Playlist"
	if info := items[0].PlaylistInfo; info != nil && info.PlaylistTitle != "" {
		title = info.PlaylistTitle
	}

	playlist, err := s.playlists.UpsertByURL(ctx, &domain.Playlist{
		UserID:     userID,
		URL:        playlistURL,
		Title:      title,
		VideoCount: len(items),
	})
	if err != nil {
		return nil, fmt.Errorf("store playlist: %w", err)
	}

	videos := make([]domain.Video, 0, len(items))
	for _, item := range items {
		videoTitle := item.VideoTitle
		if videoTitle == "" {
			videoTitle = "Untitled Video"
		}
		video, err := s.videos.UpsertBySourceID(ctx, &domain.Video{
			SourceID:   scrape.ExtractVideoID(item.VideoLink),
			PlaylistID: playlist.ID,
			Title:      videoTitle,
			Thumbnail:  item.Thumbnail,
			Duration:   item.Duration,
			URL:        item.VideoLink,
		})
		if err != nil {
			return nil, fmt.Errorf("store video: %w", err)
		}
		videos = append(videos, *video)
	}

	s.logger.Info().
		Str("playlist_id", playlist.ID).
		Int("videos", len(videos)).
		Msg("playlist extracted")

	return &PlaylistDetail{Playlist: *playlist, Videos: videos}, nil
}

// List returns the user's playlists, most recent first.
func (s *PlaylistService) List(ctx context.Context, userID string) ([]domain.Playlist, error) {
	return s.playlists.ListByUser(ctx, userID)
}

// Get returns a playlist detail view. Playlists belonging to other users are
// reported as not found.
func (s *PlaylistService) Get(ctx context.Context, userID, playlistID string) (*PlaylistDetail, error) {
	playlist, err := s.getOwned(ctx, userID, playlistID)
	if err != nil {
		return nil, err
	}
	videos, err := s.videos.ListByPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	infographics, err := s.infographics.ListByPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	byVideo := make(map[string]domain.Infographic, len(infographics))
	for _, ig := range infographics {
		byVideo[ig.VideoID] = ig
	}
	return &PlaylistDetail{Playlist: *playlist, Videos: videos, Infographics: byVideo}, nil
}

// Infographics returns every infographic row for the playlist's videos.
func (s *PlaylistService) Infographics(ctx context.Context, userID, playlistID string) ([]domain.Infographic, error) {
	if _, err := s.getOwned(ctx, userID, playlistID); err != nil {
		return nil, err
	}
	return s.infographics.ListByPlaylist(ctx, playlistID)
}

func (s *PlaylistService) getOwned(ctx context.Context, userID, playlistID string) (*domain.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return playlist, nil
}
