package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/providers/scrape"
)

// TranscriptScraper is the slice of the scrape client this service needs.
type TranscriptScraper interface {
	ScrapeTranscript(ctx context.Context, token, videoURL string) (string, error)
}

// TranscriptService serves video transcripts, scraping on a cache miss and
// persisting the result. A cached transcript is returned without any external
// call and is never overwritten.
type TranscriptService struct {
	videos  domain.VideoRepository
	scraper TranscriptScraper
	logger  zerolog.Logger
}

// NewTranscriptService wires the transcript service.
func NewTranscriptService(videos domain.VideoRepository, scraper TranscriptScraper, logger zerolog.Logger) *TranscriptService {
	return &TranscriptService{
		videos:  videos,
		scraper: scraper,
		logger:  logger.With().Str("component", "transcript_service").Logger(),
	}
}

// Get returns the transcript for a video, fetching and caching it on first
// use. The token authenticates the scrape call on a cache miss.
func (s *TranscriptService) Get(ctx context.Context, videoID, token string) (string, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return "", err
	}
	if video.HasTranscript() {
		return *video.Transcript, nil
	}

	transcript, err := s.scraper.ScrapeTranscript(ctx, token, scrape.NormalizeVideoURL(video.URL))
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}
	if err := s.videos.SetTranscript(ctx, videoID, transcript); err != nil {
		return "", fmt.Errorf("store transcript: %w", err)
	}
	s.logger.Debug().Str("video_id", videoID).Int("length", len(transcript)).Msg("transcript cached")
	return transcript, nil
}
