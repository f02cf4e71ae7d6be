package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"server/internal/credentials"
	"server/internal/domain"
	"server/internal/providers/image"
	"server/internal/storage"
)

// Step labels surfaced to polling clients. Advisory only: they describe the
// pipeline stage of the current video and carry no state-machine meaning.
const (
	stepTranscript   = "Getting transcript..."
	stepAnalyzing    = "Analyzing content..."
	stepDesigning    = "Generating design prompt..."
	stepRendering    = "Generating image..."
	stepSaving       = "Saving..."
	stepVideoDone    = "Completed!"
	stepVideoFailed  = "Failed"
	stepJobCompleted = "Completed"
)

// ContentAnalyzer produces analysis reports and design prompts.
type ContentAnalyzer interface {
	AnalyzeContent(ctx context.Context, transcript, apiKey string, opts domain.InfographicOptions) (string, error)
	GenerateDesignPrompt(ctx context.Context, report, apiKey string, opts domain.InfographicOptions) (string, error)
}

// TranscriptGetter serves cached-or-scraped transcripts.
type TranscriptGetter interface {
	Get(ctx context.Context, videoID, token string) (string, error)
}

// JobWithPlaylist is a job joined with the title of the playlist it ran on,
// for history listings.
type JobWithPlaylist struct {
	Job           domain.ProcessingJob
	PlaylistTitle string
}

// InfographicService runs the asynchronous generation pipeline. One job
// processes its videos strictly in order inside a single goroutine; per-video
// failures are absorbed so one broken video never aborts the batch.
type InfographicService struct {
	playlists    domain.PlaylistRepository
	videos       domain.VideoRepository
	infographics domain.InfographicRepository
	jobs         domain.JobRepository
	transcripts  TranscriptGetter
	analyzer     ContentAnalyzer
	images       image.Generator
	creds        *credentials.JobStore
	files        *storage.FileStore
	logger       zerolog.Logger
}

// NewInfographicService wires the orchestrator. files may be nil; when set,
// finished images are additionally mirrored to local disk.
func NewInfographicService(
	playlists domain.PlaylistRepository,
	videos domain.VideoRepository,
	infographics domain.InfographicRepository,
	jobs domain.JobRepository,
	transcripts TranscriptGetter,
	analyzer ContentAnalyzer,
	images image.Generator,
	creds *credentials.JobStore,
	files *storage.FileStore,
	logger zerolog.Logger,
) *InfographicService {
	return &InfographicService{
		playlists:    playlists,
		videos:       videos,
		infographics: infographics,
		jobs:         jobs,
		transcripts:  transcripts,
		analyzer:     analyzer,
		images:       images,
		creds:        creds,
		files:        files,
		logger:       logger.With().Str("component", "infographic_service").Logger(),
	}
}

// CreateJob records a PENDING job for the selected videos, parks the resolved
// credentials in the in-memory store and starts the pipeline goroutine. The
// returned job is what the 202 response echoes back.
func (s *InfographicService) CreateJob(
	ctx context.Context,
	userID, playlistID string,
	videoIDs []string,
	keys credentials.Keys,
	opts *domain.InfographicOptions,
) (*domain.ProcessingJob, error) {
	if len(videoIDs) == 0 {
		return nil, domain.ErrNoVideosSelected
	}
	playlist, err := s.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.UserID != userID {
		return nil, domain.ErrNotFound
	}

	job := &domain.ProcessingJob{
		PlaylistID: playlistID,
		VideoIDs:   videoIDs,
		Status:     domain.JobStatusPending,
		Options:    domain.MarshalOptions(opts),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.creds.Put(job.ID, keys, opts)
	go s.processJob(job.ID)

	s.logger.Info().
		Str("job_id", job.ID).
		Str("playlist_id", playlistID).
		Int("videos", len(videoIDs)).
		Msg("job queued")
	return job, nil
}

// processJob drives one job to completion. It runs detached from the request
// context; credentials are purged on every exit path.
func (s *InfographicService) processJob(jobID string) {
	ctx := context.Background()
	defer s.creds.Delete(jobID)

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("job vanished before processing")
		return
	}
	keys, opts, ok := s.creds.Get(jobID)
	if !ok {
		s.logger.Error().Str("job_id", jobID).Msg("job credentials missing, abandoning")
		return
	}
	options := domain.InfographicOptions{}
	if opts != nil {
		options = *opts
	}
	options.Normalize("")

	if err := s.jobs.SetStatus(ctx, jobID, domain.JobStatusProcessing); err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("cannot mark job processing")
		return
	}

	total := len(job.VideoIDs)
	for attempted, videoID := range job.VideoIDs {
		vid := videoID
		if err := s.jobs.SetCurrent(ctx, jobID, &vid, stepTranscript); err != nil {
			s.logger.Error().Err(err).Str("job_id", jobID).Msg("cannot update job pointer")
		}

		if err := s.generateInfographic(ctx, jobID, videoID, keys, options); err != nil {
			// The video is already marked FAILED; the job keeps going.
			s.logger.Error().Err(err).
				Str("job_id", jobID).
				Str("video_id", videoID).
				Msg("video generation failed")
		}

		progress := (100*(attempted+1) + total/2) / total
		if err := s.jobs.SetProgress(ctx, jobID, progress); err != nil {
			s.logger.Error().Err(err).Str("job_id", jobID).Msg("cannot update job progress")
		}
	}

	s.creds.Delete(jobID)
	if err := s.jobs.Finish(ctx, jobID, stepJobCompleted); err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("cannot finish job")
		return
	}
	s.logger.Info().Str("job_id", jobID).Int("videos", total).Msg("job completed")
}

// generateInfographic runs the per-video pipeline. Any failure marks the
// video's infographic FAILED before the error is returned to the job loop.
func (s *InfographicService) generateInfographic(
	ctx context.Context,
	jobID, videoID string,
	keys credentials.Keys,
	opts domain.InfographicOptions,
) error {
	existing, err := s.infographics.GetByVideoID(ctx, videoID)
	if err == nil && existing.Status == domain.InfographicStatusCompleted {
		// Already generated in an earlier job, skip the expensive pipeline.
		s.setStep(ctx, jobID, stepVideoDone)
		return nil
	}

	fail := func(cause error) error {
		if err := s.infographics.UpsertStatus(ctx, videoID, domain.InfographicStatusFailed); err != nil {
			s.logger.Error().Err(err).Str("video_id", videoID).Msg("cannot mark infographic failed")
		}
		s.setStep(ctx, jobID, stepVideoFailed)
		return cause
	}

	if err := s.infographics.UpsertStatus(ctx, videoID, domain.InfographicStatusProcessing); err != nil {
		return fail(fmt.Errorf("mark processing: %w", err))
	}

	if keys.IsZero() {
		return fail(domain.ErrMissingCredentials)
	}

	transcript, err := s.transcripts.Get(ctx, videoID, keys.ApifyAPIToken)
	if err != nil {
		return fail(err)
	}

	s.setStep(ctx, jobID, stepAnalyzing)
	report, err := s.analyzer.AnalyzeContent(ctx, transcript, keys.GeminiAPIKey, opts)
	if err != nil {
		return fail(err)
	}

	s.setStep(ctx, jobID, stepDesigning)
	prompt, err := s.analyzer.GenerateDesignPrompt(ctx, report, keys.GeminiAPIKey, opts)
	if err != nil {
		return fail(err)
	}

	s.setStep(ctx, jobID, stepRendering)
	imageURL, err := s.images.Generate(ctx, image.GenerateRequest{
		APIKey: keys.AtlasCloudAPIKey,
		Prompt: prompt,
	})
	if err != nil {
		return fail(err)
	}

	s.setStep(ctx, jobID, stepSaving)
	if s.files != nil {
		s.mirrorImage(ctx, videoID, imageURL)
	}
	if _, err := s.infographics.Complete(ctx, videoID, imageURL, report, prompt); err != nil {
		return fail(fmt.Errorf("store infographic: %w", err))
	}

	s.setStep(ctx, jobID, stepVideoDone)
	return nil
}

// mirrorImage keeps a local copy of the rendered image. Mirroring is best
// effort: the hosted URL is the record of truth, so a failure is only logged.
func (s *InfographicService) mirrorImage(ctx context.Context, videoID, imageURL string) {
	data, err := s.images.Download(ctx, imageURL)
	if err != nil {
		s.logger.Warn().Err(err).Str("video_id", videoID).Msg("cannot download image for mirroring")
		return
	}
	if _, err := s.files.Write(videoID+".png", data); err != nil {
		s.logger.Warn().Err(err).Str("video_id", videoID).Msg("cannot mirror image to disk")
	}
}

func (s *InfographicService) setStep(ctx context.Context, jobID, step string) {
	if err := s.jobs.SetStep(ctx, jobID, step); err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("cannot update job step")
	}
}

// GetJob returns a job after checking that its playlist belongs to the user.
func (s *InfographicService) GetJob(ctx context.Context, userID, jobID string) (*domain.ProcessingJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	playlist, err := s.playlists.GetByID(ctx, job.PlaylistID)
	if err != nil {
		return nil, err
	}
	if playlist.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

// ListJobs returns the user's job history across all their playlists, most
// recent first, each joined with its playlist title.
func (s *InfographicService) ListJobs(ctx context.Context, userID string) ([]JobWithPlaylist, error) {
	playlists, err := s.playlists.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(playlists))
	titles := make(map[string]string, len(playlists))
	for _, p := range playlists {
		ids = append(ids, p.ID)
		titles[p.ID] = p.Title
	}
	jobs, err := s.jobs.ListByPlaylists(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]JobWithPlaylist, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, JobWithPlaylist{Job: j, PlaylistTitle: titles[j.PlaylistID]})
	}
	return out, nil
}

// GetByVideo returns the infographic for one of the user's videos.
func (s *InfographicService) GetByVideo(ctx context.Context, userID, videoID string) (*domain.Infographic, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	playlist, err := s.playlists.GetByID(ctx, video.PlaylistID)
	if err != nil {
		return nil, err
	}
	if playlist.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return s.infographics.GetByVideoID(ctx, videoID)
}
