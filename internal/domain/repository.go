package domain

import "context"

// UserRepository defines access methods for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetBySubject(ctx context.Context, subject string) (*User, error)
	UpsertBySubject(ctx context.Context, user *User) (*User, error)
	UpdateAPIKeys(ctx context.Context, userID string, apify, gemini, atlas *string) (*User, error)
}

// PlaylistRepository defines persistence for playlists.
type PlaylistRepository interface {
	UpsertByURL(ctx context.Context, playlist *Playlist) (*Playlist, error)
	GetByID(ctx context.Context, id string) (*Playlist, error)
	ListByUser(ctx context.Context, userID string) ([]Playlist, error)
}

// VideoRepository defines persistence for videos.
type VideoRepository interface {
	UpsertBySourceID(ctx context.Context, video *Video) (*Video, error)
	GetByID(ctx context.Context, id string) (*Video, error)
	ListByPlaylist(ctx context.Context, playlistID string) ([]Video, error)
	// SetTranscript persists a transcript once; an already-populated
	// transcript is left untouched.
	SetTranscript(ctx context.Context, videoID, transcript string) error
}

// InfographicRepository defines persistence for infographics (1:1 by video).
type InfographicRepository interface {
	GetByVideoID(ctx context.Context, videoID string) (*Infographic, error)
	// UpsertStatus creates the row (empty image URL) or moves an existing
	// row to the given status.
	UpsertStatus(ctx context.Context, videoID string, status InfographicStatus) error
	Complete(ctx context.Context, videoID, imageURL, analysisReport, designPrompt string) (*Infographic, error)
	ListByPlaylist(ctx context.Context, playlistID string) ([]Infographic, error)
}

// JobRepository defines persistence for processing jobs. Mutations are only
// ever issued by the job orchestrator.
type JobRepository interface {
	Create(ctx context.Context, job *ProcessingJob) error
	GetByID(ctx context.Context, id string) (*ProcessingJob, error)
	SetStatus(ctx context.Context, id string, status JobStatus) error
	SetProgress(ctx context.Context, id string, progress int) error
	SetCurrent(ctx context.Context, id string, videoID *string, step string) error
	SetStep(ctx context.Context, id string, step string) error
	// Finish marks the job COMPLETED with progress 100, clears the active
	// video pointer and sets the terminal step label.
	Finish(ctx context.Context, id string, step string) error
	ListByPlaylists(ctx context.Context, playlistIDs []string) ([]ProcessingJob, error)
}
