package domain

import "time"

// JobStatus enumerates the batch-job lifecycle. There is no job-level FAILED
// state: individual video failures are absorbed and the job still completes.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
)

// ProcessingJob is one batch request to generate infographics for a set of
// videos. Progress is round(100 * attempted / total) and reaches exactly 100
// when the job completes, regardless of per-video outcomes. CurrentVideoID
// and CurrentStep are advisory markers for polling clients. Jobs are never
// deleted; they double as history.
type ProcessingJob struct {
	ID             string
	PlaylistID     string
	VideoIDs       []string
	Status         JobStatus
	Progress       int
	CurrentVideoID *string
	CurrentStep    *string
	Options        []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
