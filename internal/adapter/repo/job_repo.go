package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository backed by PostgreSQL.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new JobRepositoryPG.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

const jobColumns = `id, playlist_id, video_ids, status, progress, current_video_id, current_step, options, created_at, updated_at`

// Create inserts a new PENDING job.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.ProcessingJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = domain.JobStatusPending
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO processing_jobs (id, playlist_id, video_ids, status, progress, options)
VALUES ($1, $2, $3, $4, $5, $6)
`, job.ID, job.PlaylistID, job.VideoIDs, job.Status, job.Progress, job.Options)
	return err
}

// GetByID fetches a job by UUID.
func (r *JobRepositoryPG) GetByID(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM processing_jobs WHERE id = $1`, id)
	return scanJob(row)
}

// SetStatus moves the job to a new lifecycle state.
func (r *JobRepositoryPG) SetStatus(ctx context.Context, id string, status domain.JobStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE processing_jobs SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

// SetProgress updates the percentage counter.
func (r *JobRepositoryPG) SetProgress(ctx context.Context, id string, progress int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE processing_jobs SET progress = $2, updated_at = NOW() WHERE id = $1`, id, progress)
	return err
}

// SetCurrent updates the active video pointer and the step label together.
func (r *JobRepositoryPG) SetCurrent(ctx context.Context, id string, videoID *string, step string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE processing_jobs
SET current_video_id = $2, current_step = $3, updated_at = NOW()
WHERE id = $1
`, id, videoID, step)
	return err
}

// SetStep updates the step label without touching the video pointer.
func (r *JobRepositoryPG) SetStep(ctx context.Context, id string, step string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE processing_jobs SET current_step = $2, updated_at = NOW() WHERE id = $1`, id, step)
	return err
}

// Finish marks the job COMPLETED at progress 100 and clears the active video.
func (r *JobRepositoryPG) Finish(ctx context.Context, id string, step string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE processing_jobs
SET status = $2, progress = 100, current_video_id = NULL, current_step = $3, updated_at = NOW()
WHERE id = $1
`, id, domain.JobStatusCompleted, step)
	return err
}

// ListByPlaylists returns every job belonging to the given playlists, most
// recent first.
func (r *JobRepositoryPG) ListByPlaylists(ctx context.Context, playlistIDs []string) ([]domain.ProcessingJob, error) {
	if len(playlistIDs) == 0 {
		return []domain.ProcessingJob{}, nil
	}
	rows, err := r.pool.Query(ctx, `
SELECT `+jobColumns+`
FROM processing_jobs
WHERE playlist_id = ANY($1::uuid[])
ORDER BY created_at DESC
`, playlistIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]domain.ProcessingJob, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func scanJob(row pgx.Row) (*domain.ProcessingJob, error) {
	var j domain.ProcessingJob
	if err := row.Scan(
		&j.ID, &j.PlaylistID, &j.VideoIDs, &j.Status, &j.Progress,
		&j.CurrentVideoID, &j.CurrentStep, &j.Options,
		&j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}
