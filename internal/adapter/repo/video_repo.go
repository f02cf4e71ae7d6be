package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// VideoRepositoryPG implements domain.VideoRepository backed by PostgreSQL.
type VideoRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new VideoRepositoryPG.
func NewVideoRepository(pool *pgxpool.Pool) *VideoRepositoryPG {
	return &VideoRepositoryPG{pool: pool}
}

const videoColumns = `id, video_id, playlist_id, title,
COALESCE(thumbnail, ''), COALESCE(duration, ''), url, transcript,
created_at, updated_at`

// UpsertBySourceID inserts a video or, when the source id is already known,
// refreshes its metadata and moves it to the extracting playlist. The cached
// transcript survives re-extraction.
func (r *VideoRepositoryPG) UpsertBySourceID(ctx context.Context, video *domain.Video) (*domain.Video, error) {
	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	query := `
INSERT INTO videos (id, video_id, playlist_id, title, thumbnail, duration, url)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
ON CONFLICT (video_id) DO UPDATE
SET playlist_id = EXCLUDED.playlist_id,
    title = EXCLUDED.title,
    thumbnail = EXCLUDED.thumbnail,
    duration = EXCLUDED.duration,
    url = EXCLUDED.url,
    updated_at = NOW()
RETURNING ` + videoColumns + `;
`
	row := r.pool.QueryRow(ctx, query,
		video.ID, video.SourceID, video.PlaylistID, video.Title, video.Thumbnail, video.Duration, video.URL)
	return scanVideo(row)
}

// GetByID fetches a video by UUID.
func (r *VideoRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
	return scanVideo(row)
}

// ListByPlaylist returns the playlist's videos in insertion order.
func (r *VideoRepositoryPG) ListByPlaylist(ctx context.Context, playlistID string) ([]domain.Video, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE playlist_id = $1 ORDER BY created_at ASC`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := make([]domain.Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

// SetTranscript stores the transcript if none is cached yet. A populated
// transcript is never overwritten.
func (r *VideoRepositoryPG) SetTranscript(ctx context.Context, videoID, transcript string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE videos
SET transcript = $2, updated_at = NOW()
WHERE id = $1 AND (transcript IS NULL OR transcript = '')
`, videoID, transcript)
	return err
}

func scanVideo(row pgx.Row) (*domain.Video, error) {
	var v domain.Video
	if err := row.Scan(
		&v.ID, &v.SourceID, &v.PlaylistID, &v.Title,
		&v.Thumbnail, &v.Duration, &v.URL, &v.Transcript,
		&v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}
