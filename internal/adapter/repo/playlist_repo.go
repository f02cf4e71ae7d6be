package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// PlaylistRepositoryPG implements domain.PlaylistRepository backed by PostgreSQL.
type PlaylistRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPlaylistRepository creates a new PlaylistRepositoryPG.
func NewPlaylistRepository(pool *pgxpool.Pool) *PlaylistRepositoryPG {
	return &PlaylistRepositoryPG{pool: pool}
}

const playlistColumns = `id, user_id, url, title, video_count, created_at, updated_at`

// UpsertByURL inserts a playlist or refreshes its metadata when the same user
// re-extracts the same URL.
func (r *PlaylistRepositoryPG) UpsertByURL(ctx context.Context, playlist *domain.Playlist) (*domain.Playlist, error) {
	if playlist.ID == "" {
		playlist.ID = uuid.NewString()
	}
	query := `
INSERT INTO playlists (id, user_id, url, title, video_count)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, url) DO UPDATE
SET title = EXCLUDED.title,
    video_count = EXCLUDED.video_count,
    updated_at = NOW()
RETURNING ` + playlistColumns + `;
`
	row := r.pool.QueryRow(ctx, query,
		playlist.ID, playlist.UserID, playlist.URL, playlist.Title, playlist.VideoCount)
	return scanPlaylist(row)
}

// GetByID fetches a playlist by UUID.
func (r *PlaylistRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Playlist, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+playlistColumns+` FROM playlists WHERE id = $1`, id)
	return scanPlaylist(row)
}

// ListByUser returns the user's playlists, most recent first.
func (r *PlaylistRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.Playlist, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+playlistColumns+` FROM playlists WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	playlists := make([]domain.Playlist, 0)
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *p)
	}
	return playlists, rows.Err()
}

func scanPlaylist(row pgx.Row) (*domain.Playlist, error) {
	var p domain.Playlist
	if err := row.Scan(
		&p.ID, &p.UserID, &p.URL, &p.Title, &p.VideoCount,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
