package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// InfographicRepositoryPG implements domain.InfographicRepository backed by
// PostgreSQL. Rows are keyed 1:1 by video id and never deleted.
type InfographicRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewInfographicRepository creates a new InfographicRepositoryPG.
func NewInfographicRepository(pool *pgxpool.Pool) *InfographicRepositoryPG {
	return &InfographicRepositoryPG{pool: pool}
}

const infographicColumns = `id, video_id,
COALESCE(image_url, ''), COALESCE(analysis_report, ''), COALESCE(design_prompt, ''),
status, created_at, updated_at`

// GetByVideoID fetches the infographic row for a video.
func (r *InfographicRepositoryPG) GetByVideoID(ctx context.Context, videoID string) (*domain.Infographic, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+infographicColumns+` FROM infographics WHERE video_id = $1`, videoID)
	return scanInfographic(row)
}

// UpsertStatus creates the row or moves an existing one to the given status.
// Image URL and report texts are left untouched so a failed re-run never
// wipes out earlier results.
func (r *InfographicRepositoryPG) UpsertStatus(ctx context.Context, videoID string, status domain.InfographicStatus) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO infographics (id, video_id, status)
VALUES ($1, $2, $3)
ON CONFLICT (video_id) DO UPDATE
SET status = EXCLUDED.status,
    updated_at = NOW()
`, uuid.NewString(), videoID, status)
	return err
}

// Complete stores the finished artifacts and flips the row to COMPLETED.
func (r *InfographicRepositoryPG) Complete(ctx context.Context, videoID, imageURL, analysisReport, designPrompt string) (*domain.Infographic, error) {
	query := `
INSERT INTO infographics (id, video_id, image_url, analysis_report, design_prompt, status)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (video_id) DO UPDATE
SET image_url = EXCLUDED.image_url,
    analysis_report = EXCLUDED.analysis_report,
    design_prompt = EXCLUDED.design_prompt,
    status = EXCLUDED.status,
    updated_at = NOW()
RETURNING ` + infographicColumns + `;
`
	row := r.pool.QueryRow(ctx, query,
		uuid.NewString(), videoID, imageURL, analysisReport, designPrompt, domain.InfographicStatusCompleted)
	return scanInfographic(row)
}

// ListByPlaylist returns the infographics of every video in the playlist.
func (r *InfographicRepositoryPG) ListByPlaylist(ctx context.Context, playlistID string) ([]domain.Infographic, error) {
	rows, err := r.pool.Query(ctx, `
SELECT i.id, i.video_id,
COALESCE(i.image_url, ''), COALESCE(i.analysis_report, ''), COALESCE(i.design_prompt, ''),
i.status, i.created_at, i.updated_at
FROM infographics i
JOIN videos v ON v.id = i.video_id
WHERE v.playlist_id = $1
ORDER BY v.created_at ASC
`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	infographics := make([]domain.Infographic, 0)
	for rows.Next() {
		ig, err := scanInfographic(rows)
		if err != nil {
			return nil, err
		}
		infographics = append(infographics, *ig)
	}
	return infographics, rows.Err()
}

func scanInfographic(row pgx.Row) (*domain.Infographic, error) {
	var ig domain.Infographic
	if err := row.Scan(
		&ig.ID, &ig.VideoID,
		&ig.ImageURL, &ig.AnalysisReport, &ig.DesignPrompt,
		&ig.Status, &ig.CreatedAt, &ig.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &ig, nil
}
