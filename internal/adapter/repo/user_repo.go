package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

const userColumns = `id, subject, email, name, plan,
COALESCE(apify_api_token, ''), COALESCE(gemini_api_key, ''), COALESCE(atlas_cloud_api_key, ''),
created_at, updated_at`

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetBySubject fetches a user by the external auth subject identifier.
func (r *UserRepositoryPG) GetBySubject(ctx context.Context, subject string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE subject = $1`, subject)
	return scanUser(row)
}

// UpsertBySubject inserts or refreshes a user based on the auth subject.
// An empty plan means the caller has no opinion: new rows start on FREE and
// existing rows keep their stored plan. A non-empty plan wins either way, so
// a refreshed token claim propagates to the row.
func (r *UserRepositoryPG) UpsertBySubject(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query := `
INSERT INTO users (id, subject, email, name, plan)
VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, ''), 'FREE'))
ON CONFLICT (subject) DO UPDATE
SET email = EXCLUDED.email,
    name = EXCLUDED.name,
    plan = COALESCE(NULLIF($5, ''), users.plan),
    updated_at = NOW()
RETURNING ` + userColumns + `;
`
	row := r.pool.QueryRow(ctx, query, user.ID, user.Subject, user.Email, user.Name, user.Plan)
	return scanUser(row)
}

// UpdateAPIKeys updates the user's self-supplied provider keys. Nil values
// leave the stored key unchanged.
func (r *UserRepositoryPG) UpdateAPIKeys(ctx context.Context, userID string, apify, gemini, atlas *string) (*domain.User, error) {
	query := `
UPDATE users
SET apify_api_token = COALESCE($2, apify_api_token),
    gemini_api_key = COALESCE($3, gemini_api_key),
    atlas_cloud_api_key = COALESCE($4, atlas_cloud_api_key),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns + `;
`
	row := r.pool.QueryRow(ctx, query, userID, apify, gemini, atlas)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Subject, &u.Email, &u.Name, &u.Plan,
		&u.ApifyAPIToken, &u.GeminiAPIKey, &u.AtlasCloudAPIKey,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
