package postgres

import (
	"context"
	"fmt"

	"github.com/gemhaus/marketplace-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository reads display metadata. Unknown users resolve to an
// empty profile rather than an error; callers render a placeholder.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	const query = `SELECT id, COALESCE(full_name, ''), COALESCE(avatar_url, '') FROM profiles WHERE id = $1`

	var p domain.Profile
	err := r.queryRow(ctx, query, userID).Scan(&p.ID, &p.FullName, &p.AvatarURL)
	if err != nil {
		if err == pgx.ErrNoRows || isInvalidUUID(err) {
			return domain.Profile{}, nil
		}
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
