package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-media-backend/internal/model"
)

type LikeRepository struct {
	pool *pgxpool.Pool
}

func NewLikeRepository(pool *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{pool: pool}
}

// Toggle flips actorID's like on target and reports whether it is now liked.
// The actor row lock serializes concurrent toggles by the same actor.
func (r *LikeRepository) Toggle(ctx context.Context, actorID string, target model.LikeTarget) (bool, error) {
	var liked bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, actorID).Scan(&locked); err != nil {
			return mapReadError(err, "lock like actor", model.ErrUserNotFound)
		}

		tag, err := tx.Exec(ctx,
			`DELETE FROM likes WHERE actor_id = $1 AND target_kind = $2 AND target_id = $3`,
			actorID, string(target.Kind()), target.ID())
		if err != nil {
			return mapWriteError(err, "delete like", nil)
		}
		if tag.RowsAffected() > 0 {
			liked = false
			return nil
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO likes (actor_id, target_kind, target_id) VALUES ($1, $2, $3)
			 ON CONFLICT (actor_id, target_kind, target_id) DO NOTHING`,
			actorID, string(target.Kind()), target.ID()); err != nil {
			return mapWriteError(err, "insert like", nil)
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}
