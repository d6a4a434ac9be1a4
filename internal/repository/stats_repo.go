package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-media-backend/internal/model"
)

// StatsRepository holds the single-purpose aggregations behind channel
// statistics. Each one returns zero for a channel without rows.
type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// ViewsAndVideos sums views over the channel's published videos and counts them.
func (r *StatsRepository) ViewsAndVideos(ctx context.Context, channelID string) (int64, int64, error) {
	var views, videos int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(views), 0), COUNT(*) FROM videos WHERE owner_id = $1 AND is_published`,
		channelID).Scan(&views, &videos)
	if err != nil {
		return 0, 0, fmt.Errorf("channel views and videos: %w", err)
	}
	return views, videos, nil
}

func (r *StatsRepository) Subscribers(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, "channel subscribers",
		`SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

func (r *StatsRepository) Tweets(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, "channel tweets",
		`SELECT COUNT(*) FROM tweets WHERE owner_id = $1`, channelID)
}

// Comments counts comments written by the channel.
func (r *StatsRepository) Comments(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, "channel comments",
		`SELECT COUNT(*) FROM comments WHERE owner_id = $1`, channelID)
}

// Likes counts likes the channel has given to content of one kind.
func (r *StatsRepository) Likes(ctx context.Context, channelID string, kind model.LikeKind) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("channel likes: unknown kind %q: %w", kind, model.ErrInvalidInput)
	}
	return r.count(ctx, "channel "+string(kind)+" likes",
		`SELECT COUNT(*) FROM likes WHERE actor_id = $1 AND target_kind = $2`,
		channelID, string(kind))
}

func (r *StatsRepository) count(ctx context.Context, op string, sql string, args ...any) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
