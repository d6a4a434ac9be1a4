package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-media-backend/internal/model"
	"go-media-backend/internal/pipeline"
)

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

// Toggle removes the subscriber→channel edge when present and creates it
// otherwise. The subscriber row is locked for the duration so concurrent
// toggles of one pair serialize.
func (r *SubscriptionRepository) Toggle(ctx context.Context, subscriberID string, channelID string) (bool, error) {
	var subscribed bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, subscriberID).Scan(&locked); err != nil {
			return mapReadError(err, "lock subscriber", model.ErrUserNotFound)
		}

		tag, err := tx.Exec(ctx,
			`DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`,
			subscriberID, channelID)
		if err != nil {
			return mapWriteError(err, "delete subscription", nil)
		}
		if tag.RowsAffected() > 0 {
			subscribed = false
			return nil
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO subscriptions (subscriber_id, channel_id) VALUES ($1, $2)`,
			subscriberID, channelID); err != nil {
			return mapWriteError(err, "insert subscription", model.ErrUserNotFound)
		}
		subscribed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return subscribed, nil
}

func (r *SubscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID).Scan(&n); err != nil {
		return 0, mapWriteError(err, "count subscribers", nil)
	}
	return n, nil
}

func (r *SubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID).Scan(&n); err != nil {
		return 0, mapWriteError(err, "count subscribed to", nil)
	}
	return n, nil
}

var subscriptionSort = map[model.SortField]string{
	model.SortByCreatedAt: "s.created_at",
	model.SortByTitle:     "u.username",
}

// ListSubscribedChannels pages the channels subscriberID follows, newest
// subscription first.
func (r *SubscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID string, viewerID string, opts model.PageOptions) (model.Page[model.ChannelSummary], error) {
	q := channelSummaryQuery(viewerID).
		Join("JOIN users u ON u.id = s.channel_id").
		Match("s.subscriber_id = ?", subscriberID).
		Paginate(opts, subscriptionSort)

	return runPage(ctx, r.pool, q, pgx.RowToStructByName[model.ChannelSummary])
}

// ListSubscribers pages the identities subscribed to channelID.
func (r *SubscriptionRepository) ListSubscribers(ctx context.Context, channelID string, viewerID string, opts model.PageOptions) (model.Page[model.ChannelSummary], error) {
	q := channelSummaryQuery(viewerID).
		Join("JOIN users u ON u.id = s.subscriber_id").
		Match("s.channel_id = ?", channelID).
		Paginate(opts, subscriptionSort)

	return runPage(ctx, r.pool, q, pgx.RowToStructByName[model.ChannelSummary])
}

func channelSummaryQuery(viewerID string) *pipeline.Query {
	return pipeline.From("subscriptions", "s").
		Columns("u.id", "u.username", "u.full_name", "u.avatar_url").
		Project("(SELECT COUNT(*) FROM subscriptions c WHERE c.channel_id = u.id) AS subscribers").
		Project("EXISTS(SELECT 1 FROM subscriptions v WHERE v.channel_id = u.id AND v.subscriber_id = ?) AS is_subscribed", nullable(viewerID)).
		Project("s.created_at AS subscribed_at")
}
