package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-media-backend/internal/model"
	"go-media-backend/internal/pipeline"
)

// TweetRepository only reads tweets; they are written elsewhere.
type TweetRepository struct {
	pool *pgxpool.Pool
}

func NewTweetRepository(pool *pgxpool.Pool) *TweetRepository {
	return &TweetRepository{pool: pool}
}

func (r *TweetRepository) FindByID(ctx context.Context, id string) (model.Tweet, error) {
	var t model.Tweet
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, content, created_at, updated_at FROM tweets WHERE id = $1`, id).
		Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Tweet{}, mapReadError(err, "find tweet", model.ErrTweetNotFound)
	}
	return t, nil
}

var tweetSort = map[model.SortField]string{
	model.SortByCreatedAt: "t.created_at",
}

// ListForUser pages ownerID's tweets with like counts and viewer flags.
func (r *TweetRepository) ListForUser(ctx context.Context, ownerID string, viewerID string, opts model.PageOptions) (model.Page[model.TweetSummary], error) {
	q := pipeline.From("tweets", "t").
		Columns("t.id", "t.content").
		Project("(SELECT COUNT(*) FROM likes l WHERE l.target_kind = 'tweet' AND l.target_id = t.id) AS likes").
		Project("EXISTS(SELECT 1 FROM likes l WHERE l.target_kind = 'tweet' AND l.target_id = t.id AND l.actor_id = ?) AS is_liked", nullable(viewerID)).
		Columns("t.created_at", ownerColumns).
		Join("JOIN users o ON o.id = t.owner_id").
		Match("t.owner_id = ?", ownerID).
		Paginate(opts, tweetSort)

	return runPage(ctx, r.pool, q, func(row pgx.CollectableRow) (model.TweetSummary, error) {
		var t model.TweetSummary
		dest := []any{&t.ID, &t.Content, &t.Likes, &t.IsLiked, &t.CreatedAt}
		err := row.Scan(append(dest, ownerDest(&t.Owner)...)...)
		return t, err
	})
}
