package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-media-backend/internal/model"
	"go-media-backend/internal/pipeline"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func scanComment(row pgx.Row) (model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.VideoID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *CommentRepository) Create(ctx context.Context, c model.Comment) (model.Comment, error) {
	created, err := scanComment(r.pool.QueryRow(ctx,
		`INSERT INTO comments (video_id, owner_id, content) VALUES ($1, $2, $3)
		 RETURNING id, video_id, owner_id, content, created_at, updated_at`,
		c.VideoID, c.OwnerID, c.Content))
	if err != nil {
		return model.Comment{}, mapWriteError(err, "create comment", model.ErrVideoNotFound)
	}
	return created, nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (model.Comment, error) {
	c, err := scanComment(r.pool.QueryRow(ctx,
		`SELECT id, video_id, owner_id, content, created_at, updated_at FROM comments WHERE id = $1`, id))
	if err != nil {
		return model.Comment{}, mapReadError(err, "find comment", model.ErrCommentNotFound)
	}
	return c, nil
}

// Delete removes an owned comment together with the likes on it.
func (r *CommentRepository) Delete(ctx context.Context, id string, ownerID string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM likes WHERE target_kind = 'comment' AND target_id = $1`, id); err != nil {
			return mapWriteError(err, "delete comment likes", nil)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND owner_id = $2`, id, ownerID)
		if err != nil {
			return mapWriteError(err, "delete comment", nil)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrCommentNotFound
		}
		return nil
	})
}

var commentSort = map[model.SortField]string{
	model.SortByCreatedAt: "c.created_at",
}

// ListForVideo pages a video's comments with their owners, like counts and
// whether viewerID liked each one.
func (r *CommentRepository) ListForVideo(ctx context.Context, videoID string, viewerID string, opts model.PageOptions) (model.Page[model.CommentSummary], error) {
	q := pipeline.From("comments", "c").
		Columns("c.id", "c.video_id", "c.content").
		Project("(SELECT COUNT(*) FROM likes l WHERE l.target_kind = 'comment' AND l.target_id = c.id) AS likes").
		Project("EXISTS(SELECT 1 FROM likes l WHERE l.target_kind = 'comment' AND l.target_id = c.id AND l.actor_id = ?) AS is_liked", nullable(viewerID)).
		Columns("c.created_at", ownerColumns).
		Join("JOIN users o ON o.id = c.owner_id").
		Match("c.video_id = ?", videoID).
		Paginate(opts, commentSort)

	return runPage(ctx, r.pool, q, func(row pgx.CollectableRow) (model.CommentSummary, error) {
		var c model.CommentSummary
		dest := []any{&c.ID, &c.VideoID, &c.Content, &c.Likes, &c.IsLiked, &c.CreatedAt}
		err := row.Scan(append(dest, ownerDest(&c.Owner)...)...)
		return c, err
	})
}
