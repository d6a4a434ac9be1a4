package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-media-backend/internal/model"
	"go-media-backend/internal/pipeline"
)

// VideoFilter narrows a video listing. ViewerID always sees their own
// unpublished videos; everybody else only sees published ones.
type VideoFilter struct {
	ViewerID string
	OwnerID  string
	Query    string
}

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

const videoColumns = `id, owner_id, title, description, video_url, thumbnail_url,
	duration_seconds, views, is_published, created_at, updated_at`

func scanVideo(row pgx.Row) (model.Video, error) {
	var v model.Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL,
		&v.DurationSeconds, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

var videoSort = map[model.SortField]string{
	model.SortByCreatedAt: "v.created_at",
	model.SortByViews:     "v.views",
	model.SortByTitle:     "v.title",
	model.SortByDuration:  "v.duration_seconds",
}

// videoSummaryColumns projects the columns scanVideoSummary reads, in order.
func videoSummaryColumns(q *pipeline.Query) *pipeline.Query {
	return q.Columns(
		"v.id", "v.title", "v.description", "v.video_url", "v.thumbnail_url",
		"v.duration_seconds", "v.views", "v.is_published",
	).
		Project("(SELECT COUNT(*) FROM likes lk WHERE lk.target_kind = 'video' AND lk.target_id = v.id) AS likes").
		Columns("v.created_at", ownerColumns).
		Join("JOIN users o ON o.id = v.owner_id")
}

func videoSummaryDest(v *model.VideoSummary) []any {
	dest := []any{&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL,
		&v.DurationSeconds, &v.Views, &v.IsPublished, &v.Likes, &v.CreatedAt}
	return append(dest, ownerDest(&v.Owner)...)
}

func scanVideoSummary(row pgx.CollectableRow) (model.VideoSummary, error) {
	var v model.VideoSummary
	err := row.Scan(videoSummaryDest(&v)...)
	return v, err
}

func (r *VideoRepository) Create(ctx context.Context, v model.Video) (model.Video, error) {
	created, err := scanVideo(r.pool.QueryRow(ctx,
		`INSERT INTO videos (owner_id, title, description, video_url, thumbnail_url, duration_seconds, is_published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+videoColumns,
		v.OwnerID, v.Title, v.Description, v.VideoURL, v.ThumbnailURL, v.DurationSeconds, v.IsPublished))
	if err != nil {
		return model.Video{}, mapWriteError(err, "create video", model.ErrUserNotFound)
	}
	return created, nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (model.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err != nil {
		return model.Video{}, mapReadError(err, "find video", model.ErrVideoNotFound)
	}
	return v, nil
}

// Detail loads one video visible to viewerID with its engagement figures.
func (r *VideoRepository) Detail(ctx context.Context, id string, viewerID string) (model.VideoDetail, error) {
	q := videoSummaryColumns(pipeline.From("videos", "v")).
		Project("(SELECT COUNT(*) FROM comments c WHERE c.video_id = v.id) AS comments").
		Project("EXISTS(SELECT 1 FROM likes l WHERE l.target_kind = 'video' AND l.target_id = v.id AND l.actor_id = ?) AS is_liked", nullable(viewerID)).
		Project("EXISTS(SELECT 1 FROM subscriptions s WHERE s.channel_id = v.owner_id AND s.subscriber_id = ?) AS is_subscribed", nullable(viewerID)).
		Match("v.id = ?", id).
		Match("(v.is_published OR v.owner_id = ?)", nullable(viewerID))

	sql, args := q.Build()

	var d model.VideoDetail
	dest := append(videoSummaryDest(&d.VideoSummary), &d.Comments, &d.IsLiked, &d.IsSubscribed)
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(dest...); err != nil {
		return model.VideoDetail{}, mapReadError(err, "video detail", model.ErrVideoNotFound)
	}
	return d, nil
}

// RecordWatch marks videoID as watched by userID. Views are incremented only
// when the membership row is new; a re-watch just refreshes watched_at.
func (r *VideoRepository) RecordWatch(ctx context.Context, userID string, videoID string) (bool, error) {
	var first bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE watch_history SET watched_at = now() WHERE user_id = $1 AND video_id = $2`,
			userID, videoID)
		if err != nil {
			return mapWriteError(err, "refresh watch", nil)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		tag, err = tx.Exec(ctx,
			`INSERT INTO watch_history (user_id, video_id) VALUES ($1, $2) ON CONFLICT (user_id, video_id) DO NOTHING`,
			userID, videoID)
		if err != nil {
			return mapWriteError(err, "insert watch", model.ErrVideoNotFound)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		first = true
		if _, err := tx.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, videoID); err != nil {
			return mapWriteError(err, "increment views", nil)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return first, nil
}

func (r *VideoRepository) TogglePublished(ctx context.Context, id string, ownerID string) (model.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx,
		`UPDATE videos SET is_published = NOT is_published, updated_at = now()
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+videoColumns, id, ownerID))
	if err != nil {
		return model.Video{}, mapReadError(err, "toggle publish", model.ErrVideoNotFound)
	}
	return v, nil
}

// Delete removes the video, every like on it or on its comments, and through
// foreign keys its comments, watch history and playlist memberships. The
// deleted row is returned once the transaction has committed.
func (r *VideoRepository) Delete(ctx context.Context, id string, ownerID string) (model.Video, error) {
	var deleted model.Video
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM likes
			 WHERE (target_kind = 'video' AND target_id = $1)
			    OR (target_kind = 'comment' AND target_id IN (SELECT id FROM comments WHERE video_id = $1))`,
			id); err != nil {
			return mapWriteError(err, "delete video likes", nil)
		}

		v, err := scanVideo(tx.QueryRow(ctx,
			`DELETE FROM videos WHERE id = $1 AND owner_id = $2 RETURNING `+videoColumns, id, ownerID))
		if err != nil {
			return mapReadError(err, "delete video", model.ErrVideoNotFound)
		}
		deleted = v
		return nil
	})
	if err != nil {
		return model.Video{}, err
	}
	return deleted, nil
}

// List pages videos matching filter.
func (r *VideoRepository) List(ctx context.Context, filter VideoFilter, opts model.PageOptions) (model.Page[model.VideoSummary], error) {
	q := videoSummaryColumns(pipeline.From("videos", "v")).
		Match("(v.is_published OR v.owner_id = ?)", nullable(filter.ViewerID)).
		MatchIf(filter.OwnerID != "", "v.owner_id = ?", filter.OwnerID).
		MatchSearch(filter.Query, "v.title", "v.description").
		Paginate(opts, videoSort)

	return runPage(ctx, r.pool, q, scanVideoSummary)
}

var historySort = map[model.SortField]string{
	model.SortByCreatedAt: "w.watched_at",
	model.SortByViews:     "v.views",
	model.SortByTitle:     "v.title",
	model.SortByDuration:  "v.duration_seconds",
}

// WatchHistory pages the videos userID has watched, most recent first.
func (r *VideoRepository) WatchHistory(ctx context.Context, userID string, opts model.PageOptions) (model.Page[model.WatchHistoryItem], error) {
	q := videoSummaryColumns(pipeline.From("watch_history", "w")).
		Columns("w.watched_at").
		JoinMatch("JOIN videos v ON v.id = w.video_id").
		Match("w.user_id = ?", userID).
		Match("(v.is_published OR v.owner_id = ?)", userID).
		TieBreak("w.video_id").
		Paginate(opts, historySort)

	return runPage(ctx, r.pool, q, func(row pgx.CollectableRow) (model.WatchHistoryItem, error) {
		var item model.WatchHistoryItem
		dest := append(videoSummaryDest(&item.VideoSummary), &item.WatchedAt)
		err := row.Scan(dest...)
		return item, err
	})
}

var likedSort = map[model.SortField]string{
	model.SortByCreatedAt: "l.created_at",
	model.SortByViews:     "v.views",
	model.SortByTitle:     "v.title",
	model.SortByDuration:  "v.duration_seconds",
}

// LikedVideos pages the visible videos userID has liked, latest like first.
func (r *VideoRepository) LikedVideos(ctx context.Context, userID string, opts model.PageOptions) (model.Page[model.VideoSummary], error) {
	q := videoSummaryColumns(pipeline.From("likes", "l")).
		JoinMatch("JOIN videos v ON v.id = l.target_id").
		Match("l.actor_id = ?", userID).
		Match("l.target_kind = 'video'").
		Match("(v.is_published OR v.owner_id = ?)", userID).
		Paginate(opts, likedSort)

	return runPage(ctx, r.pool, q, scanVideoSummary)
}
