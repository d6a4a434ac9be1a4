package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-media-backend/internal/model"
	"go-media-backend/internal/pipeline"
)

type PlaylistRepository struct {
	pool *pgxpool.Pool
}

func NewPlaylistRepository(pool *pgxpool.Pool) *PlaylistRepository {
	return &PlaylistRepository{pool: pool}
}

const playlistColumns = "id, owner_id, name, description, created_at, updated_at"

func scanPlaylist(row pgx.Row) (model.Playlist, error) {
	var p model.Playlist
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PlaylistRepository) Create(ctx context.Context, p model.Playlist) (model.Playlist, error) {
	created, err := scanPlaylist(r.pool.QueryRow(ctx,
		`INSERT INTO playlists (owner_id, name, description) VALUES ($1, $2, $3) RETURNING `+playlistColumns,
		p.OwnerID, p.Name, p.Description))
	if err != nil {
		return model.Playlist{}, mapWriteError(err, "create playlist", model.ErrUserNotFound)
	}
	return created, nil
}

func (r *PlaylistRepository) FindByID(ctx context.Context, id string) (model.Playlist, error) {
	p, err := scanPlaylist(r.pool.QueryRow(ctx, `SELECT `+playlistColumns+` FROM playlists WHERE id = $1`, id))
	if err != nil {
		return model.Playlist{}, mapReadError(err, "find playlist", model.ErrPlaylistNotFound)
	}
	return p, nil
}

// Summary loads a playlist with its owner and the totals over the videos
// viewerID may see.
func (r *PlaylistRepository) Summary(ctx context.Context, id string, viewerID string) (model.PlaylistSummary, model.OwnerSummary, error) {
	var (
		s     model.PlaylistSummary
		owner model.OwnerSummary
	)
	dest := []any{&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt, &s.TotalVideos, &s.TotalViews}
	err := r.pool.QueryRow(ctx,
		`SELECT p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at,
		        COALESCE(agg.total_videos, 0), COALESCE(agg.total_views, 0), `+ownerColumns+`
		 FROM playlists p
		 JOIN users o ON o.id = p.owner_id
		 LEFT JOIN (
		     SELECT pv.playlist_id, COUNT(*) AS total_videos, SUM(v.views) AS total_views
		     FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id
		     WHERE pv.playlist_id = $1 AND (v.is_published OR v.owner_id = $2)
		     GROUP BY pv.playlist_id
		 ) agg ON agg.playlist_id = p.id
		 WHERE p.id = $1`, id, nullable(viewerID)).Scan(append(dest, ownerDest(&owner)...)...)
	if err != nil {
		return model.PlaylistSummary{}, model.OwnerSummary{}, mapReadError(err, "playlist summary", model.ErrPlaylistNotFound)
	}
	return s, owner, nil
}

var playlistSort = map[model.SortField]string{
	model.SortByCreatedAt: "p.created_at",
	model.SortByTitle:     "p.name",
}

// ListForOwner pages ownerID's playlists with totals over the videos
// viewerID may see.
func (r *PlaylistRepository) ListForOwner(ctx context.Context, ownerID string, viewerID string, opts model.PageOptions) (model.Page[model.PlaylistSummary], error) {
	viewer := nullable(viewerID)
	q := pipeline.From("playlists", "p").
		Columns("p.id", "p.owner_id", "p.name", "p.description", "p.created_at", "p.updated_at").
		Project(`(SELECT COUNT(*) FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id
		          WHERE pv.playlist_id = p.id AND (v.is_published OR v.owner_id = ?)) AS total_videos`, viewer).
		Project(`(SELECT COALESCE(SUM(v.views), 0) FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id
		          WHERE pv.playlist_id = p.id AND (v.is_published OR v.owner_id = ?)) AS total_views`, viewer).
		Match("p.owner_id = ?", ownerID).
		Paginate(opts, playlistSort)

	return runPage(ctx, r.pool, q, func(row pgx.CollectableRow) (model.PlaylistSummary, error) {
		var s model.PlaylistSummary
		err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt, &s.TotalVideos, &s.TotalViews)
		return s, err
	})
}

var playlistVideoSort = map[model.SortField]string{
	model.SortByCreatedAt: "pv.added_at",
	model.SortByViews:     "v.views",
	model.SortByTitle:     "v.title",
	model.SortByDuration:  "v.duration_seconds",
}

// Videos pages the playlist's videos visible to viewerID.
func (r *PlaylistRepository) Videos(ctx context.Context, playlistID string, viewerID string, opts model.PageOptions) (model.Page[model.VideoSummary], error) {
	q := videoSummaryColumns(pipeline.From("playlist_videos", "pv")).
		JoinMatch("JOIN videos v ON v.id = pv.video_id").
		Match("pv.playlist_id = ?", playlistID).
		Match("(v.is_published OR v.owner_id = ?)", nullable(viewerID)).
		TieBreak("pv.video_id").
		Paginate(opts, playlistVideoSort)

	return runPage(ctx, r.pool, q, scanVideoSummary)
}

// AddVideo inserts the membership unless it already exists.
func (r *PlaylistRepository) AddVideo(ctx context.Context, playlistID string, videoID string) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO playlist_videos (playlist_id, video_id) VALUES ($1, $2)
		 ON CONFLICT (playlist_id, video_id) DO NOTHING`,
		playlistID, videoID)
	if err != nil {
		return mapWriteError(err, "add playlist video", model.ErrVideoNotFound)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAlreadyInList
	}

	_, err = r.pool.Exec(ctx, `UPDATE playlists SET updated_at = now() WHERE id = $1`, playlistID)
	if err != nil {
		return mapWriteError(err, "touch playlist", nil)
	}
	return nil
}

func (r *PlaylistRepository) RemoveVideo(ctx context.Context, playlistID string, videoID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`, playlistID, videoID)
	if err != nil {
		return mapWriteError(err, "remove playlist video", nil)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVideoNotFound
	}
	return nil
}

func (r *PlaylistRepository) Delete(ctx context.Context, id string, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM playlists WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return mapWriteError(err, "delete playlist", nil)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPlaylistNotFound
	}
	return nil
}
