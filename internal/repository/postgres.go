package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"go-media-backend/internal/model"
	"go-media-backend/internal/pipeline"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// mapWriteError translates constraint violations into model sentinels.
// notFound is returned for foreign key violations.
func mapWriteError(err error, op string, notFound error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, model.ErrConflict)
		case "23503":
			if notFound == nil {
				notFound = model.ErrNotFound
			}
			return fmt.Errorf("%s: %w", op, notFound)
		case "23514", "22P02":
			return fmt.Errorf("%s: %w", op, model.ErrInvalidInput)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mapReadError turns pgx.ErrNoRows into notFound.
func mapReadError(err error, op string, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return mapWriteError(err, op, notFound)
}

// runPage executes the count and page queries of q. The page query is skipped
// when the requested window starts past the last match.
func runPage[T any](ctx context.Context, db querier, q *pipeline.Query, scan pgx.RowToFunc[T]) (model.Page[T], error) {
	opts := q.PageOptions()

	countSQL, countArgs := q.BuildCount()
	var total int64
	if err := db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return model.Page[T]{}, fmt.Errorf("count page: %w", err)
	}

	if total == 0 || int64(opts.Offset()) >= total {
		return model.NewPage[T](nil, total, opts), nil
	}

	sql, args := q.Build()
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return model.Page[T]{}, fmt.Errorf("query page: %w", err)
	}

	items, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return model.Page[T]{}, fmt.Errorf("scan page: %w", err)
	}

	return model.NewPage(items, total, opts), nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

const ownerColumns = "o.id, o.username, o.full_name, o.avatar_url"

func ownerDest(o *model.OwnerSummary) []any {
	return []any{&o.ID, &o.Username, &o.FullName, &o.AvatarURL}
}
