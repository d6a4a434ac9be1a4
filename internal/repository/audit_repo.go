package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-media-backend/internal/model"
	"go-media-backend/internal/pipeline"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_entries (action, occurred_at, actor_user_id, actor_ip, status, error_text)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.Action, entry.OccurredAt, nullable(entry.Actor.UserID), entry.Actor.IP, entry.Status, entry.Error)
	if err != nil {
		return fmt.Errorf("log audit entry: %w", err)
	}
	return nil
}

var auditSort = map[model.SortField]string{
	model.SortByCreatedAt: "a.occurred_at",
}

func (r *AuditRepository) Query(ctx context.Context, query model.AuditQuery) (model.Page[model.AuditEntry], error) {
	q := pipeline.From("audit_entries", "a").
		Columns("a.id", "a.action", "a.occurred_at", "COALESCE(a.actor_user_id::TEXT, '')", "a.actor_ip", "a.status", "a.error_text").
		MatchIf(query.ActorID != "", "a.actor_user_id = ?", query.ActorID).
		MatchIf(strings.TrimSpace(query.Action) != "", "lower(a.action) = lower(?)", strings.TrimSpace(query.Action)).
		MatchIf(strings.TrimSpace(query.Status) != "", "lower(a.status) = lower(?)", strings.TrimSpace(query.Status)).
		MatchIf(!query.From.IsZero(), "a.occurred_at >= ?", query.From).
		MatchIf(!query.To.IsZero(), "a.occurred_at <= ?", query.To).
		Paginate(query.Page, auditSort)

	return runPage(ctx, r.pool, q, func(row pgx.CollectableRow) (model.AuditEntry, error) {
		var e model.AuditEntry
		err := row.Scan(&e.ID, &e.Action, &e.OccurredAt, &e.Actor.UserID, &e.Actor.IP, &e.Status, &e.Error)
		e.OccurredAt = e.OccurredAt.UTC()
		return e, err
	})
}
