package service

import (
	"context"
	"log/slog"
	"time"

	"go-media-backend/internal/logger"
	"go-media-backend/internal/model"
)

// AuditService records session lifecycle events. Recording never fails the
// request that triggered it.
type AuditService struct {
	store AuditStore
	now   func() time.Time
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, cause error) {
	if s == nil || s.store == nil {
		return
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now(),
		Actor:      actor,
		Status:     model.AuditStatusSuccess,
	}
	if cause != nil {
		entry.Status = model.AuditStatusFailure
		entry.Error = cause.Error()
	}

	if err := s.store.Log(context.WithoutCancel(ctx), entry); err != nil {
		logger.FromContext(ctx).Warn("audit entry dropped",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}

// Query pages the audit entries of identity only.
func (s *AuditService) Query(ctx context.Context, identity model.Identity, query model.AuditQuery) (model.Page[model.AuditEntry], error) {
	query.ActorID = identity.ID
	query.Page = query.Page.Normalize()
	return s.store.Query(ctx, query)
}
