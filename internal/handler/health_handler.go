package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go-media-backend/internal/logger"
	"go-media-backend/internal/model"
)

type pinger interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db      pinger
	timeout time.Duration
}

func NewHealthHandler(db pinger) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second}
}

// Check reports 503 while the database is unreachable so load balancers can
// drain the instance.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		logger.FromContext(r.Context()).Warn("health check failed", slog.String("error", err.Error()))
		writeEnvelope(w, http.StatusServiceUnavailable, model.HealthStatus{Status: "degraded", Database: "unreachable"}, "service degraded", nil)
		return
	}

	writeSuccess(w, http.StatusOK, model.HealthStatus{Status: "ok", Database: "ok"}, "healthy")
}
