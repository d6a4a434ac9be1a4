package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

type auditService interface {
	Query(ctx context.Context, identity model.Identity, query model.AuditQuery) (model.Page[model.AuditEntry], error)
}

type AuditHandler struct {
	service auditService
}

func NewAuditHandler(service auditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List pages the caller's own session audit trail, newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	opts, err := parsePageOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	query := r.URL.Query()
	from, err := parseTimeParam(query.Get("from"), "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := parseTimeParam(query.Get("to"), "to")
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := strings.TrimSpace(query.Get("status"))
	if status != "" && status != model.AuditStatusSuccess && status != model.AuditStatusFailure {
		writeError(w, r, apierror.InvalidArgument("status must be success or failure", "status"))
		return
	}

	page, err := h.service.Query(r.Context(), identity, model.AuditQuery{
		Action: strings.TrimSpace(query.Get("action")),
		Status: status,
		From:   from,
		To:     to,
		Page:   opts,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, page, "audit entries")
}

func parseTimeParam(raw string, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apierror.InvalidArgument(field+" must be an RFC3339 timestamp", field)
	}
	return parsed, nil
}
