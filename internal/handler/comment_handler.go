package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-media-backend/internal/model"
)

type commentService interface {
	List(ctx context.Context, identity model.Identity, rawVideoID string, opts model.PageOptions) (model.Page[model.CommentSummary], error)
	Add(ctx context.Context, identity model.Identity, rawVideoID string, req model.CommentRequest) (model.Comment, error)
	Delete(ctx context.Context, identity model.Identity, rawCommentID string) error
}

type CommentHandler struct {
	service commentService
}

func NewCommentHandler(service commentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	opts, err := parsePageOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.service.List(r.Context(), identity, chi.URLParam(r, "videoID"), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, page, "comments")
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var payload model.CommentRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	comment, err := h.service.Add(r.Context(), identity, chi.URLParam(r, "videoID"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, comment, "comment added")
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity, chi.URLParam(r, "commentID")); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{}, "comment deleted")
}
