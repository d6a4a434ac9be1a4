package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

type likeService interface {
	Toggle(ctx context.Context, identity model.Identity, kind model.LikeKind, rawID string) (model.LikeStatus, error)
}

type LikeHandler struct {
	service likeService
}

func NewLikeHandler(service likeService) *LikeHandler {
	return &LikeHandler{service: service}
}

// Toggle flips the caller's like on /likes/{kind}/{targetID}, where kind is
// video, comment or tweet.
func (h *LikeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	kind := model.LikeKind(strings.ToLower(chi.URLParam(r, "kind")))
	if !kind.Valid() {
		writeError(w, r, apierror.InvalidArgument("like target must be video, comment or tweet", "kind"))
		return
	}

	status, err := h.service.Toggle(r.Context(), identity, kind, chi.URLParam(r, "targetID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	message := string(kind) + " unliked"
	if status.Liked {
		message = string(kind) + " liked"
	}
	writeSuccess(w, http.StatusOK, status, message)
}
