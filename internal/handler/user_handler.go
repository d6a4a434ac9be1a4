package handler

import (
	"context"
	"net/http"

	"go-media-backend/internal/model"
)

type accountService interface {
	UpdateAccount(ctx context.Context, identity model.Identity, req model.UpdateAccountRequest) (model.Identity, error)
	UpdateAvatar(ctx context.Context, identity model.Identity, file model.LocalFile) (model.Identity, error)
	UpdateCover(ctx context.Context, identity model.Identity, file model.LocalFile) (model.Identity, error)
}

type UserHandler struct {
	service accountService
	tempDir string
}

func NewUserHandler(service accountService, tempDir string) *UserHandler {
	return &UserHandler{service: service, tempDir: tempDir}
}

func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var payload model.UpdateAccountRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.service.UpdateAccount(r.Context(), identity, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated, "account updated")
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", h.service.UpdateAvatar, "avatar updated")
}

func (h *UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", h.service.UpdateCover, "cover image updated")
}

type imageUpdate func(ctx context.Context, identity model.Identity, file model.LocalFile) (model.Identity, error)

func (h *UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdate, message string) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	form, err := spoolMultipart(r, h.tempDir, field)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Cleanup()

	updated, err := update(r.Context(), identity, form.File(field))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated, message)
}
