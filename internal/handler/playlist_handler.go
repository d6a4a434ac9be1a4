package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-media-backend/internal/model"
)

type playlistService interface {
	Create(ctx context.Context, identity model.Identity, req model.CreatePlaylistRequest) (model.Playlist, error)
	Get(ctx context.Context, identity model.Identity, rawPlaylistID string, opts model.PageOptions) (model.PlaylistDetail, error)
	ListForUser(ctx context.Context, identity model.Identity, rawUserID string, opts model.PageOptions) (model.Page[model.PlaylistSummary], error)
	AddVideo(ctx context.Context, identity model.Identity, rawPlaylistID string, rawVideoID string) error
	RemoveVideo(ctx context.Context, identity model.Identity, rawPlaylistID string, rawVideoID string) error
	Delete(ctx context.Context, identity model.Identity, rawPlaylistID string) error
}

type PlaylistHandler struct {
	service playlistService
}

func NewPlaylistHandler(service playlistService) *PlaylistHandler {
	return &PlaylistHandler{service: service}
}

func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var payload model.CreatePlaylistRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	playlist, err := h.service.Create(r.Context(), identity, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, playlist, "playlist created")
}

// Get returns the playlist with one page of its visible videos; the page
// meta describes the video listing.
func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	opts, err := parsePageOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail, err := h.service.Get(r.Context(), identity, chi.URLParam(r, "playlistID"), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, detail, "playlist")
}

func (h *PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	opts, err := parsePageOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.service.ListForUser(r.Context(), identity, chi.URLParam(r, "userID"), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, page, "playlists")
}

func (h *PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.service.AddVideo, "video added to playlist")
}

func (h *PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.service.RemoveVideo, "video removed from playlist")
}

type membershipChange func(ctx context.Context, identity model.Identity, rawPlaylistID string, rawVideoID string) error

func (h *PlaylistHandler) changeMembership(w http.ResponseWriter, r *http.Request, change membershipChange, message string) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	if err := change(r.Context(), identity, chi.URLParam(r, "playlistID"), chi.URLParam(r, "videoID")); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{}, message)
}

func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity, chi.URLParam(r, "playlistID")); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{}, "playlist deleted")
}
