package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-media-backend/internal/model"
)

type channelService interface {
	Profile(ctx context.Context, identity model.Identity, username string) (model.ChannelProfile, error)
	Stats(ctx context.Context, rawChannelID string) (model.ChannelStats, error)
	Videos(ctx context.Context, identity model.Identity, rawChannelID string, opts model.PageOptions) (model.Page[model.VideoSummary], error)
	Tweets(ctx context.Context, identity model.Identity, rawUserID string, opts model.PageOptions) (model.Page[model.TweetSummary], error)
}

// ChannelHandler serves public channel pages and the owner's dashboard.
type ChannelHandler struct {
	service channelService
}

func NewChannelHandler(service channelService) *ChannelHandler {
	return &ChannelHandler{service: service}
}

func (h *ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Profile(r.Context(), identity, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, profile, "channel profile")
}

func (h *ChannelHandler) Stats(w http.ResponseWriter, r *http.Request) {
	h.stats(w, r, chi.URLParam(r, "channelID"))
}

func (h *ChannelHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	h.stats(w, r, identity.ID)
}

func (h *ChannelHandler) stats(w http.ResponseWriter, r *http.Request, rawChannelID string) {
	stats, err := h.service.Stats(r.Context(), rawChannelID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, stats, "channel stats")
}

func (h *ChannelHandler) Videos(w http.ResponseWriter, r *http.Request) {
	h.videos(w, r, chi.URLParam(r, "channelID"))
}

func (h *ChannelHandler) DashboardVideos(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	h.videos(w, r, identity.ID)
}

func (h *ChannelHandler) videos(w http.ResponseWriter, r *http.Request, rawChannelID string) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	opts, err := parsePageOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.service.Videos(r.Context(), identity, rawChannelID, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, page, "channel videos")
}

func (h *ChannelHandler) Tweets(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	opts, err := parsePageOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.service.Tweets(r.Context(), identity, chi.URLParam(r, "userID"), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, page, "user tweets")
}
