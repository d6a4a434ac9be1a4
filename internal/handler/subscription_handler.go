package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-media-backend/internal/model"
)

type subscriptionService interface {
	Toggle(ctx context.Context, identity model.Identity, rawChannelID string) (model.SubscriptionStatus, error)
	CountSubscribers(ctx context.Context, rawChannelID string) (model.SubscriberCount, error)
	SubscribedChannels(ctx context.Context, identity model.Identity, rawSubscriberID string, opts model.PageOptions) (model.Page[model.ChannelSummary], error)
	Subscribers(ctx context.Context, identity model.Identity, rawChannelID string, opts model.PageOptions) (model.Page[model.ChannelSummary], error)
}

type SubscriptionHandler struct {
	service subscriptionService
}

func NewSubscriptionHandler(service subscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

func (h *SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	status, err := h.service.Toggle(r.Context(), identity, chi.URLParam(r, "channelID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	message := "unsubscribed"
	if status.Subscribed {
		message = "subscribed"
	}
	writeSuccess(w, http.StatusOK, status, message)
}

func (h *SubscriptionHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CountSubscribers(r.Context(), chi.URLParam(r, "channelID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, count, "subscriber count")
}

func (h *SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "channelID"), h.service.Subscribers, "subscribers")
}

func (h *SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "userID"), h.service.SubscribedChannels, "subscribed channels")
}

type channelListing func(ctx context.Context, identity model.Identity, rawID string, opts model.PageOptions) (model.Page[model.ChannelSummary], error)

func (h *SubscriptionHandler) list(w http.ResponseWriter, r *http.Request, rawID string, fetch channelListing, message string) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	opts, err := parsePageOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := fetch(r.Context(), identity, rawID, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, page, message)
}
