package service

import (
	"context"

	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

// SubscriptionService maintains the subscriber/channel graph.
type SubscriptionService struct {
	subscriptions SubscriptionStore
	users         UserStore
}

func NewSubscriptionService(subscriptions SubscriptionStore, users UserStore) *SubscriptionService {
	return &SubscriptionService{subscriptions: subscriptions, users: users}
}

// Toggle flips the edge from identity to the channel and reports whether it
// now exists.
func (s *SubscriptionService) Toggle(ctx context.Context, identity model.Identity, rawChannelID string) (model.SubscriptionStatus, error) {
	channelID, err := parseID(rawChannelID, "channelId")
	if err != nil {
		return model.SubscriptionStatus{}, err
	}
	if channelID == canonicalID(identity.ID) {
		return model.SubscriptionStatus{}, apierror.InvalidArgument("cannot subscribe to your own channel", "channelId")
	}
	if err := s.requireUser(ctx, channelID, "channel not found"); err != nil {
		return model.SubscriptionStatus{}, err
	}

	subscribed, err := s.subscriptions.Toggle(ctx, identity.ID, channelID)
	if err != nil {
		return model.SubscriptionStatus{}, err
	}
	return model.SubscriptionStatus{Subscribed: subscribed}, nil
}

func (s *SubscriptionService) CountSubscribers(ctx context.Context, rawChannelID string) (model.SubscriberCount, error) {
	channelID, err := parseID(rawChannelID, "channelId")
	if err != nil {
		return model.SubscriberCount{}, err
	}
	if err := s.requireUser(ctx, channelID, "channel not found"); err != nil {
		return model.SubscriberCount{}, err
	}

	n, err := s.subscriptions.CountSubscribers(ctx, channelID)
	if err != nil {
		return model.SubscriberCount{}, err
	}
	return model.SubscriberCount{ChannelID: channelID, Subscribers: n}, nil
}

// SubscribedChannels pages the channels a subscriber follows, newest first.
func (s *SubscriptionService) SubscribedChannels(ctx context.Context, identity model.Identity, rawSubscriberID string, opts model.PageOptions) (model.Page[model.ChannelSummary], error) {
	subscriberID, err := parseID(rawSubscriberID, "subscriberId")
	if err != nil {
		return model.Page[model.ChannelSummary]{}, err
	}
	if err := s.requireUser(ctx, subscriberID, "subscriber not found"); err != nil {
		return model.Page[model.ChannelSummary]{}, err
	}
	return s.subscriptions.ListSubscribedChannels(ctx, subscriberID, identity.ID, opts)
}

func (s *SubscriptionService) Subscribers(ctx context.Context, identity model.Identity, rawChannelID string, opts model.PageOptions) (model.Page[model.ChannelSummary], error) {
	channelID, err := parseID(rawChannelID, "channelId")
	if err != nil {
		return model.Page[model.ChannelSummary]{}, err
	}
	if err := s.requireUser(ctx, channelID, "channel not found"); err != nil {
		return model.Page[model.ChannelSummary]{}, err
	}
	return s.subscriptions.ListSubscribers(ctx, channelID, identity.ID, opts)
}

func (s *SubscriptionService) requireUser(ctx context.Context, id string, message string) error {
	exists, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apierror.NotFound(message, id)
	}
	return nil
}
