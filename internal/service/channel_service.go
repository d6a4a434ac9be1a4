package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"go-media-backend/internal/model"
	"go-media-backend/internal/repository"
	"go-media-backend/pkg/apierror"
)

// ChannelService answers the read-side questions about a channel: its
// profile, statistics and content listings.
type ChannelService struct {
	users  UserStore
	stats  StatsStore
	videos VideoStore
	tweets TweetStore
}

func NewChannelService(users UserStore, stats StatsStore, videos VideoStore, tweets TweetStore) *ChannelService {
	return &ChannelService{users: users, stats: stats, videos: videos, tweets: tweets}
}

func (s *ChannelService) Profile(ctx context.Context, identity model.Identity, username string) (model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return model.ChannelProfile{}, apierror.InvalidArgument("username is required", "username")
	}
	return s.users.ChannelProfile(ctx, username, identity.ID)
}

// Stats runs every channel aggregation concurrently and merges them once all
// have finished. The first failure cancels the rest.
func (s *ChannelService) Stats(ctx context.Context, rawChannelID string) (model.ChannelStats, error) {
	channelID, err := parseID(rawChannelID, "channelId")
	if err != nil {
		return model.ChannelStats{}, err
	}
	if err := s.requireChannel(ctx, channelID); err != nil {
		return model.ChannelStats{}, err
	}

	stats := model.ChannelStats{ChannelID: channelID}
	g, gctx := errgroup.WithContext(ctx)

	// Each goroutine writes a distinct field; Wait orders the writes before the read.
	g.Go(func() (err error) {
		stats.TotalViews, stats.TotalVideos, err = s.stats.ViewsAndVideos(gctx, channelID)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalSubscribers, err = s.stats.Subscribers(gctx, channelID)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalTweets, err = s.stats.Tweets(gctx, channelID)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalComments, err = s.stats.Comments(gctx, channelID)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalVideoLikes, err = s.stats.Likes(gctx, channelID, model.LikeKindVideo)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalCommentLikes, err = s.stats.Likes(gctx, channelID, model.LikeKindComment)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalTweetLikes, err = s.stats.Likes(gctx, channelID, model.LikeKindTweet)
		return err
	})

	if err := g.Wait(); err != nil {
		return model.ChannelStats{}, err
	}
	return stats, nil
}

// Videos pages a channel's videos; unpublished ones are included only for
// the channel itself.
func (s *ChannelService) Videos(ctx context.Context, identity model.Identity, rawChannelID string, opts model.PageOptions) (model.Page[model.VideoSummary], error) {
	channelID, err := parseID(rawChannelID, "channelId")
	if err != nil {
		return model.Page[model.VideoSummary]{}, err
	}
	if err := s.requireChannel(ctx, channelID); err != nil {
		return model.Page[model.VideoSummary]{}, err
	}
	return s.videos.List(ctx, repository.VideoFilter{ViewerID: identity.ID, OwnerID: channelID}, opts)
}

func (s *ChannelService) Tweets(ctx context.Context, identity model.Identity, rawUserID string, opts model.PageOptions) (model.Page[model.TweetSummary], error) {
	userID, err := parseID(rawUserID, "userId")
	if err != nil {
		return model.Page[model.TweetSummary]{}, err
	}
	if err := s.requireChannel(ctx, userID); err != nil {
		return model.Page[model.TweetSummary]{}, err
	}
	return s.tweets.ListForUser(ctx, userID, identity.ID, opts)
}

func (s *ChannelService) requireChannel(ctx context.Context, id string) error {
	exists, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apierror.NotFound("channel not found", id)
	}
	return nil
}
