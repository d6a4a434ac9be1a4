package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

// fakeStats returns fixed figures and counts how many aggregations ran.
type fakeStats struct {
	views, videos, subscribers, tweets, comments int64
	likes                                        map[model.LikeKind]int64
	failOn                                       string
	calls                                        atomic.Int32
}

func (f *fakeStats) fail(name string) error {
	f.calls.Add(1)
	if f.failOn == name {
		return errStoreDown
	}
	return nil
}

func (f *fakeStats) ViewsAndVideos(context.Context, string) (int64, int64, error) {
	return f.views, f.videos, f.fail("views")
}

func (f *fakeStats) Subscribers(context.Context, string) (int64, error) {
	return f.subscribers, f.fail("subscribers")
}

func (f *fakeStats) Tweets(context.Context, string) (int64, error) {
	return f.tweets, f.fail("tweets")
}

func (f *fakeStats) Comments(context.Context, string) (int64, error) {
	return f.comments, f.fail("comments")
}

func (f *fakeStats) Likes(_ context.Context, _ string, kind model.LikeKind) (int64, error) {
	return f.likes[kind], f.fail("likes:" + string(kind))
}

func TestChannelService_StatsMergesEveryAggregation(t *testing.T) {
	t.Parallel()

	users := newFakeUsers()
	channel := users.add("chan")
	stats := &fakeStats{
		views: 120, videos: 3, subscribers: 7, tweets: 2, comments: 9,
		likes: map[model.LikeKind]int64{
			model.LikeKindVideo:   11,
			model.LikeKindComment: 4,
			model.LikeKindTweet:   1,
		},
	}
	service := NewChannelService(users, stats, newFakeVideos(), &fakeTweets{})

	got, err := service.Stats(context.Background(), channel.ID)
	require.NoError(t, err)

	assert.Equal(t, model.ChannelStats{
		ChannelID:         channel.ID,
		TotalViews:        120,
		TotalVideos:       3,
		TotalSubscribers:  7,
		TotalTweets:       2,
		TotalComments:     9,
		TotalVideoLikes:   11,
		TotalCommentLikes: 4,
		TotalTweetLikes:   1,
	}, got)
	assert.Equal(t, int32(7), stats.calls.Load())
}

func TestChannelService_StatsOfEmptyChannelAreZero(t *testing.T) {
	t.Parallel()

	users := newFakeUsers()
	channel := users.add("quiet")
	service := NewChannelService(users, &fakeStats{}, newFakeVideos(), &fakeTweets{})

	got, err := service.Stats(context.Background(), channel.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ChannelStats{ChannelID: channel.ID}, got)
}

func TestChannelService_StatsFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newFakeUsers()
	channel := users.add("chan")

	service := NewChannelService(users, &fakeStats{failOn: "likes:comment"}, newFakeVideos(), &fakeTweets{})
	_, err := service.Stats(ctx, channel.ID)
	assert.ErrorIs(t, err, errStoreDown)

	service = NewChannelService(users, &fakeStats{}, newFakeVideos(), &fakeTweets{})
	_, err = service.Stats(ctx, "12345")
	assert.True(t, apierror.HasCode(err, apierror.CodeBadRequest))

	_, err = service.Stats(ctx, uuid.NewString())
	assert.True(t, apierror.HasCode(err, apierror.CodeNotFound))
}

func TestChannelService_VideosHideDraftsFromOthers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newFakeUsers()
	videos := newFakeVideos()
	owner := users.add("owner").Identity()
	viewer := users.add("viewer").Identity()
	videos.add(owner.ID, "live", true)
	videos.add(owner.ID, "draft", false)

	service := NewChannelService(users, &fakeStats{}, videos, &fakeTweets{})

	mine, err := service.Videos(ctx, owner, owner.ID, model.PageOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Total)

	theirs, err := service.Videos(ctx, viewer, owner.ID, model.PageOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), theirs.Total)
	assert.Equal(t, "live", theirs.Items[0].Title)
}

func TestChannelService_ProfileAndTweets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newFakeUsers()
	alice := users.add("alice")
	tweetID := uuid.NewString()
	tweets := &fakeTweets{byID: map[string]model.Tweet{tweetID: {ID: tweetID, OwnerID: alice.ID, Content: "hi"}}}
	service := NewChannelService(users, &fakeStats{}, newFakeVideos(), tweets)

	profile, err := service.Profile(ctx, alice.Identity(), " ALICE ")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, profile.ID)

	_, err = service.Profile(ctx, alice.Identity(), "")
	assert.True(t, apierror.HasCode(err, apierror.CodeBadRequest))

	_, err = service.Profile(ctx, alice.Identity(), "ghost")
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	page, err := service.Tweets(ctx, alice.Identity(), alice.ID, model.PageOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "hi", page.Items[0].Content)
}
