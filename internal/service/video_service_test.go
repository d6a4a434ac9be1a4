package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-media-backend/internal/media"
	"go-media-backend/internal/model"
	"go-media-backend/internal/storage"
	"go-media-backend/pkg/apierror"
)

type videoFixture struct {
	users   *fakeUsers
	videos  *fakeVideos
	objects *storage.MockObjectStore
	service *VideoService
	input   model.PublishVideoInput
}

func newVideoFixture(t *testing.T) videoFixture {
	t.Helper()
	dir := t.TempDir()

	users := newFakeUsers()
	videos := newFakeVideos()
	objects := &storage.MockObjectStore{}
	service := NewVideoService(videos, users, objects, &fakeNormalizer{dir: dir}, fakeProber{seconds: 42.5}, VideoServiceOptions{
		AllowedVideoTypes: []string{"video/mp4", "video/webm"},
		AllowedImageTypes: []string{"image/*"},
	})

	return videoFixture{
		users:   users,
		videos:  videos,
		objects: objects,
		service: service,
		input: model.PublishVideoInput{
			Title:       "Cats",
			Description: "cats being cats",
			Video:       writeUpload(dir, "cats.mp4", "video/mp4", "frames"),
			Thumbnail:   writeUpload(dir, "cats.png", "image/png", "pixels"),
		},
	}
}

func keyWithPrefix(prefix string) any {
	return mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, prefix) })
}

func TestVideoService_Publish(t *testing.T) {
	t.Parallel()

	f := newVideoFixture(t)
	owner := f.users.add("owner").Identity()

	f.objects.On("Upload", mock.Anything, keyWithPrefix("videos/"+owner.ID+"/"), f.input.Video).
		Return(model.StoredObject{URL: "https://cdn/v.mp4"}, nil).Once()
	f.objects.On("Upload", mock.Anything, keyWithPrefix("thumbnails/"+owner.ID+"/"), mock.AnythingOfType("model.LocalFile")).
		Return(model.StoredObject{URL: "https://cdn/t.jpg"}, nil).Once()

	video, err := f.service.Publish(context.Background(), owner, f.input)
	require.NoError(t, err)

	assert.Equal(t, owner.ID, video.OwnerID)
	assert.Equal(t, "https://cdn/v.mp4", video.VideoURL)
	assert.Equal(t, "https://cdn/t.jpg", video.ThumbnailURL)
	assert.InDelta(t, 42.5, video.DurationSeconds, 0.001)
	assert.True(t, video.IsPublished)
	f.objects.AssertExpectations(t)
}

func TestVideoService_PublishIsAllOrNothing(t *testing.T) {
	t.Parallel()

	t.Run("failed thumbnail upload removes the stored video", func(t *testing.T) {
		f := newVideoFixture(t)
		owner := f.users.add("owner").Identity()

		f.objects.On("Upload", mock.Anything, keyWithPrefix("videos/"), mock.Anything).
			Return(model.StoredObject{URL: "https://cdn/v.mp4"}, nil).Once()
		f.objects.On("Upload", mock.Anything, keyWithPrefix("thumbnails/"), mock.Anything).
			Return(model.StoredObject{}, errors.New("bucket full")).Once()
		f.objects.On("Delete", mock.Anything, "https://cdn/v.mp4").Return(nil).Once()

		_, err := f.service.Publish(context.Background(), owner, f.input)
		assert.True(t, apierror.HasCode(err, apierror.CodeDependencyFailure))
		assert.Empty(t, f.videos.byID)
		f.objects.AssertExpectations(t)
	})

	t.Run("failed insert removes both objects", func(t *testing.T) {
		f := newVideoFixture(t)
		owner := f.users.add("owner").Identity()
		f.videos.createErr = errStoreDown

		f.objects.On("Upload", mock.Anything, keyWithPrefix("videos/"), mock.Anything).
			Return(model.StoredObject{URL: "https://cdn/v.mp4"}, nil).Once()
		f.objects.On("Upload", mock.Anything, keyWithPrefix("thumbnails/"), mock.Anything).
			Return(model.StoredObject{URL: "https://cdn/t.jpg"}, nil).Once()
		f.objects.On("Delete", mock.Anything, "https://cdn/v.mp4").Return(nil).Once()
		f.objects.On("Delete", mock.Anything, "https://cdn/t.jpg").Return(nil).Once()

		_, err := f.service.Publish(context.Background(), owner, f.input)
		assert.ErrorIs(t, err, errStoreDown)
		f.objects.AssertExpectations(t)
	})

	t.Run("invalid input never reaches storage", func(t *testing.T) {
		f := newVideoFixture(t)
		owner := f.users.add("owner").Identity()

		noTitle := f.input
		noTitle.Title = "  "
		_, err := f.service.Publish(context.Background(), owner, noTitle)
		assert.True(t, apierror.HasCode(err, apierror.CodeBadRequest))

		wrongType := f.input
		wrongType.Video.ContentType = "video/x-msvideo"
		_, err = f.service.Publish(context.Background(), owner, wrongType)
		assert.True(t, apierror.HasCode(err, apierror.CodeBadRequest))

		noThumb := f.input
		noThumb.Thumbnail = model.LocalFile{}
		_, err = f.service.Publish(context.Background(), owner, noThumb)
		assert.True(t, apierror.HasCode(err, apierror.CodeBadRequest))

		f.objects.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVideoService_PublishWithoutProbe(t *testing.T) {
	t.Parallel()

	f := newVideoFixture(t)
	f.service.prober = fakeProber{err: media.ErrProbeUnavailable}
	owner := f.users.add("owner").Identity()

	f.objects.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(model.StoredObject{URL: "https://cdn/x"}, nil).Twice()

	video, err := f.service.Publish(context.Background(), owner, f.input)
	require.NoError(t, err)
	assert.Zero(t, video.DurationSeconds)
}

func TestVideoService_GetCountsFirstWatchOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newVideoFixture(t)
	owner := f.users.add("owner").Identity()
	viewer := f.users.add("viewer").Identity()
	video := f.videos.add(owner.ID, "clip", true)

	first, err := f.service.Get(ctx, viewer, video.ID)
	require.NoError(t, err)
	assert.True(t, first.FirstWatch)
	assert.Equal(t, int64(1), first.Views)

	again, err := f.service.Get(ctx, viewer, video.ID)
	require.NoError(t, err)
	assert.False(t, again.FirstWatch)
	assert.Equal(t, int64(1), again.Views)
}

func TestVideoService_Visibility(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newVideoFixture(t)
	owner := f.users.add("owner").Identity()
	viewer := f.users.add("viewer").Identity()
	draft := f.videos.add(owner.ID, "draft", false)

	_, err := f.service.Get(ctx, viewer, draft.ID)
	assert.ErrorIs(t, err, model.ErrVideoNotFound)

	_, err = f.service.Get(ctx, owner, draft.ID)
	assert.NoError(t, err)

	_, err = f.service.Get(ctx, viewer, "draft")
	assert.True(t, apierror.HasCode(err, apierror.CodeBadRequest))
}

func TestVideoService_FeedSearch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newVideoFixture(t)
	owner := f.users.add("owner").Identity()
	viewer := f.users.add("viewer").Identity()
	for _, title := range []string{"one", "two", "three", "four", "Unique Cats"} {
		f.videos.add(owner.ID, title, true)
	}

	page, err := f.service.Feed(ctx, viewer, VideoQuery{Query: "uNiQuE"}, model.PageOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Unique Cats", page.Items[0].Title)

	page, err = f.service.Feed(ctx, viewer, VideoQuery{OwnerID: owner.ID}, model.PageOptions{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(5), page.Total)

	_, err = f.service.Feed(ctx, viewer, VideoQuery{OwnerID: uuid.NewString()}, model.PageOptions{})
	assert.True(t, apierror.HasCode(err, apierror.CodeNotFound))
}

func TestVideoService_OwnerOnlyMutations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newVideoFixture(t)
	owner := f.users.add("owner").Identity()
	intruder := f.users.add("intruder").Identity()
	video := f.videos.add(owner.ID, "clip", true)

	_, err := f.service.TogglePublish(ctx, intruder, video.ID)
	assert.True(t, apierror.HasCode(err, apierror.CodeForbidden))

	err = f.service.Delete(ctx, intruder, video.ID)
	assert.True(t, apierror.HasCode(err, apierror.CodeForbidden))

	toggled, err := f.service.TogglePublish(ctx, owner, video.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsPublished)
}

func TestVideoService_DeleteRemovesRowBeforeFiles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newVideoFixture(t)
	owner := f.users.add("owner").Identity()
	video, err := f.videos.Create(ctx, model.Video{OwnerID: owner.ID, VideoURL: "https://cdn/v.mp4", ThumbnailURL: "https://cdn/t.jpg"})
	require.NoError(t, err)

	// The video file goes, the thumbnail delete fails: the row must not survive.
	f.objects.On("Delete", mock.Anything, "https://cdn/v.mp4").Return(nil).Once()
	f.objects.On("Delete", mock.Anything, "https://cdn/t.jpg").Return(errors.New("timeout")).Once()

	require.NoError(t, f.service.Delete(ctx, owner, video.ID))

	_, err = f.videos.FindByID(ctx, video.ID)
	assert.ErrorIs(t, err, model.ErrVideoNotFound)
	f.objects.AssertExpectations(t)
}

func TestVideoService_DeleteLeavesFilesWhenRowStays(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newVideoFixture(t)
	owner := f.users.add("owner").Identity()
	video, err := f.videos.Create(ctx, model.Video{OwnerID: owner.ID, VideoURL: "https://cdn/v.mp4", ThumbnailURL: "https://cdn/t.jpg"})
	require.NoError(t, err)

	// Deleting twice: the second call finds no row and must not touch storage.
	f.objects.On("Delete", mock.Anything, mock.Anything).Return(nil).Twice()
	require.NoError(t, f.service.Delete(ctx, owner, video.ID))

	err = f.service.Delete(ctx, owner, video.ID)
	assert.ErrorIs(t, err, model.ErrVideoNotFound)
	f.objects.AssertNumberOfCalls(t, "Delete", 2)
}
