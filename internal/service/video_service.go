package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"go-media-backend/internal/logger"
	"go-media-backend/internal/media"
	"go-media-backend/internal/model"
	"go-media-backend/internal/repository"
	"go-media-backend/internal/util"
	"go-media-backend/pkg/apierror"
)

type VideoServiceOptions struct {
	AllowedVideoTypes []string
	AllowedImageTypes []string
}

// VideoService publishes and serves videos, and keeps the viewer's watch
// history in step with view counts.
type VideoService struct {
	videos  VideoStore
	users   UserStore
	objects ObjectStore
	images  ImageNormalizer
	prober  DurationProber
	opts    VideoServiceOptions
}

func NewVideoService(videos VideoStore, users UserStore, objects ObjectStore, images ImageNormalizer, prober DurationProber, opts VideoServiceOptions) *VideoService {
	if len(opts.AllowedVideoTypes) == 0 {
		opts.AllowedVideoTypes = []string{"video/*"}
	}
	if len(opts.AllowedImageTypes) == 0 {
		opts.AllowedImageTypes = []string{"image/*"}
	}
	return &VideoService{videos: videos, users: users, objects: objects, images: images, prober: prober, opts: opts}
}

// VideoQuery narrows the feed. OwnerID is a raw id from the request.
type VideoQuery struct {
	OwnerID string
	Query   string
}

// Feed pages videos visible to identity, optionally narrowed to one owner or
// a case-insensitive search over title and description.
func (s *VideoService) Feed(ctx context.Context, identity model.Identity, query VideoQuery, opts model.PageOptions) (model.Page[model.VideoSummary], error) {
	filter := repository.VideoFilter{ViewerID: identity.ID, Query: strings.TrimSpace(query.Query)}

	if strings.TrimSpace(query.OwnerID) != "" {
		ownerID, err := parseID(query.OwnerID, "userId")
		if err != nil {
			return model.Page[model.VideoSummary]{}, err
		}
		exists, err := s.users.Exists(ctx, ownerID)
		if err != nil {
			return model.Page[model.VideoSummary]{}, err
		}
		if !exists {
			return model.Page[model.VideoSummary]{}, apierror.NotFound("user not found", ownerID)
		}
		filter.OwnerID = ownerID
	}

	return s.videos.List(ctx, filter, opts)
}

// Publish stores both files and the video row, or none of them.
func (s *VideoService) Publish(ctx context.Context, identity model.Identity, input model.PublishVideoInput) (model.Video, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	switch {
	case title == "":
		return model.Video{}, apierror.InvalidArgument("title is required", "title")
	case description == "":
		return model.Video{}, apierror.InvalidArgument("description is required", "description")
	case input.Video.Path == "":
		return model.Video{}, apierror.InvalidArgument("video file is required", "videoFile")
	case input.Thumbnail.Path == "":
		return model.Video{}, apierror.InvalidArgument("thumbnail is required", "thumbnail")
	case !util.MIMEAllowed(input.Video.ContentType, s.opts.AllowedVideoTypes):
		return model.Video{}, apierror.InvalidArgument("unsupported video type", "videoFile")
	case !util.MIMEAllowed(input.Thumbnail.ContentType, s.opts.AllowedImageTypes):
		return model.Video{}, apierror.InvalidArgument("unsupported thumbnail type", "thumbnail")
	}

	duration := s.probeDuration(ctx, input.Video.Path)

	thumbnail, err := s.images.Normalize(ctx, input.Thumbnail)
	if err != nil {
		return model.Video{}, err
	}
	defer os.Remove(thumbnail.Path)

	var videoObject, thumbObject model.StoredObject
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		key := util.ObjectKey("videos", identity.ID, util.VideoExtension(input.Video.Name, input.Video.ContentType))
		videoObject, err = s.objects.Upload(gctx, key, input.Video)
		return err
	})
	g.Go(func() (err error) {
		thumbObject, err = s.objects.Upload(gctx, util.ObjectKey("thumbnails", identity.ID, ".jpg"), thumbnail)
		return err
	})
	if err := g.Wait(); err != nil {
		discardObject(ctx, s.objects, videoObject.URL)
		discardObject(ctx, s.objects, thumbObject.URL)
		return model.Video{}, apierror.DependencyFailure("failed to store video files", err)
	}

	video, err := s.videos.Create(ctx, model.Video{
		OwnerID:         identity.ID,
		Title:           title,
		Description:     description,
		VideoURL:        videoObject.URL,
		ThumbnailURL:    thumbObject.URL,
		DurationSeconds: duration,
		IsPublished:     true,
	})
	if err != nil {
		discardObject(ctx, s.objects, videoObject.URL)
		discardObject(ctx, s.objects, thumbObject.URL)
		return model.Video{}, err
	}

	return video, nil
}

// Get returns a visible video and records the watch. Views only grow on the
// viewer's first watch.
func (s *VideoService) Get(ctx context.Context, identity model.Identity, rawVideoID string) (model.VideoDetail, error) {
	videoID, err := parseID(rawVideoID, "videoId")
	if err != nil {
		return model.VideoDetail{}, err
	}

	detail, err := s.videos.Detail(ctx, videoID, identity.ID)
	if err != nil {
		return model.VideoDetail{}, err
	}

	first, err := s.videos.RecordWatch(ctx, identity.ID, videoID)
	if err != nil {
		return model.VideoDetail{}, err
	}
	if first {
		detail.Views++
	}
	detail.FirstWatch = first

	return detail, nil
}

func (s *VideoService) TogglePublish(ctx context.Context, identity model.Identity, rawVideoID string) (model.Video, error) {
	video, err := s.ownedVideo(ctx, identity, rawVideoID)
	if err != nil {
		return model.Video{}, err
	}
	return s.videos.TogglePublished(ctx, video.ID, identity.ID)
}

// Delete removes the video with everything hanging off it. Files are removed
// only after the row is gone, so no stored video ever points at a missing
// object; a failed file delete leaves an orphan that is logged.
func (s *VideoService) Delete(ctx context.Context, identity model.Identity, rawVideoID string) error {
	video, err := s.ownedVideo(ctx, identity, rawVideoID)
	if err != nil {
		return err
	}

	deleted, err := s.videos.Delete(ctx, video.ID, identity.ID)
	if err != nil {
		return err
	}

	discardObject(ctx, s.objects, deleted.VideoURL)
	discardObject(ctx, s.objects, deleted.ThumbnailURL)
	return nil
}

func (s *VideoService) WatchHistory(ctx context.Context, identity model.Identity, opts model.PageOptions) (model.Page[model.WatchHistoryItem], error) {
	return s.videos.WatchHistory(ctx, identity.ID, opts)
}

func (s *VideoService) LikedVideos(ctx context.Context, identity model.Identity, opts model.PageOptions) (model.Page[model.VideoSummary], error) {
	return s.videos.LikedVideos(ctx, identity.ID, opts)
}

func (s *VideoService) ownedVideo(ctx context.Context, identity model.Identity, rawVideoID string) (model.Video, error) {
	videoID, err := parseID(rawVideoID, "videoId")
	if err != nil {
		return model.Video{}, err
	}

	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return model.Video{}, err
	}
	if err := requireOwner(identity, video, "video"); err != nil {
		return model.Video{}, err
	}
	return video, nil
}

// probeDuration never fails a publish; an unknown length is stored as zero.
func (s *VideoService) probeDuration(ctx context.Context, path string) float64 {
	if s.prober == nil {
		return 0
	}

	seconds, err := s.prober.Duration(ctx, path)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, media.ErrProbeUnavailable) {
			level = slog.LevelDebug
		}
		logger.FromContext(ctx).Log(ctx, level, "video duration unknown", slog.String("error", err.Error()))
		return 0
	}
	return seconds
}
