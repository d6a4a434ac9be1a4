package service

import (
	"context"

	"go-media-backend/internal/model"
	"go-media-backend/internal/repository"
)

// Store contracts consumed by the services. The repository package provides
// the PostgreSQL implementations; tests provide in-memory ones.

type FingerprintStore interface {
	SetRefreshFingerprint(ctx context.Context, userID string, fingerprint string) error
	SwapRefreshFingerprint(ctx context.Context, userID string, previous string, next string) (bool, error)
	ClearRefreshFingerprint(ctx context.Context, userID string) error
}

type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByLogin(ctx context.Context, username string, email string) (model.User, error)
	FindIdentity(ctx context.Context, id string) (model.Identity, error)
	FindIDByUsername(ctx context.Context, username string) (string, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateAccount(ctx context.Context, id string, fullName string, email string) (model.User, error)
	ReplaceMedia(ctx context.Context, id string, field repository.MediaField, url string) (model.User, string, error)
	ChannelProfile(ctx context.Context, username string, viewerID string) (model.ChannelProfile, error)
}

type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID string, channelID string) (bool, error)
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string, viewerID string, opts model.PageOptions) (model.Page[model.ChannelSummary], error)
	ListSubscribers(ctx context.Context, channelID string, viewerID string, opts model.PageOptions) (model.Page[model.ChannelSummary], error)
}

type VideoStore interface {
	Create(ctx context.Context, v model.Video) (model.Video, error)
	FindByID(ctx context.Context, id string) (model.Video, error)
	Detail(ctx context.Context, id string, viewerID string) (model.VideoDetail, error)
	RecordWatch(ctx context.Context, userID string, videoID string) (bool, error)
	TogglePublished(ctx context.Context, id string, ownerID string) (model.Video, error)
	Delete(ctx context.Context, id string, ownerID string) (model.Video, error)
	List(ctx context.Context, filter repository.VideoFilter, opts model.PageOptions) (model.Page[model.VideoSummary], error)
	WatchHistory(ctx context.Context, userID string, opts model.PageOptions) (model.Page[model.WatchHistoryItem], error)
	LikedVideos(ctx context.Context, userID string, opts model.PageOptions) (model.Page[model.VideoSummary], error)
}

type CommentStore interface {
	Create(ctx context.Context, c model.Comment) (model.Comment, error)
	FindByID(ctx context.Context, id string) (model.Comment, error)
	Delete(ctx context.Context, id string, ownerID string) error
	ListForVideo(ctx context.Context, videoID string, viewerID string, opts model.PageOptions) (model.Page[model.CommentSummary], error)
}

type TweetStore interface {
	FindByID(ctx context.Context, id string) (model.Tweet, error)
	ListForUser(ctx context.Context, ownerID string, viewerID string, opts model.PageOptions) (model.Page[model.TweetSummary], error)
}

type LikeStore interface {
	Toggle(ctx context.Context, actorID string, target model.LikeTarget) (bool, error)
}

type PlaylistStore interface {
	Create(ctx context.Context, p model.Playlist) (model.Playlist, error)
	FindByID(ctx context.Context, id string) (model.Playlist, error)
	Summary(ctx context.Context, id string, viewerID string) (model.PlaylistSummary, model.OwnerSummary, error)
	ListForOwner(ctx context.Context, ownerID string, viewerID string, opts model.PageOptions) (model.Page[model.PlaylistSummary], error)
	Videos(ctx context.Context, playlistID string, viewerID string, opts model.PageOptions) (model.Page[model.VideoSummary], error)
	AddVideo(ctx context.Context, playlistID string, videoID string) error
	RemoveVideo(ctx context.Context, playlistID string, videoID string) error
	Delete(ctx context.Context, id string, ownerID string) error
}

type StatsStore interface {
	ViewsAndVideos(ctx context.Context, channelID string) (int64, int64, error)
	Subscribers(ctx context.Context, channelID string) (int64, error)
	Tweets(ctx context.Context, channelID string) (int64, error)
	Comments(ctx context.Context, channelID string) (int64, error)
	Likes(ctx context.Context, channelID string, kind model.LikeKind) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) (model.Page[model.AuditEntry], error)
}

// ObjectStore persists uploaded blobs and returns their durable URL.
type ObjectStore interface {
	Upload(ctx context.Context, key string, file model.LocalFile) (model.StoredObject, error)
	Delete(ctx context.Context, url string) error
}

// ImageNormalizer re-encodes an uploaded image into a bounded, uniform file.
// The returned file is a new temporary file the caller removes.
type ImageNormalizer interface {
	Normalize(ctx context.Context, file model.LocalFile) (model.LocalFile, error)
}

// DurationProber reads the playback length of a local media file.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

var (
	_ UserStore         = (*repository.UserRepository)(nil)
	_ FingerprintStore  = (*repository.UserRepository)(nil)
	_ SubscriptionStore = (*repository.SubscriptionRepository)(nil)
	_ VideoStore        = (*repository.VideoRepository)(nil)
	_ CommentStore      = (*repository.CommentRepository)(nil)
	_ TweetStore        = (*repository.TweetRepository)(nil)
	_ LikeStore         = (*repository.LikeRepository)(nil)
	_ PlaylistStore     = (*repository.PlaylistRepository)(nil)
	_ StatsStore        = (*repository.StatsRepository)(nil)
	_ AuditStore        = (*repository.AuditRepository)(nil)
)
