package model

import "time"

type Video struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	VideoURL        string    `json:"video_url"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	DurationSeconds float64   `json:"duration_seconds"`
	Views           int64     `json:"views"`
	IsPublished     bool      `json:"is_published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (v Video) ResourceOwner() string { return v.OwnerID }

// VideoSummary is a video row of a listing with its owner joined in.
type VideoSummary struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	VideoURL        string       `json:"video_url"`
	ThumbnailURL    string       `json:"thumbnail_url"`
	DurationSeconds float64      `json:"duration_seconds"`
	Views           int64        `json:"views"`
	IsPublished     bool         `json:"is_published"`
	Likes           int64        `json:"likes"`
	CreatedAt       time.Time    `json:"created_at"`
	Owner           OwnerSummary `json:"owner"`
}

// VideoDetail is a single video as seen by a viewer.
type VideoDetail struct {
	VideoSummary
	Comments     int64 `json:"comments"`
	IsLiked      bool  `json:"is_liked"`
	FirstWatch   bool  `json:"first_watch"`
	IsSubscribed bool  `json:"is_subscribed"`
}

type WatchHistoryItem struct {
	VideoSummary
	WatchedAt time.Time `json:"watched_at"`
}

type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t Tweet) ResourceOwner() string { return t.OwnerID }

type TweetSummary struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	Likes     int64        `json:"likes"`
	IsLiked   bool         `json:"is_liked"`
	CreatedAt time.Time    `json:"created_at"`
	Owner     OwnerSummary `json:"owner"`
}

type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id"`
	OwnerID   string    `json:"owner_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Comment) ResourceOwner() string { return c.OwnerID }

type CommentSummary struct {
	ID        string       `json:"id"`
	VideoID   string       `json:"video_id"`
	Content   string       `json:"content"`
	Likes     int64        `json:"likes"`
	IsLiked   bool         `json:"is_liked"`
	CreatedAt time.Time    `json:"created_at"`
	Owner     OwnerSummary `json:"owner"`
}

type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Playlist) ResourceOwner() string { return p.OwnerID }

type PlaylistSummary struct {
	Playlist
	TotalVideos int64 `json:"total_videos"`
	TotalViews  int64 `json:"total_views"`
}

type PlaylistDetail struct {
	PlaylistSummary
	Owner  OwnerSummary       `json:"owner"`
	Videos Page[VideoSummary] `json:"videos"`
}

// ChannelStats is the merged result of the per-channel statistics fan-out.
type ChannelStats struct {
	ChannelID         string `json:"channel_id"`
	TotalViews        int64  `json:"total_views"`
	TotalVideos       int64  `json:"total_videos"`
	TotalSubscribers  int64  `json:"total_subscribers"`
	TotalTweets       int64  `json:"total_tweets"`
	TotalComments     int64  `json:"total_comments"`
	TotalVideoLikes   int64  `json:"total_video_likes"`
	TotalCommentLikes int64  `json:"total_comment_likes"`
	TotalTweetLikes   int64  `json:"total_tweet_likes"`
}
