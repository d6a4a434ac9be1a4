package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

const maxCommentLength = 2000

type CommentService struct {
	comments CommentStore
	videos   VideoStore
}

func NewCommentService(comments CommentStore, videos VideoStore) *CommentService {
	return &CommentService{comments: comments, videos: videos}
}

// List pages the comments of a video visible to identity.
func (s *CommentService) List(ctx context.Context, identity model.Identity, rawVideoID string, opts model.PageOptions) (model.Page[model.CommentSummary], error) {
	videoID, err := s.visibleVideo(ctx, identity, rawVideoID)
	if err != nil {
		return model.Page[model.CommentSummary]{}, err
	}
	return s.comments.ListForVideo(ctx, videoID, identity.ID, opts)
}

func (s *CommentService) Add(ctx context.Context, identity model.Identity, rawVideoID string, req model.CommentRequest) (model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return model.Comment{}, apierror.InvalidArgument("content is required", "content")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return model.Comment{}, apierror.InvalidArgument("content is too long", "content")
	}

	videoID, err := s.visibleVideo(ctx, identity, rawVideoID)
	if err != nil {
		return model.Comment{}, err
	}

	return s.comments.Create(ctx, model.Comment{VideoID: videoID, OwnerID: identity.ID, Content: content})
}

// Delete removes an owned comment and the likes on it.
func (s *CommentService) Delete(ctx context.Context, identity model.Identity, rawCommentID string) error {
	commentID, err := parseID(rawCommentID, "commentId")
	if err != nil {
		return err
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := requireOwner(identity, comment, "comment"); err != nil {
		return err
	}

	return s.comments.Delete(ctx, comment.ID, identity.ID)
}

func (s *CommentService) visibleVideo(ctx context.Context, identity model.Identity, rawVideoID string) (string, error) {
	videoID, err := parseID(rawVideoID, "videoId")
	if err != nil {
		return "", err
	}
	if _, err := s.videos.Detail(ctx, videoID, identity.ID); err != nil {
		return "", err
	}
	return videoID, nil
}
