package service

import (
	"context"

	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

type LikeService struct {
	likes    LikeStore
	videos   VideoStore
	comments CommentStore
	tweets   TweetStore
}

func NewLikeService(likes LikeStore, videos VideoStore, comments CommentStore, tweets TweetStore) *LikeService {
	return &LikeService{likes: likes, videos: videos, comments: comments, tweets: tweets}
}

// Toggle flips identity's like on the target, which must exist and be
// visible to identity.
func (s *LikeService) Toggle(ctx context.Context, identity model.Identity, kind model.LikeKind, rawID string) (model.LikeStatus, error) {
	id, err := parseID(rawID, string(kind)+"Id")
	if err != nil {
		return model.LikeStatus{}, err
	}

	target, err := model.NewLikeTarget(kind, id)
	if err != nil {
		return model.LikeStatus{}, apierror.InvalidArgument("unknown like target", "kind")
	}

	if err := s.requireTarget(ctx, identity, target); err != nil {
		return model.LikeStatus{}, err
	}

	liked, err := s.likes.Toggle(ctx, identity.ID, target)
	if err != nil {
		return model.LikeStatus{}, err
	}
	return model.LikeStatus{Liked: liked}, nil
}

func (s *LikeService) requireTarget(ctx context.Context, identity model.Identity, target model.LikeTarget) error {
	var err error
	switch target.Kind() {
	case model.LikeKindVideo:
		_, err = s.videos.Detail(ctx, target.ID(), identity.ID)
	case model.LikeKindComment:
		_, err = s.comments.FindByID(ctx, target.ID())
	case model.LikeKindTweet:
		_, err = s.tweets.FindByID(ctx, target.ID())
	}
	return err
}
