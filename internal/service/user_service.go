package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"os"
	"strings"

	"go-media-backend/internal/logger"
	"go-media-backend/internal/model"
	"go-media-backend/internal/repository"
	"go-media-backend/internal/util"
	"go-media-backend/pkg/apierror"
)

// UserService edits the caller's own account.
type UserService struct {
	users   UserStore
	objects ObjectStore
	images  ImageNormalizer
}

func NewUserService(users UserStore, objects ObjectStore, images ImageNormalizer) *UserService {
	return &UserService{users: users, objects: objects, images: images}
}

func (s *UserService) UpdateAccount(ctx context.Context, identity model.Identity, req model.UpdateAccountRequest) (model.Identity, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if fullName == "" {
		return model.Identity{}, apierror.InvalidArgument("full name is required", "full_name")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.Identity{}, apierror.InvalidArgument("email is invalid", "email")
	}

	user, err := s.users.UpdateAccount(ctx, identity.ID, fullName, email)
	if err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.Identity{}, apierror.Conflict("email already registered", "")
		}
		return model.Identity{}, err
	}
	return user.Identity(), nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, identity model.Identity, file model.LocalFile) (model.Identity, error) {
	return s.replaceImage(ctx, identity, file, repository.MediaAvatar, "avatars", "avatar")
}

func (s *UserService) UpdateCover(ctx context.Context, identity model.Identity, file model.LocalFile) (model.Identity, error) {
	return s.replaceImage(ctx, identity, file, repository.MediaCover, "covers", "coverImage")
}

// replaceImage uploads the normalized image, then swaps the stored URL. A
// failed swap removes the new blob; after a committed swap the previous blob
// is removed best effort.
func (s *UserService) replaceImage(ctx context.Context, identity model.Identity, file model.LocalFile, field repository.MediaField, prefix string, formField string) (model.Identity, error) {
	if file.Path == "" {
		return model.Identity{}, apierror.InvalidArgument(formField+" file is required", formField)
	}
	if !util.IsImageMIME(file.ContentType) {
		return model.Identity{}, apierror.InvalidArgument(formField+" must be an image", formField)
	}

	normalized, err := s.images.Normalize(ctx, file)
	if err != nil {
		return model.Identity{}, err
	}
	defer os.Remove(normalized.Path)

	stored, err := s.objects.Upload(ctx, util.ObjectKey(prefix, identity.ID, ".jpg"), normalized)
	if err != nil {
		return model.Identity{}, apierror.DependencyFailure("failed to store "+formField, err)
	}

	user, previous, err := s.users.ReplaceMedia(ctx, identity.ID, field, stored.URL)
	if err != nil {
		discardObject(ctx, s.objects, stored.URL)
		return model.Identity{}, err
	}

	// The old image goes only once the new URL is committed.
	discardObject(ctx, s.objects, previous)
	return user.Identity(), nil
}

// discardObject is a best effort compensating delete.
func discardObject(ctx context.Context, objects ObjectStore, url string) {
	if url == "" {
		return
	}
	if err := objects.Delete(context.WithoutCancel(ctx), url); err != nil {
		logger.FromContext(ctx).Warn("orphaned object left in storage",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}
