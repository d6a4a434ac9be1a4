package service

import (
	"context"
	"strings"

	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

type PlaylistService struct {
	playlists PlaylistStore
	videos    VideoStore
	users     UserStore
}

func NewPlaylistService(playlists PlaylistStore, videos VideoStore, users UserStore) *PlaylistService {
	return &PlaylistService{playlists: playlists, videos: videos, users: users}
}

func (s *PlaylistService) Create(ctx context.Context, identity model.Identity, req model.CreatePlaylistRequest) (model.Playlist, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Playlist{}, apierror.InvalidArgument("name is required", "name")
	}

	return s.playlists.Create(ctx, model.Playlist{
		OwnerID:     identity.ID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	})
}

// Get returns the playlist with one page of the videos identity may see.
func (s *PlaylistService) Get(ctx context.Context, identity model.Identity, rawPlaylistID string, opts model.PageOptions) (model.PlaylistDetail, error) {
	playlistID, err := parseID(rawPlaylistID, "playlistId")
	if err != nil {
		return model.PlaylistDetail{}, err
	}

	summary, owner, err := s.playlists.Summary(ctx, playlistID, identity.ID)
	if err != nil {
		return model.PlaylistDetail{}, err
	}

	videos, err := s.playlists.Videos(ctx, playlistID, identity.ID, opts)
	if err != nil {
		return model.PlaylistDetail{}, err
	}

	return model.PlaylistDetail{PlaylistSummary: summary, Owner: owner, Videos: videos}, nil
}

func (s *PlaylistService) ListForUser(ctx context.Context, identity model.Identity, rawUserID string, opts model.PageOptions) (model.Page[model.PlaylistSummary], error) {
	userID, err := parseID(rawUserID, "userId")
	if err != nil {
		return model.Page[model.PlaylistSummary]{}, err
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return model.Page[model.PlaylistSummary]{}, err
	}
	if !exists {
		return model.Page[model.PlaylistSummary]{}, apierror.NotFound("user not found", userID)
	}

	return s.playlists.ListForOwner(ctx, userID, identity.ID, opts)
}

func (s *PlaylistService) AddVideo(ctx context.Context, identity model.Identity, rawPlaylistID string, rawVideoID string) error {
	playlist, videoID, err := s.ownedPlaylistAndVideo(ctx, identity, rawPlaylistID, rawVideoID)
	if err != nil {
		return err
	}
	if _, err := s.videos.Detail(ctx, videoID, identity.ID); err != nil {
		return err
	}
	return s.playlists.AddVideo(ctx, playlist.ID, videoID)
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, identity model.Identity, rawPlaylistID string, rawVideoID string) error {
	playlist, videoID, err := s.ownedPlaylistAndVideo(ctx, identity, rawPlaylistID, rawVideoID)
	if err != nil {
		return err
	}
	return s.playlists.RemoveVideo(ctx, playlist.ID, videoID)
}

func (s *PlaylistService) Delete(ctx context.Context, identity model.Identity, rawPlaylistID string) error {
	playlist, err := s.ownedPlaylist(ctx, identity, rawPlaylistID)
	if err != nil {
		return err
	}
	return s.playlists.Delete(ctx, playlist.ID, identity.ID)
}

func (s *PlaylistService) ownedPlaylistAndVideo(ctx context.Context, identity model.Identity, rawPlaylistID string, rawVideoID string) (model.Playlist, string, error) {
	videoID, err := parseID(rawVideoID, "videoId")
	if err != nil {
		return model.Playlist{}, "", err
	}
	playlist, err := s.ownedPlaylist(ctx, identity, rawPlaylistID)
	if err != nil {
		return model.Playlist{}, "", err
	}
	return playlist, videoID, nil
}

func (s *PlaylistService) ownedPlaylist(ctx context.Context, identity model.Identity, rawPlaylistID string) (model.Playlist, error) {
	playlistID, err := parseID(rawPlaylistID, "playlistId")
	if err != nil {
		return model.Playlist{}, err
	}

	playlist, err := s.playlists.FindByID(ctx, playlistID)
	if err != nil {
		return model.Playlist{}, err
	}
	if err := requireOwner(identity, playlist, "playlist"); err != nil {
		return model.Playlist{}, err
	}
	return playlist, nil
}
