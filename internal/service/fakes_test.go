package service

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-media-backend/internal/model"
	"go-media-backend/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

func pageOf[T any](items []T, opts model.PageOptions) model.Page[T] {
	opts = opts.Normalize()
	total := int64(len(items))
	start := min(opts.Offset(), len(items))
	end := min(start+opts.Limit, len(items))
	return model.NewPage(items[start:end], total, opts)
}

// fakeUsers is an in-memory credential store.
type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]model.User{}}
}

func (f *fakeUsers) add(username string) model.User {
	u, err := f.Create(context.Background(), model.User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		PasswordHash: "unused",
	})
	if err != nil {
		panic(err)
	}
	return u
}

func (f *fakeUsers) fingerprint(id string) *string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].RefreshTokenHash
}

func (f *fakeUsers) Create(_ context.Context, u model.User) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.byID {
		if existing.Username == strings.ToLower(u.Username) || existing.Email == strings.ToLower(u.Email) {
			return model.User{}, model.ErrUserAlreadyExists
		}
	}

	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.Username = strings.ToLower(u.Username)
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt, u.UpdatedAt = now, now
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByLogin(_ context.Context, username string, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (f *fakeUsers) FindIdentity(ctx context.Context, id string) (model.Identity, error) {
	u, err := f.FindByID(ctx, id)
	if err != nil {
		return model.Identity{}, err
	}
	return u.Identity(), nil
}

func (f *fakeUsers) FindIDByUsername(_ context.Context, username string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			return u.ID, nil
		}
	}
	return "", model.ErrUserNotFound
}

func (f *fakeUsers) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.RefreshTokenHash = nil
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdateAccount(_ context.Context, id string, fullName string, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for otherID, other := range f.byID {
		if otherID != id && other.Email == email {
			return model.User{}, model.ErrUserAlreadyExists
		}
	}
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	u.FullName, u.Email = fullName, email
	f.byID[id] = u
	return u, nil
}

func (f *fakeUsers) ReplaceMedia(_ context.Context, id string, field repository.MediaField, url string) (model.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return model.User{}, "", model.ErrUserNotFound
	}

	updated := u
	previous := u.AvatarURL
	if field == repository.MediaCover {
		previous = u.CoverImageURL
		updated.CoverImageURL = url
	} else {
		updated.AvatarURL = url
	}

	f.byID[id] = updated
	return updated, previous, nil
}

func (f *fakeUsers) ChannelProfile(ctx context.Context, username string, _ string) (model.ChannelProfile, error) {
	id, err := f.FindIDByUsername(ctx, username)
	if err != nil {
		return model.ChannelProfile{}, err
	}
	u, _ := f.FindByID(ctx, id)
	return model.ChannelProfile{ID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName}, nil
}

func (f *fakeUsers) SetRefreshFingerprint(_ context.Context, id string, fingerprint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.RefreshTokenHash = &fingerprint
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) SwapRefreshFingerprint(_ context.Context, id string, previous string, next string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || u.RefreshTokenHash == nil || *u.RefreshTokenHash != previous {
		return false, nil
	}
	u.RefreshTokenHash = &next
	f.byID[id] = u
	return true, nil
}

func (f *fakeUsers) ClearRefreshFingerprint(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		u.RefreshTokenHash = nil
		f.byID[id] = u
	}
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (f *fakeAudit) Log(_ context.Context, entry model.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) Query(_ context.Context, query model.AuditQuery) (model.Page[model.AuditEntry], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []model.AuditEntry
	for _, e := range f.entries {
		if e.Actor.UserID == query.ActorID {
			items = append(items, e)
		}
	}
	return pageOf(items, query.Page), nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action+":"+e.Status)
	}
	return out
}

type fakeSubscriptions struct {
	mu    sync.Mutex
	edges map[[2]string]time.Time
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{edges: map[[2]string]time.Time{}}
}

func (f *fakeSubscriptions) Toggle(_ context.Context, subscriberID string, channelID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]string{subscriberID, channelID}
	if _, ok := f.edges[key]; ok {
		delete(f.edges, key)
		return false, nil
	}
	f.edges[key] = time.Now()
	return true, nil
}

func (f *fakeSubscriptions) CountSubscribers(_ context.Context, channelID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key := range f.edges {
		if key[1] == channelID {
			n++
		}
	}
	return n, nil
}

func (f *fakeSubscriptions) CountSubscribedTo(_ context.Context, subscriberID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key := range f.edges {
		if key[0] == subscriberID {
			n++
		}
	}
	return n, nil
}

func (f *fakeSubscriptions) ListSubscribedChannels(_ context.Context, subscriberID string, _ string, opts model.PageOptions) (model.Page[model.ChannelSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []model.ChannelSummary
	for key, at := range f.edges {
		if key[0] == subscriberID {
			items = append(items, model.ChannelSummary{ID: key[1], SubscribedAt: at})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SubscribedAt.After(items[j].SubscribedAt) })
	return pageOf(items, opts), nil
}

func (f *fakeSubscriptions) ListSubscribers(_ context.Context, channelID string, _ string, opts model.PageOptions) (model.Page[model.ChannelSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []model.ChannelSummary
	for key, at := range f.edges {
		if key[1] == channelID {
			items = append(items, model.ChannelSummary{ID: key[0], SubscribedAt: at})
		}
	}
	return pageOf(items, opts), nil
}

// fakeVideos keeps videos and watch history in memory.
type fakeVideos struct {
	mu        sync.Mutex
	byID      map[string]model.Video
	watched   map[[2]string]bool
	createErr error
}

func newFakeVideos() *fakeVideos {
	return &fakeVideos{byID: map[string]model.Video{}, watched: map[[2]string]bool{}}
}

func (f *fakeVideos) add(ownerID string, title string, published bool) model.Video {
	v, _ := f.Create(context.Background(), model.Video{OwnerID: ownerID, Title: title, IsPublished: published})
	return v
}

func (f *fakeVideos) Create(_ context.Context, v model.Video) (model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return model.Video{}, f.createErr
	}
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now().UTC()
	f.byID[v.ID] = v
	return v, nil
}

func (f *fakeVideos) FindByID(_ context.Context, id string) (model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return model.Video{}, model.ErrVideoNotFound
	}
	return v, nil
}

func (f *fakeVideos) Detail(_ context.Context, id string, viewerID string) (model.VideoDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok || (!v.IsPublished && v.OwnerID != viewerID) {
		return model.VideoDetail{}, model.ErrVideoNotFound
	}
	return model.VideoDetail{VideoSummary: summaryOf(v)}, nil
}

func (f *fakeVideos) RecordWatch(_ context.Context, userID string, videoID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]string{userID, videoID}
	if f.watched[key] {
		return false, nil
	}
	f.watched[key] = true
	v := f.byID[videoID]
	v.Views++
	f.byID[videoID] = v
	return true, nil
}

func (f *fakeVideos) TogglePublished(_ context.Context, id string, ownerID string) (model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok || v.OwnerID != ownerID {
		return model.Video{}, model.ErrVideoNotFound
	}
	v.IsPublished = !v.IsPublished
	f.byID[id] = v
	return v, nil
}

func (f *fakeVideos) Delete(_ context.Context, id string, ownerID string) (model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok || v.OwnerID != ownerID {
		return model.Video{}, model.ErrVideoNotFound
	}
	delete(f.byID, id)
	return v, nil
}

func (f *fakeVideos) List(_ context.Context, filter repository.VideoFilter, opts model.PageOptions) (model.Page[model.VideoSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []model.VideoSummary
	for _, v := range f.byID {
		if !v.IsPublished && v.OwnerID != filter.ViewerID {
			continue
		}
		if filter.OwnerID != "" && v.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(filter.Query)) {
			continue
		}
		items = append(items, summaryOf(v))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return pageOf(items, opts), nil
}

func (f *fakeVideos) WatchHistory(_ context.Context, _ string, opts model.PageOptions) (model.Page[model.WatchHistoryItem], error) {
	return pageOf([]model.WatchHistoryItem(nil), opts), nil
}

func (f *fakeVideos) LikedVideos(_ context.Context, _ string, opts model.PageOptions) (model.Page[model.VideoSummary], error) {
	return pageOf([]model.VideoSummary(nil), opts), nil
}

func summaryOf(v model.Video) model.VideoSummary {
	return model.VideoSummary{
		ID:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		VideoURL:        v.VideoURL,
		ThumbnailURL:    v.ThumbnailURL,
		DurationSeconds: v.DurationSeconds,
		Views:           v.Views,
		IsPublished:     v.IsPublished,
		CreatedAt:       v.CreatedAt,
		Owner:           model.OwnerSummary{ID: v.OwnerID},
	}
}

type fakeComments struct {
	mu   sync.Mutex
	byID map[string]model.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{byID: map[string]model.Comment{}}
}

func (f *fakeComments) Create(_ context.Context, c model.Comment) (model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.NewString()
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeComments) FindByID(_ context.Context, id string) (model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return model.Comment{}, model.ErrCommentNotFound
	}
	return c, nil
}

func (f *fakeComments) Delete(_ context.Context, id string, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok || c.OwnerID != ownerID {
		return model.ErrCommentNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeComments) ListForVideo(_ context.Context, videoID string, _ string, opts model.PageOptions) (model.Page[model.CommentSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []model.CommentSummary
	for _, c := range f.byID {
		if c.VideoID == videoID {
			items = append(items, model.CommentSummary{ID: c.ID, VideoID: c.VideoID, Content: c.Content})
		}
	}
	return pageOf(items, opts), nil
}

type fakeTweets struct {
	byID map[string]model.Tweet
}

func (f *fakeTweets) FindByID(_ context.Context, id string) (model.Tweet, error) {
	t, ok := f.byID[id]
	if !ok {
		return model.Tweet{}, model.ErrTweetNotFound
	}
	return t, nil
}

func (f *fakeTweets) ListForUser(_ context.Context, ownerID string, _ string, opts model.PageOptions) (model.Page[model.TweetSummary], error) {
	var items []model.TweetSummary
	for _, t := range f.byID {
		if t.OwnerID == ownerID {
			items = append(items, model.TweetSummary{ID: t.ID, Content: t.Content})
		}
	}
	return pageOf(items, opts), nil
}

type fakeLikes struct {
	mu    sync.Mutex
	edges map[string]bool
}

func newFakeLikes() *fakeLikes {
	return &fakeLikes{edges: map[string]bool{}}
}

func (f *fakeLikes) Toggle(_ context.Context, actorID string, target model.LikeTarget) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := actorID + "|" + target.String()
	if f.edges[key] {
		delete(f.edges, key)
		return false, nil
	}
	f.edges[key] = true
	return true, nil
}

type fakePlaylists struct {
	mu      sync.Mutex
	byID    map[string]model.Playlist
	members map[string][]string
}

func newFakePlaylists() *fakePlaylists {
	return &fakePlaylists{byID: map[string]model.Playlist{}, members: map[string][]string{}}
}

func (f *fakePlaylists) Create(_ context.Context, p model.Playlist) (model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.NewString()
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakePlaylists) FindByID(_ context.Context, id string) (model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return model.Playlist{}, model.ErrPlaylistNotFound
	}
	return p, nil
}

func (f *fakePlaylists) Summary(ctx context.Context, id string, _ string) (model.PlaylistSummary, model.OwnerSummary, error) {
	p, err := f.FindByID(ctx, id)
	if err != nil {
		return model.PlaylistSummary{}, model.OwnerSummary{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.PlaylistSummary{Playlist: p, TotalVideos: int64(len(f.members[id]))}, model.OwnerSummary{ID: p.OwnerID}, nil
}

func (f *fakePlaylists) ListForOwner(_ context.Context, ownerID string, _ string, opts model.PageOptions) (model.Page[model.PlaylistSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []model.PlaylistSummary
	for _, p := range f.byID {
		if p.OwnerID == ownerID {
			items = append(items, model.PlaylistSummary{Playlist: p, TotalVideos: int64(len(f.members[p.ID]))})
		}
	}
	return pageOf(items, opts), nil
}

func (f *fakePlaylists) Videos(_ context.Context, playlistID string, _ string, opts model.PageOptions) (model.Page[model.VideoSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []model.VideoSummary
	for _, id := range f.members[playlistID] {
		items = append(items, model.VideoSummary{ID: id})
	}
	return pageOf(items, opts), nil
}

func (f *fakePlaylists) AddVideo(_ context.Context, playlistID string, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.members[playlistID] {
		if id == videoID {
			return model.ErrAlreadyInList
		}
	}
	f.members[playlistID] = append(f.members[playlistID], videoID)
	return nil
}

func (f *fakePlaylists) RemoveVideo(_ context.Context, playlistID string, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	members := f.members[playlistID]
	for i, id := range members {
		if id == videoID {
			f.members[playlistID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return model.ErrVideoNotFound
}

func (f *fakePlaylists) Delete(_ context.Context, id string, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok || p.OwnerID != ownerID {
		return model.ErrPlaylistNotFound
	}
	delete(f.byID, id)
	delete(f.members, id)
	return nil
}

// fakeNormalizer copies the input to a new temp file and reports JPEG.
type fakeNormalizer struct {
	dir string
	err error
}

func (f *fakeNormalizer) Normalize(_ context.Context, file model.LocalFile) (model.LocalFile, error) {
	if f.err != nil {
		return model.LocalFile{}, f.err
	}
	out, err := createTempCopy(f.dir, file.Path)
	if err != nil {
		return model.LocalFile{}, err
	}
	return model.LocalFile{Path: out, Name: file.Name, ContentType: "image/jpeg"}, nil
}

type fakeProber struct {
	seconds float64
	err     error
}

func (f fakeProber) Duration(context.Context, string) (float64, error) {
	return f.seconds, f.err
}

func createTempCopy(dir string, src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.CreateTemp(dir, "normalized-*.jpg")
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", err
	}
	return out.Name(), nil
}

// writeUpload spools content to a file the way the upload handler does.
func writeUpload(dir string, name string, contentType string, content string) model.LocalFile {
	path := dir + "/" + name
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		panic(err)
	}
	return model.LocalFile{Path: path, Name: name, ContentType: contentType, Size: int64(len(content))}
}

var (
	_ UserStore         = (*fakeUsers)(nil)
	_ FingerprintStore  = (*fakeUsers)(nil)
	_ AuditStore        = (*fakeAudit)(nil)
	_ SubscriptionStore = (*fakeSubscriptions)(nil)
	_ VideoStore        = (*fakeVideos)(nil)
	_ CommentStore      = (*fakeComments)(nil)
	_ TweetStore        = (*fakeTweets)(nil)
	_ LikeStore         = (*fakeLikes)(nil)
	_ PlaylistStore     = (*fakePlaylists)(nil)
	_ ImageNormalizer   = (*fakeNormalizer)(nil)
	_ DurationProber    = fakeProber{}
)
