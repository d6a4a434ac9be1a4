package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-media-backend/internal/model"
	"go-media-backend/internal/service"
)

const (
	videoFileField = "videoFile"
	thumbnailField = "thumbnail"
)

type videoService interface {
	Feed(ctx context.Context, identity model.Identity, query service.VideoQuery, opts model.PageOptions) (model.Page[model.VideoSummary], error)
	Publish(ctx context.Context, identity model.Identity, input model.PublishVideoInput) (model.Video, error)
	Get(ctx context.Context, identity model.Identity, rawVideoID string) (model.VideoDetail, error)
	TogglePublish(ctx context.Context, identity model.Identity, rawVideoID string) (model.Video, error)
	Delete(ctx context.Context, identity model.Identity, rawVideoID string) error
	WatchHistory(ctx context.Context, identity model.Identity, opts model.PageOptions) (model.Page[model.WatchHistoryItem], error)
	LikedVideos(ctx context.Context, identity model.Identity, opts model.PageOptions) (model.Page[model.VideoSummary], error)
}

type VideoHandler struct {
	service videoService
	tempDir string
}

func NewVideoHandler(service videoService, tempDir string) *VideoHandler {
	return &VideoHandler{service: service, tempDir: tempDir}
}

func (h *VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	opts, err := parsePageOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	query := r.URL.Query()
	page, err := h.service.Feed(r.Context(), identity, service.VideoQuery{
		OwnerID: query.Get("userId"),
		Query:   query.Get("q"),
	}, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, page, "videos")
}

// Publish spools the video and thumbnail parts to disk before handing them
// to the service, which uploads both or neither.
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	form, err := spoolMultipart(r, h.tempDir, videoFileField, thumbnailField)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Cleanup()

	video, err := h.service.Publish(r.Context(), identity, model.PublishVideoInput{
		Title:       form.Value("title"),
		Description: form.Value("description"),
		Video:       form.File(videoFileField),
		Thumbnail:   form.File(thumbnailField),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, video, "video published")
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	video, err := h.service.Get(r.Context(), identity, chi.URLParam(r, "videoID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, video, "video")
}

func (h *VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	video, err := h.service.TogglePublish(r.Context(), identity, chi.URLParam(r, "videoID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, video, "publish status updated")
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity, chi.URLParam(r, "videoID")); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{}, "video deleted")
}

func (h *VideoHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	opts, err := parsePageOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.service.WatchHistory(r.Context(), identity, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, page, "watch history")
}

func (h *VideoHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	opts, err := parsePageOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.service.LikedVideos(r.Context(), identity, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, page, "liked videos")
}
