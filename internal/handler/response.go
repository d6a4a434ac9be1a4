package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-media-backend/internal/logger"
	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeEnvelope(w, status, data, message, nil)
}

func writePage[T any](w http.ResponseWriter, page model.Page[T], message string) {
	writeEnvelope(w, http.StatusOK, page.Items, message, page.Meta())
}

func writeEnvelope(w http.ResponseWriter, status int, data any, message string, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Status:  status,
		Success: status < http.StatusBadRequest,
		Data:    data,
		Message: message,
		Meta:    meta,
	})
}

// sentinelErrors classifies store and domain sentinels that reach a handler
// without an APIError around them.
var sentinelErrors = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{model.ErrUserNotFound, http.StatusNotFound, apierror.CodeNotFound, "user not found"},
	{model.ErrVideoNotFound, http.StatusNotFound, apierror.CodeNotFound, "video not found"},
	{model.ErrCommentNotFound, http.StatusNotFound, apierror.CodeNotFound, "comment not found"},
	{model.ErrTweetNotFound, http.StatusNotFound, apierror.CodeNotFound, "tweet not found"},
	{model.ErrPlaylistNotFound, http.StatusNotFound, apierror.CodeNotFound, "playlist not found"},
	{model.ErrNotFound, http.StatusNotFound, apierror.CodeNotFound, "resource not found"},
	{model.ErrUserAlreadyExists, http.StatusConflict, apierror.CodeConflict, "user already exists"},
	{model.ErrAlreadyInList, http.StatusConflict, apierror.CodeConflict, "video already in playlist"},
	{model.ErrConflict, http.StatusConflict, apierror.CodeConflict, "resource already exists"},
	{model.ErrInvalidCredentials, http.StatusUnauthorized, apierror.CodeUnauthorized, "invalid credentials"},
	{model.ErrTokenExpired, http.StatusUnauthorized, apierror.CodeUnauthorized, "invalid or expired token"},
	{model.ErrTokenInvalid, http.StatusUnauthorized, apierror.CodeUnauthorized, "invalid or expired token"},
	{model.ErrTokenReused, http.StatusUnauthorized, apierror.CodeUnauthorized, "invalid or expired token"},
	{model.ErrUnauthorized, http.StatusUnauthorized, apierror.CodeUnauthorized, "authentication required"},
	{model.ErrForbidden, http.StatusForbidden, apierror.CodeForbidden, "access denied"},
	{model.ErrInvalidInput, http.StatusBadRequest, apierror.CodeBadRequest, "invalid input"},
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message, entry := classify(err)

	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Status:  status,
		Success: false,
		Message: message,
		Errors:  []model.ErrorEntry{entry},
	})
}

func classify(err error) (int, string, model.ErrorEntry) {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, apiErr.Message, model.ErrorEntry{Code: apiErr.Code, Field: apiErr.Field, Details: apiErr.Details}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, "request body exceeds MAX_UPLOAD_SIZE",
			model.ErrorEntry{Code: "PAYLOAD_TOO_LARGE", Field: "MAX_UPLOAD_SIZE"}
	}

	for _, s := range sentinelErrors {
		if errors.Is(err, s.err) {
			return s.status, s.message, model.ErrorEntry{Code: s.code}
		}
	}

	return http.StatusInternalServerError, "unexpected server error", model.ErrorEntry{Code: apierror.CodeInternal}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return apierror.InvalidArgument("invalid JSON body", "")
	}
	return nil
}
