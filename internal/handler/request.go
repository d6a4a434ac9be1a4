package handler

import (
	"net/http"
	"strconv"
	"strings"

	"go-media-backend/internal/middleware"
	"go-media-backend/internal/model"
	"go-media-backend/pkg/apierror"
)

// parsePageOptions reads page, limit, sortBy and sortType. Non-positive page
// or limit values and unknown sort fields are rejected; a limit above the
// maximum is clamped.
func parsePageOptions(r *http.Request) (model.PageOptions, error) {
	query := r.URL.Query()

	page, err := parsePositiveInt(query.Get("page"), 1, "page")
	if err != nil {
		return model.PageOptions{}, err
	}
	limit, err := parsePositiveInt(query.Get("limit"), model.DefaultPageLimit, "limit")
	if err != nil {
		return model.PageOptions{}, err
	}

	field, ok := model.ParseSortField(query.Get("sortBy"))
	if !ok {
		return model.PageOptions{}, apierror.InvalidArgument("unsupported sort field", "sortBy")
	}
	direction, ok := model.ParseSortDirection(query.Get("sortType"))
	if !ok {
		return model.PageOptions{}, apierror.InvalidArgument("sortType must be asc or desc", "sortType")
	}

	return model.PageOptions{Page: page, Limit: limit, SortField: field, SortDirection: direction}.Normalize(), nil
}

func parseIntOrDefault(raw string, fallback int, field string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, apierror.InvalidArgument(field+" must be a number", field)
	}

	return value, nil
}

func parsePositiveInt(raw string, fallback int, field string) (int, error) {
	value, err := parseIntOrDefault(raw, fallback, field)
	if err != nil {
		return 0, err
	}
	if value < 1 {
		return 0, apierror.InvalidArgument(field+" must be at least 1", field)
	}
	return value, nil
}

// identityFrom returns the identity the session gate attached. Routes that
// call it are always mounted behind RequireAuth.
func identityFrom(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, apierror.Unauthorized("authentication required"))
		return model.Identity{}, false
	}
	return identity, true
}
