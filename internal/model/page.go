package model

import "strings"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByViews     SortField = "views"
	SortByTitle     SortField = "title"
	SortByDuration  SortField = "duration"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// PageOptions enumerates every recognized listing option. The zero value is
// page 1, DefaultPageLimit items, newest first.
type PageOptions struct {
	Page          int
	Limit         int
	SortField     SortField
	SortDirection SortDirection
}

func ParseSortField(value string) (SortField, bool) {
	switch SortField(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortByCreatedAt, "createdat":
		return SortByCreatedAt, true
	case SortByViews:
		return SortByViews, true
	case SortByTitle:
		return SortByTitle, true
	case SortByDuration:
		return SortByDuration, true
	}
	return "", false
}

func ParseSortDirection(value string) (SortDirection, bool) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortDesc:
		return SortDesc, true
	case SortAsc:
		return SortAsc, true
	}
	return "", false
}

// Normalize clamps page and limit into range and fills defaults.
func (o PageOptions) Normalize() PageOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = DefaultPageLimit
	}
	if o.Limit > MaxPageLimit {
		o.Limit = MaxPageLimit
	}
	field, ok := ParseSortField(string(o.SortField))
	if !ok {
		field = SortByCreatedAt
	}
	o.SortField = field
	if o.SortDirection != SortAsc {
		o.SortDirection = SortDesc
	}
	return o
}

func (o PageOptions) Offset() int {
	n := o.Normalize()
	return (n.Page - 1) * n.Limit
}

// Page is one window of an ordered result together with the total match count.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func NewPage[T any](items []T, total int64, opts PageOptions) Page[T] {
	opts = opts.Normalize()
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	}

	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages,
	}
}

func (p Page[T]) Meta() *Meta {
	return &Meta{Page: p.Page, Limit: p.Limit, Total: p.Total, TotalPages: p.TotalPages}
}
