package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageOptionsNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   PageOptions
		want PageOptions
	}{
		{"zero value", PageOptions{}, PageOptions{Page: 1, Limit: DefaultPageLimit, SortField: SortByCreatedAt, SortDirection: SortDesc}},
		{"negative page", PageOptions{Page: -3, Limit: 5}, PageOptions{Page: 1, Limit: 5, SortField: SortByCreatedAt, SortDirection: SortDesc}},
		{"limit clamped", PageOptions{Page: 2, Limit: 1000}, PageOptions{Page: 2, Limit: MaxPageLimit, SortField: SortByCreatedAt, SortDirection: SortDesc}},
		{"unknown sort", PageOptions{Page: 1, Limit: 2, SortField: "owner", SortDirection: "sideways"}, PageOptions{Page: 1, Limit: 2, SortField: SortByCreatedAt, SortDirection: SortDesc}},
		{"explicit", PageOptions{Page: 3, Limit: 2, SortField: SortByViews, SortDirection: SortAsc}, PageOptions{Page: 3, Limit: 2, SortField: SortByViews, SortDirection: SortAsc}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Normalize())
		})
	}
}

func TestPageOptionsOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, PageOptions{Page: 1, Limit: 2}.Offset())
	assert.Equal(t, 4, PageOptions{Page: 3, Limit: 2}.Offset())
	assert.Equal(t, 18, PageOptions{Page: 10, Limit: 2}.Offset())
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	page := NewPage([]string{"a", "b"}, 5, PageOptions{Page: 1, Limit: 2})
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)

	empty := NewPage[string](nil, 5, PageOptions{Page: 10, Limit: 2})
	require.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
	assert.Equal(t, int64(5), empty.Total)
	assert.Equal(t, 10, empty.Page)

	none := NewPage[string](nil, 0, PageOptions{})
	assert.Equal(t, 0, none.TotalPages)
	assert.Equal(t, &Meta{Page: 1, Limit: DefaultPageLimit, Total: 0, TotalPages: 0}, none.Meta())
}

func TestParseSort(t *testing.T) {
	t.Parallel()

	field, ok := ParseSortField("Views")
	require.True(t, ok)
	assert.Equal(t, SortByViews, field)

	field, ok = ParseSortField("")
	require.True(t, ok)
	assert.Equal(t, SortByCreatedAt, field)

	_, ok = ParseSortField("password_hash")
	assert.False(t, ok)

	dir, ok := ParseSortDirection("ASC")
	require.True(t, ok)
	assert.Equal(t, SortAsc, dir)

	_, ok = ParseSortDirection("up")
	assert.False(t, ok)
}
