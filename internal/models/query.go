package models

import (
	"fmt"
	"net/url"
	"strings"
)

// SortOrder orders list results by title.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSort accepts "asc"/"desc" in any case; empty means ascending.
func ParseSort(v string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "asc", "a-z":
		return SortAsc, nil
	case "desc", "z-a":
		return SortDesc, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", v)
	}
}

// Toggle flips between ascending and descending.
func (s SortOrder) Toggle() SortOrder {
	if s == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// Label is the human form shown in filters.
func (s SortOrder) Label() string {
	if s == SortDesc {
		return "Z - A"
	}
	return "A - Z"
}

// ListQuery holds the list filters sent to the server.
//
// Genre is a genre name; empty means all genres. Title is an optional substring search.
type ListQuery struct {
	Genre string
	Sort  SortOrder
	Title string
}

// Values encodes the query. sort is always present, genre and title only when set.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Genre != "" {
		v.Set("genre", q.Genre)
	}
	if q.Title != "" {
		v.Set("title", q.Title)
	}
	sort := q.Sort
	if sort == "" {
		sort = SortAsc
	}
	v.Set("sort", string(sort))
	return v
}
