// package models defines the data model for the media tracking client
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the bucket a watchable item belongs to.
type Status string

const (
	StatusToWatch    Status = "TO_WATCH"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Statuses lists every status in transition order.
var Statuses = []Status{StatusToWatch, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the three known buckets.
func (s Status) Valid() bool {
	switch s {
	case StatusToWatch, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Bucket is the column an item with status s is shown in. Unknown values
// fall into TO_WATCH.
func (s Status) Bucket() Status {
	if !s.Valid() {
		return StatusToWatch
	}
	return s
}

// Next returns the following bucket. ok is false for COMPLETED and unknown values.
func (s Status) Next() (next Status, ok bool) {
	switch s {
	case StatusToWatch:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusCompleted, true
	default:
		return s, false
	}
}

// Prev returns the preceding bucket. ok is false for TO_WATCH and unknown values.
func (s Status) Prev() (prev Status, ok bool) {
	switch s {
	case StatusCompleted:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusToWatch, true
	default:
		return s, false
	}
}

// Label is the bucket heading shown to users.
func (s Status) Label() string {
	switch s {
	case StatusToWatch:
		return "To watch"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// ParseStatus accepts the wire value or a loose form such as "in-progress".
func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(v), "-", "_")))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", v)
	}
	return s, nil
}

// Kind distinguishes movies from series. Both share [Item] and the same lifecycle.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Path is the collection path under the API base.
func (k Kind) Path() string {
	if k == KindSeries {
		return "/series"
	}
	return "/movies"
}

// Label is the singular display name.
func (k Kind) Label() string {
	if k == KindSeries {
		return "Series"
	}
	return "Movie"
}

// Plural is used in headings and empty-state messages.
func (k Kind) Plural() string {
	if k == KindSeries {
		return "series"
	}
	return "movies"
}

// ParseKind maps CLI and URL spellings to a [Kind].
func ParseKind(v string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "movie", "movies":
		return KindMovie, nil
	case "series", "show", "shows":
		return KindSeries, nil
	default:
		return "", fmt.Errorf("unknown kind %q", v)
	}
}

// Genre is read-only reference data fetched from the server.
type Genre struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Item is a movie or a series as returned by the API.
//
// Episodes is only set for series.
type Item struct {
	ID       int     `json:"id" yaml:"id"`
	Title    string  `json:"title" yaml:"title"`
	Summary  string  `json:"summary" yaml:"summary"`
	Duration int     `json:"duration" yaml:"duration"`
	ImageURL string  `json:"imageUrl" yaml:"image_url"`
	Status   Status  `json:"status" yaml:"status"`
	Genres   []Genre `json:"genres" yaml:"genres"`
	Episodes *int    `json:"episodes,omitempty" yaml:"episodes,omitempty"`
}

// HasEpisodes reports whether the item carries an episode count.
func (i Item) HasEpisodes() bool { return i.Episodes != nil }

// GenreNames joins genre names with commas, or returns "None".
func (i Item) GenreNames() string {
	if len(i.Genres) == 0 {
		return "None"
	}
	names := make([]string, len(i.Genres))
	for n, g := range i.Genres {
		names[n] = g.Name
	}
	return strings.Join(names, ", ")
}

// GenreIDs returns the ids of the item's genres in order.
func (i Item) GenreIDs() []int {
	ids := make([]int, len(i.Genres))
	for n, g := range i.Genres {
		ids[n] = g.ID
	}
	return ids
}

// WithStatus builds the full-item payload with only the status replaced.
func (i Item) WithStatus(s Status) Payload {
	p := Payload{
		Title:    i.Title,
		Summary:  i.Summary,
		Duration: i.Duration,
		ImageURL: i.ImageURL,
		Genres:   refs(i.GenreIDs()),
		Status:   s,
	}
	if i.Episodes != nil {
		ep := *i.Episodes
		p.Episodes = &ep
	}
	return p
}

// GenreRef is the id-only genre reference used in request bodies.
type GenreRef struct {
	ID int `json:"id"`
}

// Payload is the create/update request body.
type Payload struct {
	Title    string     `json:"title"`
	Summary  string     `json:"summary"`
	Duration int        `json:"duration"`
	ImageURL string     `json:"imageUrl"`
	Genres   []GenreRef `json:"genres"`
	Status   Status     `json:"status"`
	Episodes *int       `json:"episodes,omitempty"`
}

func refs(ids []int) []GenreRef {
	out := make([]GenreRef, len(ids))
	for n, id := range ids {
		out[n] = GenreRef{ID: id}
	}
	return out
}

// Buckets holds items grouped by status, in server order.
type Buckets struct {
	ToWatch    []Item `yaml:"TO_WATCH"`
	InProgress []Item `yaml:"IN_PROGRESS"`
	Completed  []Item `yaml:"COMPLETED"`
}

// Get returns the bucket for a status.
func (b Buckets) Get(s Status) []Item {
	switch s {
	case StatusInProgress:
		return b.InProgress
	case StatusCompleted:
		return b.Completed
	default:
		return b.ToWatch
	}
}

// Len is the total number of items across buckets.
func (b Buckets) Len() int {
	return len(b.ToWatch) + len(b.InProgress) + len(b.Completed)
}

// PartitionByStatus splits items into the three buckets.
//
// Every item lands in exactly one bucket; an unrecognised status is treated as TO_WATCH.
func PartitionByStatus(items []Item) Buckets {
	var b Buckets
	for _, it := range items {
		switch it.Status.Bucket() {
		case StatusInProgress:
			b.InProgress = append(b.InProgress, it)
		case StatusCompleted:
			b.Completed = append(b.Completed, it)
		default:
			b.ToWatch = append(b.ToWatch, it)
		}
	}
	return b
}

// MarshalJSON emits the bucket map keyed by wire status.
func (b Buckets) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[Status][]Item{
		StatusToWatch:    nonNil(b.ToWatch),
		StatusInProgress: nonNil(b.InProgress),
		StatusCompleted:  nonNil(b.Completed),
	})
}

func nonNil(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}
