package models

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Validation rule messages, in evaluation order.
const (
	RuleTitleRequired    = "Title is required"
	RuleSummaryRequired  = "Summary is required"
	RuleDurationNumber   = "Duration is required and must be a number"
	RuleDurationPositive = "Duration must be positive"
	RuleDurationInteger  = "Duration must be an integer"
	RuleImageRequired    = "Image is required"
	RuleGenreRequired    = "Select at least one genre"
	RuleEpisodesRequired = "Episodes are required for Series"
	RuleEpisodesNumber   = "Episodes must be a whole number"
)

// Draft is the transient buffer behind a create/edit form.
//
// Numeric fields are kept as typed text so that validation sees exactly what was entered.
type Draft struct {
	Title    string
	Summary  string
	Duration string
	Episodes string
	ImageURL string
	GenreIDs []int
}

// DraftFromItem fills a draft from an existing item for editing.
func DraftFromItem(it Item) Draft {
	d := Draft{
		Title:    it.Title,
		Summary:  it.Summary,
		ImageURL: it.ImageURL,
		GenreIDs: it.GenreIDs(),
	}
	if it.Duration != 0 {
		d.Duration = strconv.Itoa(it.Duration)
	}
	if it.Episodes != nil {
		d.Episodes = strconv.Itoa(*it.Episodes)
	}
	return d
}

// HasGenre reports whether id is selected.
func (d Draft) HasGenre(id int) bool {
	return slices.Contains(d.GenreIDs, id)
}

// ToggleGenre selects id if absent and deselects it otherwise.
func (d *Draft) ToggleGenre(id int) {
	if i := slices.Index(d.GenreIDs, id); i >= 0 {
		d.GenreIDs = slices.Delete(d.GenreIDs, i, i+1)
		return
	}
	d.GenreIDs = append(d.GenreIDs, id)
}

// Reset clears every field.
func (d *Draft) Reset() { *d = Draft{} }

// Payload converts a validated draft into a request body.
//
// Callers must run [Validate] first; unparsable numbers become zero.
func (d Draft) Payload(kind Kind, status Status) Payload {
	dur, _ := parseDuration(d.Duration)
	p := Payload{
		Title:    d.Title,
		Summary:  d.Summary,
		Duration: int(dur),
		ImageURL: d.ImageURL,
		Genres:   refs(d.GenreIDs),
		Status:   status,
	}
	if kind == KindSeries {
		ep, _ := strconv.Atoi(strings.TrimSpace(d.Episodes))
		p.Episodes = &ep
	}
	return p
}

// parseDuration accepts any finite number ("155", "155.0", "1e2"). Both
// [Validate] and [Draft.Payload] read the field through it.
func parseDuration(v string) (float64, bool) {
	dur, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(dur) || math.IsInf(dur, 0) {
		return 0, false
	}
	return dur, true
}

// ValidationResult is either valid or a list of violated rule messages.
type ValidationResult struct {
	Violations []string
}

// Valid reports whether no rule was violated.
func (r ValidationResult) Valid() bool { return len(r.Violations) == 0 }

// FirstViolation is the rule surfaced to the user, or "" when valid.
func (r ValidationResult) FirstViolation() string {
	if r.Valid() {
		return ""
	}
	return r.Violations[0]
}

// Validate checks a draft for the given kind without side effects.
//
// The episode count is only required for series.
func Validate(kind Kind, d Draft) ValidationResult {
	var v []string

	if strings.TrimSpace(d.Title) == "" {
		v = append(v, RuleTitleRequired)
	}
	if strings.TrimSpace(d.Summary) == "" {
		v = append(v, RuleSummaryRequired)
	}

	dur, ok := parseDuration(d.Duration)
	switch {
	case !ok:
		v = append(v, RuleDurationNumber)
	case dur <= 0:
		v = append(v, RuleDurationPositive)
	case dur != math.Trunc(dur):
		v = append(v, RuleDurationInteger)
	}

	if strings.TrimSpace(d.ImageURL) == "" {
		v = append(v, RuleImageRequired)
	}
	if len(d.GenreIDs) == 0 {
		v = append(v, RuleGenreRequired)
	}

	if kind == KindSeries {
		ep := strings.TrimSpace(d.Episodes)
		if ep == "" {
			v = append(v, RuleEpisodesRequired)
		} else if n, err := strconv.Atoi(ep); err != nil || n < 0 {
			v = append(v, RuleEpisodesNumber)
		}
	}

	return ValidationResult{Violations: v}
}
