// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/shared"
)

// DefaultGenres is a small genre list for tests.
var DefaultGenres = []models.Genre{
	{ID: 1, Name: "Action"},
	{ID: 2, Name: "Comedy"},
	{ID: 3, Name: "Drama"},
	{ID: 4, Name: "Horror"},
	{ID: 5, Name: "Science Fiction"},
}

// FakeCatalog is an in-memory test double for [services.Catalog].
//
// Set Err to fail every call, or FailOn to fail a named operation ("list", "create", ...).
type FakeCatalog struct {
	mu      sync.Mutex
	items   map[models.Kind][]models.Item
	nextID  int
	calls   []string
	queries []models.ListQuery

	GenreList []models.Genre
	Err       error
	FailOn    map[string]error
}

// NewFakeCatalog creates a catalog seeded with [DefaultGenres].
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		items:     map[models.Kind][]models.Item{},
		nextID:    1,
		GenreList: slices.Clone(DefaultGenres),
		FailOn:    map[string]error{},
	}
}

// Seed adds items as-is. Items without an id are assigned one.
func (f *FakeCatalog) Seed(kind models.Kind, items ...models.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range items {
		if it.ID == 0 {
			it.ID = f.nextID
		}
		f.nextID = max(f.nextID, it.ID+1)
		f.items[kind] = append(f.items[kind], it)
	}
}

// Items returns a copy of the stored items of kind.
func (f *FakeCatalog) Items(kind models.Kind) []models.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items[kind])
}

// Calls returns the operations invoked so far, in order.
func (f *FakeCatalog) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallCount returns how many times op was invoked.
func (f *FakeCatalog) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

// LastQuery returns the most recent list query.
func (f *FakeCatalog) LastQuery() models.ListQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return models.ListQuery{}
	}
	return f.queries[len(f.queries)-1]
}

func (f *FakeCatalog) record(op string) error {
	f.calls = append(f.calls, op)
	if f.Err != nil {
		return f.Err
	}
	return f.FailOn[op]
}

func (f *FakeCatalog) Genres(ctx context.Context) ([]models.Genre, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("genres"); err != nil {
		return nil, err
	}
	return slices.Clone(f.GenreList), nil
}

func (f *FakeCatalog) List(ctx context.Context, kind models.Kind, q models.ListQuery) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if err := f.record("list"); err != nil {
		return nil, err
	}

	var out []models.Item
	for _, it := range f.items[kind] {
		if q.Genre != "" && !slices.ContainsFunc(it.Genres, func(g models.Genre) bool { return g.Name == q.Genre }) {
			continue
		}
		if q.Title != "" && !strings.Contains(strings.ToLower(it.Title), strings.ToLower(q.Title)) {
			continue
		}
		out = append(out, it)
	}
	slices.SortStableFunc(out, func(a, b models.Item) int {
		c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		if q.Sort == models.SortDesc {
			return -c
		}
		return c
	})
	return out, nil
}

func (f *FakeCatalog) Get(ctx context.Context, kind models.Kind, id int) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("get"); err != nil {
		return nil, err
	}
	i := f.index(kind, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s %d", shared.ErrItemNotFound, kind, id)
	}
	it := f.items[kind][i]
	return &it, nil
}

func (f *FakeCatalog) Create(ctx context.Context, kind models.Kind, p models.Payload) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create"); err != nil {
		return nil, err
	}
	it := f.fromPayload(p)
	it.ID = f.nextID
	f.nextID++
	f.items[kind] = append(f.items[kind], it)
	return &it, nil
}

func (f *FakeCatalog) Update(ctx context.Context, kind models.Kind, id int, p models.Payload) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update"); err != nil {
		return nil, err
	}
	i := f.index(kind, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s %d", shared.ErrItemNotFound, kind, id)
	}
	it := f.fromPayload(p)
	it.ID = id
	f.items[kind][i] = it
	return &it, nil
}

func (f *FakeCatalog) Delete(ctx context.Context, kind models.Kind, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete"); err != nil {
		return err
	}
	i := f.index(kind, id)
	if i < 0 {
		return fmt.Errorf("%w: %s %d", shared.ErrItemNotFound, kind, id)
	}
	f.items[kind] = slices.Delete(f.items[kind], i, i+1)
	return nil
}

func (f *FakeCatalog) index(kind models.Kind, id int) int {
	return slices.IndexFunc(f.items[kind], func(it models.Item) bool { return it.ID == id })
}

func (f *FakeCatalog) fromPayload(p models.Payload) models.Item {
	it := models.Item{
		Title:    p.Title,
		Summary:  p.Summary,
		Duration: p.Duration,
		ImageURL: p.ImageURL,
		Status:   p.Status,
		Episodes: p.Episodes,
	}
	for _, ref := range p.Genres {
		name := ""
		if i := slices.IndexFunc(f.GenreList, func(g models.Genre) bool { return g.ID == ref.ID }); i >= 0 {
			name = f.GenreList[i].Name
		}
		it.Genres = append(it.Genres, models.Genre{ID: ref.ID, Name: name})
	}
	return it
}

// FakeUploader returns URL for every upload, or Err when set.
type FakeUploader struct {
	URL   string
	Err   error
	Files []string
}

func (u *FakeUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	u.Files = append(u.Files, filename)
	if u.Err != nil {
		return "", u.Err
	}
	return u.URL, nil
}

// RecordingRedirector counts forced navigations to login.
type RecordingRedirector struct {
	mu    sync.Mutex
	count int
}

func (r *RecordingRedirector) RedirectToLogin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

// Count returns the number of redirects seen.
func (r *RecordingRedirector) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }
