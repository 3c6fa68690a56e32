package server

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/watchlog/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists     = errors.New("username already exists")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrNotFound       = errors.New("not found")
	ErrUnknownGenre   = errors.New("unknown genre")
)

// SeedGenres is the reference data every new store starts with.
var SeedGenres = []string{
	"Action", "Adventure", "Animation", "Comedy", "Documentary", "Drama",
	"Fantasy", "Horror", "Musical", "Mystery", "Sci-Fi", "Suspense",
}

type record struct {
	owner string
	item  models.Item
}

// Store holds users, genres and items in memory.
type Store struct {
	mu     sync.RWMutex
	users  map[string][]byte
	genres []models.Genre
	items  map[models.Kind][]record
	nextID map[models.Kind]int
}

// NewStore creates a store seeded with [SeedGenres].
func NewStore() *Store {
	s := &Store{
		users:  map[string][]byte{},
		items:  map[models.Kind][]record{},
		nextID: map[models.Kind]int{models.KindMovie: 1, models.KindSeries: 1},
	}
	for i, name := range SeedGenres {
		s.genres = append(s.genres, models.Genre{ID: i + 1, Name: name})
	}
	return s
}

// CreateUser registers username with a bcrypt hash of password.
func (s *Store) CreateUser(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}
	s.users[username] = hash
	return nil
}

// CheckUser verifies a username and password pair.
func (s *Store) CheckUser(username, password string) error {
	s.mu.RLock()
	hash, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return ErrBadCredentials
	}
	return nil
}

func (s *Store) Genres() []models.Genre {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.genres)
}

// List returns owner's items of kind, filtered by genre name and title substring and sorted by title.
func (s *Store) List(owner string, kind models.Kind, q models.ListQuery) []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Item{}
	for _, rec := range s.items[kind] {
		if rec.owner != owner {
			continue
		}
		if q.Genre != "" && !slices.ContainsFunc(rec.item.Genres, func(g models.Genre) bool { return strings.EqualFold(g.Name, q.Genre) }) {
			continue
		}
		if q.Title != "" && !strings.Contains(strings.ToLower(rec.item.Title), strings.ToLower(q.Title)) {
			continue
		}
		out = append(out, rec.item)
	}

	slices.SortStableFunc(out, func(a, b models.Item) int {
		c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		if q.Sort == models.SortDesc {
			return -c
		}
		return c
	})
	return out
}

// Get returns an item by id regardless of owner.
func (s *Store) Get(kind models.Kind, id int) (models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(kind, id); i >= 0 {
		return s.items[kind][i].item, nil
	}
	return models.Item{}, ErrNotFound
}

// Create adds an item owned by owner. An empty status means TO_WATCH.
func (s *Store) Create(owner string, kind models.Kind, p models.Payload) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.build(kind, p)
	if err != nil {
		return models.Item{}, err
	}
	if it.Status == "" {
		it.Status = models.StatusToWatch
	}
	it.ID = s.nextID[kind]
	s.nextID[kind]++
	s.items[kind] = append(s.items[kind], record{owner: owner, item: it})
	return it, nil
}

// Update replaces an item owned by owner. The status is kept when p carries none.
//
// Items owned by someone else are reported as [ErrNotFound].
func (s *Store) Update(owner string, kind models.Kind, id int, p models.Payload) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(kind, id)
	if i < 0 || s.items[kind][i].owner != owner {
		return models.Item{}, ErrNotFound
	}

	it, err := s.build(kind, p)
	if err != nil {
		return models.Item{}, err
	}
	if it.Status == "" {
		it.Status = s.items[kind][i].item.Status
	}
	it.ID = id
	s.items[kind][i].item = it
	return it, nil
}

// Delete removes an item owned by owner.
func (s *Store) Delete(owner string, kind models.Kind, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(kind, id)
	if i < 0 || s.items[kind][i].owner != owner {
		return ErrNotFound
	}
	s.items[kind] = slices.Delete(s.items[kind], i, i+1)
	return nil
}

// index must be called with mu held.
func (s *Store) index(kind models.Kind, id int) int {
	return slices.IndexFunc(s.items[kind], func(r record) bool { return r.item.ID == id })
}

// build resolves genre references and drops episodes for movies. mu must be held.
func (s *Store) build(kind models.Kind, p models.Payload) (models.Item, error) {
	if p.Status != "" && !p.Status.Valid() {
		return models.Item{}, fmt.Errorf("invalid status %q", p.Status)
	}

	it := models.Item{
		Title:    p.Title,
		Summary:  p.Summary,
		Duration: p.Duration,
		ImageURL: p.ImageURL,
		Status:   p.Status,
		Genres:   []models.Genre{},
	}
	for _, ref := range p.Genres {
		i := slices.IndexFunc(s.genres, func(g models.Genre) bool { return g.ID == ref.ID })
		if i < 0 {
			return models.Item{}, fmt.Errorf("%w: %d", ErrUnknownGenre, ref.ID)
		}
		it.Genres = append(it.Genres, s.genres[i])
	}
	if kind == models.KindSeries && p.Episodes != nil {
		ep := *p.Episodes
		it.Episodes = &ep
	}
	return it, nil
}
