package session

import (
	"fmt"
	"sync"

	"github.com/desertthunder/watchlog/internal/shared"
	"golang.org/x/oauth2"
)

// Store persists the session token under a fixed key.
type Store interface {
	Get() (token string, ok bool, err error)
	Set(token string) error
	Delete() error
}

// MemoryStore is a non-persistent [Store].
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryStore) Get() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != "", nil
}

func (m *MemoryStore) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Delete() error {
	return m.Set("")
}

// Manager is the process-wide session.
//
// The token is loaded once by [NewManager]; afterwards reads come from memory and writes go through to the store.
type Manager struct {
	mu    sync.RWMutex
	store Store
	token string
}

// NewManager loads the persisted token, if any, from store.
func NewManager(store Store) (*Manager, error) {
	if store == nil {
		store = &MemoryStore{}
	}
	token, _, err := store.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &Manager{store: store, token: token}, nil
}

// NewMemoryManager returns a signed-out manager backed by a [MemoryStore].
// Unlike [NewManager] it cannot fail: there is nothing to load.
func NewMemoryManager() *Manager {
	return &Manager{store: &MemoryStore{}}
}

// Token returns the current token. ok is false when signed out.
func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// Authenticated reports whether a token is present.
func (m *Manager) Authenticated() bool {
	_, ok := m.Token()
	return ok
}

// SetToken stores a freshly issued token.
func (m *Manager) SetToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty session token", shared.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Set(token); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	m.token = token
	return nil
}

// ClearToken drops the token from memory and storage.
//
// The in-memory token is cleared even if the store fails.
func (m *Manager) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	if err := m.store.Delete(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// TokenSource exposes the session as an [oauth2.TokenSource] so the token can be attached by [oauth2.Transport].
//
// The source is live: it reflects later SetToken and ClearToken calls.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return tokenSource{m: m}
}

type tokenSource struct {
	m *Manager
}

func (s tokenSource) Token() (*oauth2.Token, error) {
	token, ok := s.m.Token()
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
