package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/shared"
)

// APIOpts configures [NewAPI].
type APIOpts struct {
	Secret   string
	TokenTTL time.Duration
	Store    *Store
	Logger   *log.Logger
}

// NewAPI builds the mock REST API rooted at /api.
func NewAPI(opts APIOpts) (*BasicRouter, error) {
	if opts.Store == nil {
		opts.Store = NewStore()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	tokens, err := NewTokenIssuer(opts.Secret, opts.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	router := NewBasicRouter()
	router.Use(RequestID(), Logging(opts.Logger), Recoverer(opts.Logger))

	auth := &AuthHandler{store: opts.Store, tokens: tokens, logger: opts.Logger}
	router.Handle(http.MethodPost, "/api/auth/login", http.HandlerFunc(auth.Login))
	router.Handle(http.MethodPost, "/api/auth/register", http.HandlerFunc(auth.Register))

	protected := RequireAuth(tokens)
	router.Handler(&guarded{Handler: &GenreHandler{store: opts.Store}, mw: protected})

	for _, kind := range []models.Kind{models.KindMovie, models.KindSeries} {
		h := &ItemHandler{kind: kind, store: opts.Store}
		base := "/api" + kind.Path()
		router.Handle(http.MethodGet, base, protected(http.HandlerFunc(h.List)))
		router.Handle(http.MethodPost, base, protected(http.HandlerFunc(h.Create)))
		router.Handle(http.MethodGet, base+"/{id}", protected(http.HandlerFunc(h.Get)))
		router.Handle(http.MethodPut, base+"/{id}", protected(http.HandlerFunc(h.Update)))
		router.Handle(http.MethodDelete, base+"/{id}", protected(http.HandlerFunc(h.Delete)))
	}

	return router, nil
}

// guarded applies a middleware to a [Handler] while keeping its routes.
type guarded struct {
	Handler
	mw Middleware
}

func (g *guarded) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mw(g.Handler).ServeHTTP(w, r)
}

// Serve runs handler on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("mock API listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error shutting down server", "error", err)
		return err
	}
	logger.Info("mock API stopped")
	return nil
}
