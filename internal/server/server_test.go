package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/services"
	"github.com/desertthunder/watchlog/internal/session"
	"github.com/desertthunder/watchlog/internal/shared"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	router, err := NewAPI(APIOpts{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("NewAPI failed: %v", err)
	}
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

type client struct {
	session *session.Manager
	nav     *session.Navigator
	auth    *services.AuthService
	catalog *services.CatalogService
}

func newClient(t *testing.T, baseURL string) *client {
	t.Helper()
	m, err := session.NewManager(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nav := session.NewNavigator(m, session.RouteLogin)
	c := services.NewClient(services.ClientOpts{BaseURL: baseURL + "/api", Session: m, Navigator: nav})
	return &client{
		session: m,
		nav:     nav,
		auth:    services.NewAuthService(c),
		catalog: services.NewCatalogService(c),
	}
}

func TestBasicRouter(t *testing.T) {
	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("first"), mw("second"))
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("Wrong Method", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodPost, "/thing", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/thing", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("Request ID Is Assigned And Echoed", func(t *testing.T) {
		var seen string
		h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFrom(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
			t.Errorf("expected generated id to be echoed, got %q / %q", seen, rec.Header().Get(RequestIDHeader))
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if seen != "abc" {
			t.Errorf("expected caller id to be kept, got %q", seen)
		}
	})

	t.Run("Recoverer", func(t *testing.T) {
		h := Recoverer(shared.NewLogger(io.Discard))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestTokenIssuer(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		tokens, _ := NewTokenIssuer("s", time.Hour)
		raw, err := tokens.Issue("ann")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		user, err := tokens.Verify(raw)
		if err != nil || user != "ann" {
			t.Errorf("expected ann, got %q (%v)", user, err)
		}

		claims, err := session.ParseClaims(raw)
		if err != nil || claims.Subject != "ann" {
			t.Errorf("expected client-side claims to parse, got %+v (%v)", claims, err)
		}
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		a, _ := NewTokenIssuer("a", time.Hour)
		b, _ := NewTokenIssuer("b", time.Hour)
		raw, _ := a.Issue("ann")
		if _, err := b.Verify(raw); err == nil {
			t.Error("expected signature failure")
		}
	})

	t.Run("Expired", func(t *testing.T) {
		tokens, _ := NewTokenIssuer("s", time.Minute)
		tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
		raw, _ := tokens.Issue("ann")
		tokens.now = time.Now
		if _, err := tokens.Verify(raw); err == nil {
			t.Error("expected expiry failure")
		}
	})

	t.Run("Secret Required", func(t *testing.T) {
		if _, err := NewTokenIssuer("", 0); err == nil {
			t.Error("expected error")
		}
		if _, err := NewAPI(APIOpts{}); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestMockAPI(t *testing.T) {
	t.Run("Requires Bearer", func(t *testing.T) {
		server := newTestAPI(t)

		for _, path := range []string{"/api/movies", "/api/series", "/api/genres"} {
			resp, err := http.Get(server.URL + path)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("%s: expected 401, got %d", path, resp.StatusCode)
			}
		}
	})

	t.Run("Register Login And Genres", func(t *testing.T) {
		server := newTestAPI(t)
		c := newClient(t, server.URL)
		ctx := context.Background()

		if err := c.auth.Register(ctx, services.Credentials{Username: "ann", Password: "pw"}); err != nil {
			t.Fatalf("register failed: %v", err)
		}
		if err := c.auth.Register(ctx, services.Credentials{Username: "ann", Password: "pw"}); !errors.Is(err, shared.ErrRegisterFailed) {
			t.Errorf("expected duplicate register to fail, got %v", err)
		}

		c.auth.Logout()
		if err := c.auth.Login(ctx, services.Credentials{Username: "ann", Password: "wrong"}); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if c.nav.Current() != session.RouteLogin {
			t.Errorf("expected to stay on login, got %s", c.nav.Current())
		}
		if err := c.auth.Login(ctx, services.Credentials{Username: "ann", Password: "pw"}); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		genres, err := c.catalog.Genres(ctx)
		if err != nil {
			t.Fatalf("genres failed: %v", err)
		}
		if len(genres) != len(SeedGenres) || genres[5].Name != "Drama" {
			t.Errorf("unexpected genres %+v", genres)
		}
	})

	t.Run("Item Lifecycle", func(t *testing.T) {
		server := newTestAPI(t)
		c := newClient(t, server.URL)
		ctx := context.Background()
		c.auth.Register(ctx, services.Credentials{Username: "ann", Password: "pw"})

		ep := 10
		for _, title := range []string{"Dark", "Lost", "Fargo"} {
			genre := 6
			if title == "Fargo" {
				genre = 4
			}
			_, err := c.catalog.Create(ctx, models.KindSeries, models.Payload{
				Title: title, Summary: "s", Duration: 50, ImageURL: "http://x", Status: models.StatusToWatch,
				Genres: []models.GenreRef{{ID: genre}}, Episodes: &ep,
			})
			if err != nil {
				t.Fatalf("create failed: %v", err)
			}
		}

		items, err := c.catalog.List(ctx, models.KindSeries, models.ListQuery{Genre: "Drama", Sort: models.SortDesc})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(items) != 2 || items[0].Title != "Lost" || items[1].Title != "Dark" {
			t.Errorf("unexpected filtered list %+v", items)
		}
		if items[0].Episodes == nil || *items[0].Episodes != 10 {
			t.Error("expected episodes to round trip")
		}

		lost := items[0]
		updated, err := c.catalog.Update(ctx, models.KindSeries, lost.ID, lost.WithStatus(models.StatusInProgress))
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Status != models.StatusInProgress || updated.GenreNames() != "Drama" {
			t.Errorf("unexpected update %+v", updated)
		}

		p := lost.WithStatus("")
		p.Title = "Lost (2004)"
		updated, _ = c.catalog.Update(ctx, models.KindSeries, lost.ID, p)
		if updated.Status != models.StatusInProgress {
			t.Errorf("expected status preserved, got %s", updated.Status)
		}

		if err := c.catalog.Delete(ctx, models.KindSeries, lost.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		items, _ = c.catalog.List(ctx, models.KindSeries, models.ListQuery{})
		if len(items) != 2 || items[0].Title != "Dark" || items[1].Title != "Fargo" {
			t.Errorf("expected only Lost removed, got %+v", items)
		}

		if _, err := c.catalog.Get(ctx, models.KindSeries, lost.ID); !errors.Is(err, shared.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("Items Are Scoped To Owner", func(t *testing.T) {
		server := newTestAPI(t)
		ctx := context.Background()

		ann := newClient(t, server.URL)
		ann.auth.Register(ctx, services.Credentials{Username: "ann", Password: "pw"})
		dune, err := ann.catalog.Create(ctx, models.KindMovie, models.Payload{Title: "Dune", Duration: 155, Genres: []models.GenreRef{{ID: 11}}})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if dune.Status != models.StatusToWatch || dune.Episodes != nil {
			t.Errorf("expected TO_WATCH movie without episodes, got %+v", dune)
		}

		bob := newClient(t, server.URL)
		bob.auth.Register(ctx, services.Credentials{Username: "bob", Password: "pw"})
		items, _ := bob.catalog.List(ctx, models.KindMovie, models.ListQuery{})
		if len(items) != 0 {
			t.Errorf("expected bob to see no movies, got %+v", items)
		}
		if err := bob.catalog.Delete(ctx, models.KindMovie, dune.ID); !errors.Is(err, shared.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("Bad Input", func(t *testing.T) {
		server := newTestAPI(t)
		c := newClient(t, server.URL)
		ctx := context.Background()
		c.auth.Register(ctx, services.Credentials{Username: "ann", Password: "pw"})

		_, err := c.catalog.Create(ctx, models.KindMovie, models.Payload{Title: "X", Genres: []models.GenreRef{{ID: 99}}})
		var apiErr *services.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
			t.Errorf("expected 400 for unknown genre, got %v", err)
		}

		token, _ := c.session.Token()
		req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/movies/abc", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		if resp.StatusCode != http.StatusBadRequest || body["error"] != "invalid id" {
			t.Errorf("expected 400 invalid id, got %d %v", resp.StatusCode, body)
		}
	})

	t.Run("Forged Token Redirects Client", func(t *testing.T) {
		server := newTestAPI(t)
		c := newClient(t, server.URL)
		c.session.SetToken("forged")
		c.nav.Navigate(session.RouteMovies)

		_, err := c.catalog.List(context.Background(), models.KindMovie, models.ListQuery{})
		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
		if c.session.Authenticated() || c.nav.Current() != session.RouteLogin {
			t.Error("expected session cleared and redirect to login")
		}
	})
}
