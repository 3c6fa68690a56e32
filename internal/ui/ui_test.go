package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/services"
	"github.com/desertthunder/watchlog/internal/session"
	tu "github.com/desertthunder/watchlog/internal/testing"
)

func press(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// exec runs a command that is known to return a single message and feeds it back.
func exec(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

func newManager(t *testing.T, token string) *session.Manager {
	t.Helper()
	mgr := session.NewMemoryManager()
	if token != "" {
		if err := mgr.SetToken(token); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return mgr
}

func newAuthModel(t *testing.T, handler http.HandlerFunc) (*Model, *session.Manager) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mgr := newManager(t, "")
	nav := session.NewNavigator(mgr, session.RouteMovies)
	client := services.NewClient(services.ClientOpts{BaseURL: srv.URL, Session: mgr, Navigator: nav})
	m := NewModel(context.Background(), Deps{Navigator: nav, Auth: services.NewAuthService(client), Catalog: tu.NewFakeCatalog()})
	m.Init()
	return m, mgr
}

func newEntityModel(t *testing.T) (*Model, *tu.FakeCatalog) {
	t.Helper()
	cat := tu.NewFakeCatalog()
	drama := models.Genre{ID: 3, Name: "Drama"}
	cat.Seed(models.KindMovie,
		models.Item{ID: 1, Title: "Arrival", Duration: 116, Status: models.StatusToWatch, Genres: []models.Genre{drama}},
		models.Item{ID: 2, Title: "Casablanca", Duration: 102, Status: models.StatusCompleted, ImageURL: "http://img/c.jpg"},
	)

	mgr := newManager(t, "token")
	nav := session.NewNavigator(mgr, session.RouteMovies)
	client := services.NewClient(services.ClientOpts{Session: mgr, Navigator: nav})
	m := NewModel(context.Background(), Deps{
		Navigator: nav,
		Auth:      services.NewAuthService(client),
		Catalog:   cat,
		Uploader:  &tu.FakeUploader{URL: "http://img/up.png"},
	})
	exec(t, m, m.Init())
	return m, cat
}

func TestAuthScreens(t *testing.T) {
	t.Run("Guarded Start Shows Login", func(t *testing.T) {
		m, _ := newAuthModel(t, func(w http.ResponseWriter, r *http.Request) {})
		if m.nav.Current() != session.RouteLogin {
			t.Fatalf("expected login, got %s", m.nav.Current())
		}
		if !strings.Contains(m.View(), "Log in") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
	})

	t.Run("Login Success Goes Home", func(t *testing.T) {
		m, mgr := newAuthModel(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/login" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`{"token":"abc"}`))
		})

		typeText(m, "ada")
		m.Update(press("tab"))
		typeText(m, "secret")
		exec(t, m, m.handleAuthKeys(press("enter")))

		if m.nav.Current() != session.RouteHome {
			t.Fatalf("expected home, got %s", m.nav.Current())
		}
		if tok, _ := mgr.Token(); tok != "abc" {
			t.Errorf("expected stored token, got %q", tok)
		}
		if !strings.Contains(m.View(), "Movies") {
			t.Errorf("expected home menu:\n%s", m.View())
		}
	})

	t.Run("Login Failure Shows Fixed Message", func(t *testing.T) {
		m, _ := newAuthModel(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"bad password for ada"}`))
		})

		typeText(m, "ada")
		m.Update(press("tab"))
		typeText(m, "wrong")
		exec(t, m, m.handleAuthKeys(press("enter")))

		view := m.View()
		if m.nav.Current() != session.RouteLogin {
			t.Errorf("expected to stay on login, got %s", m.nav.Current())
		}
		if !strings.Contains(view, services.MsgLoginFailed) {
			t.Errorf("expected failure message:\n%s", view)
		}
		if strings.Contains(view, "bad password") {
			t.Errorf("server detail leaked:\n%s", view)
		}
	})

	t.Run("Register Conflict", func(t *testing.T) {
		m, _ := newAuthModel(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})

		m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
		if m.nav.Current() != session.RouteRegister {
			t.Fatalf("expected register, got %s", m.nav.Current())
		}
		typeText(m, "ada")
		m.Update(press("tab"))
		typeText(m, "secret")
		exec(t, m, m.handleAuthKeys(press("enter")))

		if !strings.Contains(m.View(), services.MsgRegisterFailed) {
			t.Errorf("expected register failure:\n%s", m.View())
		}
	})
}

func TestHomeScreen(t *testing.T) {
	t.Run("Logout Clears Session", func(t *testing.T) {
		m, _ := newEntityModel(t)
		m.nav.Navigate(session.RouteHome)
		m.Update(nil)

		m.Update(press("j"))
		m.Update(press("j"))
		m.Update(press("enter"))

		if m.nav.Current() != session.RouteLogin {
			t.Fatalf("expected login, got %s", m.nav.Current())
		}
		if m.nav.Navigate(session.RouteMovies) != session.RouteLogin {
			t.Error("expected guard to refuse movies after logout")
		}
	})
}

func TestEntityScreen(t *testing.T) {
	t.Run("Renders Buckets", func(t *testing.T) {
		m, _ := newEntityModel(t)
		view := m.View()

		for _, want := range []string{"MY MOVIES", "To watch (1)", "In Progress (0)", "Completed (1)", "Arrival", "Casablanca", "No movies found.", "A - Z", "All"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in view:\n%s", want, view)
			}
		}
	})

	t.Run("Redirect Is Picked Up On Next Update", func(t *testing.T) {
		m, _ := newEntityModel(t)
		m.nav.RedirectToLogin()
		m.Update(nil)

		if !strings.Contains(m.View(), "Log in") {
			t.Errorf("expected login view:\n%s", m.View())
		}
	})

	t.Run("Advance", func(t *testing.T) {
		m, cat := newEntityModel(t)
		exec(t, m, m.handleEntityKeys(press(">")))

		items := cat.Items(models.KindMovie)
		if items[0].Status != models.StatusInProgress {
			t.Errorf("expected IN_PROGRESS, got %s", items[0].Status)
		}
		if !strings.Contains(m.View(), "In Progress (1)") {
			t.Errorf("expected moved item:\n%s", m.View())
		}
	})

	t.Run("No Advance From Completed", func(t *testing.T) {
		m, cat := newEntityModel(t)
		m.Update(press("l"))
		m.Update(press("l"))

		if cmd := m.handleEntityKeys(press(">")); cmd != nil {
			t.Error("expected no command")
		}
		if cat.CallCount("update") != 0 {
			t.Error("expected no update call")
		}
	})

	t.Run("Delete Confirm", func(t *testing.T) {
		m, cat := newEntityModel(t)
		m.Update(press("d"))

		if !strings.Contains(m.View(), `Are you sure you want to delete "Arrival"?`) {
			t.Fatalf("expected delete modal:\n%s", m.View())
		}
		exec(t, m, m.handleEntityKeys(press("y")))

		if len(cat.Items(models.KindMovie)) != 1 {
			t.Errorf("expected item removed, got %d", len(cat.Items(models.KindMovie)))
		}
		if strings.Contains(m.View(), "Arrival") {
			t.Errorf("expected list refreshed:\n%s", m.View())
		}
	})

	t.Run("Delete Cancel", func(t *testing.T) {
		m, cat := newEntityModel(t)
		m.Update(press("d"))
		m.Update(press("n"))

		if cat.CallCount("delete") != 0 {
			t.Error("expected no delete call")
		}
		if !strings.Contains(m.View(), "To watch (1)") {
			t.Errorf("expected columns:\n%s", m.View())
		}
	})

	t.Run("Info", func(t *testing.T) {
		m, _ := newEntityModel(t)
		m.Update(press("i"))

		view := m.View()
		for _, want := range []string{"No Image", "116 min", "Drama", "To watch"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in info:\n%s", want, view)
			}
		}
		m.Update(press("esc"))
		if !strings.Contains(m.View(), "MY MOVIES") {
			t.Errorf("expected info closed:\n%s", m.View())
		}
	})

	t.Run("Filter And Sort Reload", func(t *testing.T) {
		m, cat := newEntityModel(t)
		exec(t, m, m.handleEntityKeys(press("g")))

		if q := cat.LastQuery(); q.Genre != tu.DefaultGenres[0].Name {
			t.Errorf("expected first genre filter, got %+v", q)
		}
		exec(t, m, m.handleEntityKeys(press("s")))
		if q := cat.LastQuery(); q.Sort != models.SortDesc {
			t.Errorf("expected desc sort, got %+v", q)
		}
		if !strings.Contains(m.View(), "Z - A") {
			t.Errorf("expected sort label:\n%s", m.View())
		}
	})

	t.Run("Back Goes Home", func(t *testing.T) {
		m, _ := newEntityModel(t)
		m.Update(press("esc"))
		if m.nav.Current() != session.RouteHome {
			t.Errorf("expected home, got %s", m.nav.Current())
		}
	})
}

func TestItemForm(t *testing.T) {
	t.Run("Invalid Submit Shows Alert", func(t *testing.T) {
		m, cat := newEntityModel(t)
		m.Update(press("a"))
		if !strings.Contains(m.View(), "Add a Movie") {
			t.Fatalf("expected form:\n%s", m.View())
		}

		exec(t, m, m.handleEntityKeys(press("ctrl+s")))
		if !strings.Contains(m.View(), models.RuleTitleRequired) {
			t.Errorf("expected alert:\n%s", m.View())
		}
		if cat.CallCount("create") != 0 {
			t.Error("expected no create call")
		}
	})

	t.Run("Create", func(t *testing.T) {
		m, cat := newEntityModel(t)
		m.Update(press("a"))
		typeText(m, "Dune")
		m.Update(press("tab"))
		typeText(m, "Spice")
		m.Update(press("tab"))
		typeText(m, "155")
		m.Update(press("tab"))
		typeText(m, "http://img/dune.jpg")
		m.Update(press("tab"))
		m.Update(press(" "))

		exec(t, m, m.handleEntityKeys(press("ctrl+s")))

		items := cat.Items(models.KindMovie)
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}
		dune := items[2]
		if dune.Title != "Dune" || dune.Duration != 155 || dune.Status != models.StatusToWatch {
			t.Errorf("unexpected item %+v", dune)
		}
		if len(dune.Genres) != 1 || dune.Genres[0].ID != tu.DefaultGenres[0].ID {
			t.Errorf("unexpected genres %+v", dune.Genres)
		}
		if m.form != nil || !strings.Contains(m.View(), "Dune") {
			t.Errorf("expected form closed and list refreshed:\n%s", m.View())
		}
	})

	t.Run("Edit Prefills", func(t *testing.T) {
		m, _ := newEntityModel(t)
		m.Update(press("e"))

		view := m.View()
		if !strings.Contains(view, "Edit Movie") || !strings.Contains(view, "Arrival") || !strings.Contains(view, "116") {
			t.Errorf("expected prefilled form:\n%s", view)
		}
		m.Update(press("esc"))
		if m.form != nil {
			t.Error("expected form closed")
		}
	})

	t.Run("Upload Sets Image", func(t *testing.T) {
		m, _ := newEntityModel(t)
		m.Update(press("a"))
		for range 3 {
			m.Update(press("tab"))
		}
		m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
		if !m.form.fileMode {
			t.Fatal("expected file mode")
		}

		path := filepath.Join(t.TempDir(), "poster.png")
		if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		typeText(m, path)
		exec(t, m, m.handleEntityKeys(press("enter")))

		s := m.Screen(models.KindMovie)
		if got := s.Draft().ImageURL; got != "http://img/up.png" {
			t.Errorf("expected uploaded url, got %q", got)
		}
		if m.form.fileMode {
			t.Error("expected url mode after upload")
		}
	})

	t.Run("Upload Of Missing File Alerts", func(t *testing.T) {
		m, _ := newEntityModel(t)
		m.Update(press("a"))
		for range 3 {
			m.Update(press("tab"))
		}
		m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
		typeText(m, "/does/not/exist.png")
		exec(t, m, m.handleEntityKeys(press("enter")))

		if !strings.Contains(m.View(), "Error uploading image, please try again.") {
			t.Errorf("expected upload alert:\n%s", m.View())
		}
	})
}

func TestNextGenre(t *testing.T) {
	genres := []models.Genre{{ID: 1, Name: "Action"}, {ID: 2, Name: "Drama"}}
	tests := []struct{ current, want string }{
		{"", "Action"},
		{"Action", "Drama"},
		{"Drama", ""},
		{"Unknown", ""},
	}
	for _, tt := range tests {
		if got := nextGenre(genres, tt.current); got != tt.want {
			t.Errorf("nextGenre(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestActionHint(t *testing.T) {
	tests := []struct {
		status models.Status
		want   string
	}{
		{models.StatusToWatch, "i info e edit d delete >"},
		{models.StatusInProgress, "< i info e edit d delete >"},
		{models.StatusCompleted, "< i info e edit d delete"},
	}
	for _, tt := range tests {
		if got := actionHint(models.Item{Status: tt.status}); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.status, got, tt.want)
		}
	}
}
