package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/screens"
	"github.com/desertthunder/watchlog/internal/services"
	"github.com/desertthunder/watchlog/internal/session"
	"github.com/desertthunder/watchlog/internal/shared"
)

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Deps are the collaborators the TUI drives.
type Deps struct {
	Navigator *session.Navigator
	Auth      *services.AuthService
	Catalog   services.Catalog
	Uploader  Uploader // optional; without it only image URLs can be entered
	Logger    *log.Logger
}

// Model represents the TUI application state.
//
// Route state lives in the [session.Navigator] and entity state in one
// [screens.Screen] per kind, so the model only holds widget state.
type Model struct {
	ctx      context.Context
	nav      *session.Navigator
	auth     *services.AuthService
	uploader Uploader
	logger   *log.Logger
	screens  map[models.Kind]*screens.Screen

	route  session.Route
	width  int
	height int
	help   help.Model
	keys   keyMap

	login authForm
	menu  list.Model

	column int
	row    int
	form   *itemForm
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	m := &Model{
		ctx:      ctx,
		nav:      deps.Navigator,
		auth:     deps.Auth,
		uploader: deps.Uploader,
		logger:   logger,
		screens: map[models.Kind]*screens.Screen{
			models.KindMovie:  screens.New(models.KindMovie, deps.Catalog, logger),
			models.KindSeries: screens.New(models.KindSeries, deps.Catalog, logger),
		},
		help:  help.New(),
		keys:  newKeyMap(),
		login: newAuthForm(),
		menu:  newHomeMenu(40, 14),
	}
	return m
}

// Init loads the entity screen when the session starts on one.
func (m *Model) Init() tea.Cmd {
	return m.sync()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.nav.Current() {
		case session.RouteLogin, session.RouteRegister:
			cmd = m.handleAuthKeys(msg)
		case session.RouteHome:
			cmd = m.handleHomeKeys(msg)
		case session.RouteMovies, session.RouteSeries:
			cmd = m.handleEntityKeys(msg)
		}

	case Msg:
		cmd = m.handleMsg(msg)
	}

	return m, tea.Batch(cmd, m.sync())
}

// sync reacts to route changes made outside Update, such as the client's
// redirect after a rejected session.
func (m *Model) sync() tea.Cmd {
	current := m.nav.Current()
	if current == m.route {
		return nil
	}
	prev := m.route
	m.route = current
	m.form = nil

	switch current {
	case session.RouteLogin, session.RouteRegister:
		if !prev.Public() {
			m.login = newAuthForm()
		}
		return m.login.focus()
	case session.RouteMovies, session.RouteSeries:
		m.column, m.row = 0, 0
		return m.load(m.kind(), true)
	}
	return nil
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgAuthDone:
		res := msg.data.(authResult)
		m.login.busy = false
		if res.err != nil {
			m.logger.Warn("authentication failed", "route", res.route, "err", res.err)
			m.login.err = authMessage(res.route)
			return nil
		}
		m.nav.Navigate(session.RouteHome)
	case MsgLoaded, MsgActionDone:
		if res := msg.data.(screenResult); screens.IsSilent(res.err) {
			m.logger.Debug("keeping previous state", "kind", res.kind, "err", res.err)
		}
		m.clamp()
		if m.form != nil && m.screen() != nil && m.screen().ActiveModal() != screens.ModalForm {
			m.form = nil
		}
	case MsgUploadDone:
		if m.form != nil && m.screen() != nil {
			m.form.uploaded(m.screen().Draft())
		}
	}
	return nil
}

// View renders the UI for the route the navigator currently shows.
func (m *Model) View() string {
	switch m.nav.Current() {
	case session.RouteLogin, session.RouteRegister:
		return m.renderAuth()
	case session.RouteHome:
		return m.renderHome()
	case session.RouteMovies, session.RouteSeries:
		return m.renderEntity()
	default:
		return ""
	}
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.enter):
		selected, ok := m.menu.SelectedItem().(menuItem)
		if !ok {
			return nil
		}
		if selected.route == "" {
			if err := m.auth.Logout(); err != nil {
				m.logger.Error("logout failed", "err", err)
			}
			m.nav.Navigate(session.RouteLogin)
			return nil
		}
		m.nav.Navigate(selected.route)
		return nil
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return cmd
}

func (m *Model) renderHome() string {
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.menu.View(), m.help.ShortHelpView(helpKeys))
}

// kind maps the current route to its entity kind.
func (m *Model) kind() models.Kind {
	if m.nav.Current() == session.RouteSeries {
		return models.KindSeries
	}
	return models.KindMovie
}

// screen returns the state holder for the current entity route, or nil elsewhere.
func (m *Model) screen() *screens.Screen {
	switch m.nav.Current() {
	case session.RouteMovies, session.RouteSeries:
		return m.screens[m.kind()]
	default:
		return nil
	}
}

// Screen exposes the state holder for kind.
func (m *Model) Screen(kind models.Kind) *screens.Screen {
	return m.screens[kind]
}
