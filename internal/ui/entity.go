package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/watchlog/internal/formatter"
	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/screens"
	"github.com/desertthunder/watchlog/internal/session"
	"github.com/desertthunder/watchlog/internal/shared"
)

// load fetches the list for kind, and the genres first when withGenres is set.
func (m *Model) load(kind models.Kind, withGenres bool) tea.Cmd {
	s := m.screens[kind]
	return func() tea.Msg {
		var genreErr error
		if withGenres {
			genreErr = s.LoadGenres(m.ctx)
		}
		return loadedMsg(kind, errors.Join(genreErr, s.Load(m.ctx)))
	}
}

// act runs a screen operation off the render loop.
func (m *Model) act(kind models.Kind, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg(kind, fn(m.ctx))
	}
}

func (m *Model) bucket() []models.Item {
	return m.screen().Buckets().Get(models.Statuses[m.column])
}

// selected returns the item under the cursor.
func (m *Model) selected() (models.Item, bool) {
	items := m.bucket()
	if m.row < 0 || m.row >= len(items) {
		return models.Item{}, false
	}
	return items[m.row], true
}

// clamp keeps the cursor inside the current bucket after the list changes.
func (m *Model) clamp() {
	if m.screen() == nil {
		return
	}
	n := len(m.bucket())
	m.row = max(0, min(m.row, n-1))
}

func (m *Model) handleEntityKeys(msg tea.KeyMsg) tea.Cmd {
	s := m.screen()
	switch s.ActiveModal() {
	case screens.ModalForm:
		return m.handleFormKeys(s, msg)
	case screens.ModalDelete:
		return m.handleDeleteKeys(s, msg)
	case screens.ModalInfo:
		if key.Matches(msg, m.keys.back, m.keys.enter, m.keys.quit, m.keys.info) {
			s.CloseInfo()
		}
		return nil
	}

	kind := s.Kind()
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.back):
		m.nav.Navigate(session.RouteHome)
	case key.Matches(msg, m.keys.left):
		m.column = max(0, m.column-1)
		m.row = 0
	case key.Matches(msg, m.keys.right):
		m.column = min(len(models.Statuses)-1, m.column+1)
		m.row = 0
	case key.Matches(msg, m.keys.up):
		m.row = max(0, m.row-1)
	case key.Matches(msg, m.keys.down):
		m.row++
		m.clamp()
	case key.Matches(msg, m.keys.add):
		s.OpenCreate()
		m.form = newItemForm(kind, s.Draft(), false, m.uploader != nil)
		return m.form.focus()
	case key.Matches(msg, m.keys.reload):
		return m.load(kind, true)
	case key.Matches(msg, m.keys.genre):
		s.SetFilter(nextGenre(s.Genres(), s.Query().Genre))
		return m.load(kind, false)
	case key.Matches(msg, m.keys.sort):
		s.SetSort(s.Query().Sort.Toggle())
		return m.load(kind, false)
	default:
		return m.handleItemKeys(s, msg)
	}
	return nil
}

// handleItemKeys dispatches the per-item actions offered for the selection.
func (m *Model) handleItemKeys(s *screens.Screen, msg tea.KeyMsg) tea.Cmd {
	it, ok := m.selected()
	if !ok {
		return nil
	}
	actions := screens.Actions(it)
	switch {
	case key.Matches(msg, m.keys.info):
		s.ShowInfo(it)
	case key.Matches(msg, m.keys.edit):
		s.OpenEdit(it)
		m.form = newItemForm(s.Kind(), s.Draft(), true, m.uploader != nil)
		return m.form.focus()
	case key.Matches(msg, m.keys.remove):
		s.RequestDelete(it)
	case key.Matches(msg, m.keys.advance) && slices.Contains(actions, screens.ActionAdvance):
		return m.act(s.Kind(), func(ctx context.Context) error { return s.Advance(ctx, it) })
	case key.Matches(msg, m.keys.retreat) && slices.Contains(actions, screens.ActionRetreat):
		return m.act(s.Kind(), func(ctx context.Context) error { return s.Retreat(ctx, it) })
	}
	return nil
}

func (m *Model) handleDeleteKeys(s *screens.Screen, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m.act(s.Kind(), s.ConfirmDelete)
	case key.Matches(msg, m.keys.no):
		s.CancelDelete()
	}
	return nil
}

func (m *Model) handleFormKeys(s *screens.Screen, msg tea.KeyMsg) tea.Cmd {
	f := m.form
	if f == nil {
		f = newItemForm(s.Kind(), s.Draft(), s.Editing() != nil, m.uploader != nil)
		m.form = f
	}

	switch {
	case key.Matches(msg, m.keys.back):
		s.CancelForm()
		m.form = nil
		return nil
	case key.Matches(msg, m.keys.submit):
		s.UpdateDraft(f.apply)
		return m.act(s.Kind(), s.Submit)
	case key.Matches(msg, m.keys.file):
		f.toggleImageMode(s.Draft().ImageURL)
		return nil
	case key.Matches(msg, m.keys.next):
		return f.move(1)
	case key.Matches(msg, m.keys.prev):
		return f.move(-1)
	}

	if f.onGenres() {
		genres := s.Genres()
		switch {
		case key.Matches(msg, m.keys.up):
			f.genre = max(0, f.genre-1)
		case key.Matches(msg, m.keys.down):
			f.genre = min(len(genres)-1, f.genre+1)
		case key.Matches(msg, m.keys.toggle, m.keys.enter):
			if f.genre < len(genres) {
				id := genres[f.genre].ID
				s.UpdateDraft(func(d *models.Draft) { d.ToggleGenre(id) })
			}
		}
		return nil
	}

	if msg.Type == tea.KeyEnter {
		if f.onImage() && f.fileMode {
			return m.upload(s, f.path())
		}
		return f.move(1)
	}

	cmd := f.update(msg)
	s.UpdateDraft(f.apply)
	return cmd
}

// upload sends the file at path to the image host and records the result on s.
func (m *Model) upload(s *screens.Screen, path string) tea.Cmd {
	if m.uploader == nil || path == "" || s.Uploading() {
		return nil
	}
	id := s.BeginUpload()
	kind := s.Kind()
	return func() tea.Msg {
		url, err := m.uploadFile(path)
		if !s.FinishUpload(id, url, err) {
			return nil
		}
		return uploadDoneMsg(kind, err)
	}
}

func (m *Model) uploadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}
	defer f.Close()
	return m.uploader.Upload(m.ctx, filepath.Base(path), f)
}

// nextGenre cycles through "" (all genres) and each genre name.
func nextGenre(genres []models.Genre, current string) string {
	names := []string{""}
	for _, g := range genres {
		names = append(names, g.Name)
	}
	i := slices.Index(names, current)
	return names[(i+1)%len(names)]
}

func genreLabel(name string) string {
	if name == "" {
		return "All"
	}
	return name
}

func (m *Model) renderEntity() string {
	s := m.screen()
	switch s.ActiveModal() {
	case screens.ModalForm:
		return m.place(m.renderForm(s))
	case screens.ModalDelete:
		return m.place(m.renderDelete(s))
	case screens.ModalInfo:
		return m.place(m.renderInfo(s))
	}

	kind := s.Kind()
	q := s.Query()
	title := styles.title.Render(fmt.Sprintf("← MY %s", strings.ToUpper(kind.Plural())))
	filters := fmt.Sprintf("Genres: %s   Sort by Title: %s   %s",
		styles.heading.Render(genreLabel(q.Genre)),
		styles.heading.Render(q.Sort.Label()),
		styles.ok.Render(fmt.Sprintf("+ Add a %s", kind.Label())),
	)

	width := 30
	if m.width > 0 {
		width = max(20, (m.width-6)/len(models.Statuses)-2)
	}
	buckets := s.Buckets()
	cols := make([]string, len(models.Statuses))
	for i, status := range models.Statuses {
		cols[i] = m.renderColumn(kind, i, buckets.Get(status), width)
	}

	helpKeys := []key.Binding{
		m.keys.add, m.keys.edit, m.keys.remove, m.keys.info,
		m.keys.retreat, m.keys.advance, m.keys.genre, m.keys.sort, m.keys.back, m.keys.quit,
	}
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s",
		title, filters, lipgloss.JoinHorizontal(lipgloss.Top, cols...), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderColumn(kind models.Kind, col int, items []models.Item, width int) string {
	status := models.Statuses[col]
	lines := []string{styles.heading.Render(fmt.Sprintf("%s (%d)", status.Label(), len(items)))}
	if len(items) == 0 {
		lines = append(lines, styles.help.Render(fmt.Sprintf("No %s found.", kind.Plural())))
	}
	for i, it := range items {
		line := shared.Truncate(it.Title, width-2)
		if col == m.column && i == m.row {
			line = styles.selected.Render(line) + "\n" + styles.help.Render(actionHint(it))
		}
		lines = append(lines, line)
	}

	style := styles.column
	if col == m.column {
		style = styles.active
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

// actionHint lists the keys for the controls offered on it.
func actionHint(it models.Item) string {
	var parts []string
	for _, a := range screens.Actions(it) {
		switch a {
		case screens.ActionRetreat:
			parts = append([]string{"<"}, parts...)
		case screens.ActionAdvance:
			parts = append(parts, ">")
		case screens.ActionInfo:
			parts = append(parts, "i info")
		case screens.ActionEdit:
			parts = append(parts, "e edit")
		case screens.ActionDelete:
			parts = append(parts, "d delete")
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderForm(s *screens.Screen) string {
	f := m.form
	if f == nil {
		f = newItemForm(s.Kind(), s.Draft(), s.Editing() != nil, m.uploader != nil)
		m.form = f
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(f.heading()))
	b.WriteString("\n")
	b.WriteString(f.render(s.Draft(), s.Genres()))
	if s.Uploading() {
		b.WriteString(styles.warn.Render("Uploading image..."))
		b.WriteString("\n")
	}
	if alert := s.Alert(); alert != "" {
		b.WriteString(styles.err.Render(alert))
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.toggle, m.keys.submit}
	if f.canUpload {
		helpKeys = append(helpKeys, m.keys.file)
	}
	helpKeys = append(helpKeys, m.keys.back)
	return b.String() + "\n" + m.help.ShortHelpView(helpKeys)
}

func (m *Model) renderDelete(s *screens.Screen) string {
	target := s.DeleteTarget()
	if target == nil {
		return ""
	}
	title := styles.err.Render(fmt.Sprintf("Delete %s?", s.Kind().Label()))
	body := fmt.Sprintf("Are you sure you want to delete %q?", target.Title)
	return fmt.Sprintf("%s\n%s\n\n%s", title, body, m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no}))
}

func (m *Model) renderInfo(s *screens.Screen) string {
	target := s.InfoTarget()
	if target == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(styles.title.Render(target.Title))
	b.WriteString("\n")
	for _, f := range formatter.ItemDetail(*target) {
		fmt.Fprintf(&b, "%s %s\n", styles.heading.Render(f.Label+":"), f.Value)
	}
	closeKey := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close"))
	return b.String() + "\n" + m.help.ShortHelpView([]key.Binding{closeKey})
}

// place centers a modal box in the window.
func (m *Model) place(content string) string {
	box := styles.modal.Render(content)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
