package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/watchlog/internal/models"
)

type formField int

const (
	fieldTitle formField = iota
	fieldSummary
	fieldDuration
	fieldEpisodes
	fieldImage
)

// itemForm holds the widgets of the create/edit modal. The draft itself
// lives in the screen and is rewritten from the inputs after every key.
type itemForm struct {
	kind      models.Kind
	editing   bool
	fields    []formField
	inputs    []textinput.Model
	cursor    int // len(inputs) is the genre checklist
	genre     int
	fileMode  bool
	canUpload bool
}

func newItemForm(kind models.Kind, draft models.Draft, editing, canUpload bool) *itemForm {
	f := &itemForm{kind: kind, editing: editing, canUpload: canUpload}
	f.add(fieldTitle, "Title: ", "Title", draft.Title)
	f.add(fieldSummary, "Summary: ", "Summary", draft.Summary)
	f.add(fieldDuration, "Duration (min): ", "Duration in minutes", draft.Duration)
	if kind == models.KindSeries {
		f.add(fieldEpisodes, "Episodes: ", "Number of episodes", draft.Episodes)
	}
	f.add(fieldImage, "Image URL: ", "https://", draft.ImageURL)
	return f
}

func (f *itemForm) add(field formField, prompt, placeholder, value string) {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.SetValue(value)
	f.fields = append(f.fields, field)
	f.inputs = append(f.inputs, in)
}

func (f *itemForm) index(field formField) int {
	for i, fl := range f.fields {
		if fl == field {
			return i
		}
	}
	return -1
}

func (f *itemForm) value(field formField) string {
	if i := f.index(field); i >= 0 {
		return f.inputs[i].Value()
	}
	return ""
}

func (f *itemForm) onGenres() bool { return f.cursor == len(f.inputs) }

func (f *itemForm) onImage() bool { return !f.onGenres() && f.fields[f.cursor] == fieldImage }

// move shifts focus by delta, wrapping around the checklist.
func (f *itemForm) move(delta int) tea.Cmd {
	n := len(f.inputs) + 1
	f.cursor = ((f.cursor+delta)%n + n) % n
	return f.focus()
}

func (f *itemForm) focus() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	if f.onGenres() {
		return nil
	}
	return f.inputs[f.cursor].Focus()
}

// apply copies the inputs into d. In file mode the image input holds a
// local path, so the draft keeps its current image URL.
func (f *itemForm) apply(d *models.Draft) {
	d.Title = f.value(fieldTitle)
	d.Summary = f.value(fieldSummary)
	d.Duration = strings.TrimSpace(f.value(fieldDuration))
	if f.kind == models.KindSeries {
		d.Episodes = strings.TrimSpace(f.value(fieldEpisodes))
	}
	if !f.fileMode {
		d.ImageURL = strings.TrimSpace(f.value(fieldImage))
	}
}

// toggleImageMode switches the image input between a URL and a file path.
func (f *itemForm) toggleImageMode(current string) {
	if !f.canUpload {
		return
	}
	i := f.index(fieldImage)
	f.fileMode = !f.fileMode
	if f.fileMode {
		f.inputs[i].Prompt = "Image file: "
		f.inputs[i].Placeholder = "path to an image, enter to upload"
		f.inputs[i].SetValue("")
		return
	}
	f.inputs[i].Prompt = "Image URL: "
	f.inputs[i].Placeholder = "https://"
	f.inputs[i].SetValue(current)
}

// uploaded returns to URL mode showing whatever image the draft now has.
func (f *itemForm) uploaded(d models.Draft) {
	if f.fileMode {
		f.toggleImageMode(d.ImageURL)
	}
}

func (f *itemForm) path() string {
	return strings.TrimSpace(f.value(fieldImage))
}

func (f *itemForm) heading() string {
	if f.editing {
		return fmt.Sprintf("Edit %s", f.kind.Label())
	}
	return fmt.Sprintf("Add a %s", f.kind.Label())
}

func (f *itemForm) update(msg tea.Msg) tea.Cmd {
	if f.onGenres() {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.cursor], cmd = f.inputs[f.cursor].Update(msg)
	return cmd
}

func (f *itemForm) render(d models.Draft, genres []models.Genre) string {
	var b strings.Builder
	for _, in := range f.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if f.fileMode && d.ImageURL != "" {
		b.WriteString(styles.help.Render("current image: " + d.ImageURL))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	label := "Genres"
	if f.onGenres() {
		label = styles.heading.Render(label)
	}
	b.WriteString(label)
	b.WriteString("\n")
	for i, g := range genres {
		mark := "[ ]"
		if d.HasGenre(g.ID) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, g.Name)
		if f.onGenres() && i == f.genre {
			line = styles.selected.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}
