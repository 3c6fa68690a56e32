package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	left     key.Binding
	right    key.Binding
	enter    key.Binding
	back     key.Binding
	yes      key.Binding
	no       key.Binding
	add      key.Binding
	edit     key.Binding
	remove   key.Binding
	info     key.Binding
	advance  key.Binding
	retreat  key.Binding
	genre    key.Binding
	sort     key.Binding
	reload   key.Binding
	next     key.Binding
	prev     key.Binding
	toggle   key.Binding
	submit   key.Binding
	file     key.Binding
	register key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:      key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		remove:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		info:     key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i", "info")),
		advance:  key.NewBinding(key.WithKeys(">", "."), key.WithHelp(">", "next bucket")),
		retreat:  key.NewBinding(key.WithKeys("<", ","), key.WithHelp("<", "previous bucket")),
		genre:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "genre")),
		sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle genre")),
		submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		file:     key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "url/file")),
		register: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "login/register")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right},
		{k.add, k.edit, k.remove, k.info},
		{k.advance, k.retreat, k.genre, k.sort},
		{k.back, k.quit},
	}
}
