package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/watchlog/internal/session"
)

var _ list.Item = menuItem{}

// menuItem is one entry of the home screen menu. An empty route means log out.
type menuItem struct {
	title string
	desc  string
	route session.Route
}

func (i menuItem) FilterValue() string { return i.title }
func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }

func homeItems() []list.Item {
	return []list.Item{
		menuItem{title: "Movies", desc: "Your movie watchlist", route: session.RouteMovies},
		menuItem{title: "Series", desc: "Your series watchlist", route: session.RouteSeries},
		menuItem{title: "Log out", desc: "End this session"},
	}
}

func newHomeMenu(width, height int) list.Model {
	l := list.New(homeItems(), list.NewDefaultDelegate(), width, height)
	l.Title = "Watchlog"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}
