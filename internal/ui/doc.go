// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI follows the navigator's route on every render:
//  1. login / register : credential forms; failures show a fixed message
//  2. home : a menu of Movies, Series and Log out
//  3. movies / series : three status columns with a genre filter and title sort
//
// Entity routes are backed by one [screens.Screen] per kind. At most one modal
// (create/edit form, delete confirmation or item info) is drawn over the columns.
// Network work runs in tea.Cmds and reports back through the Msg union type.
//
// Keyboard navigation uses vim-style bindings (h/j/k/l, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
