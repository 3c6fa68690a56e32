package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgAuthDone MsgKind = iota
	MsgLoaded
	MsgActionDone
	MsgUploadDone
)

type authResult struct {
	route session.Route
	err   error
}

type screenResult struct {
	kind models.Kind
	err  error
}

// authDoneMsg is the constructor for [MsgAuthDone]
func authDoneMsg(route session.Route, err error) Msg {
	return Msg{kind: MsgAuthDone, data: authResult{route, err}}
}

// loadedMsg is the constructor for [MsgLoaded]
func loadedMsg(kind models.Kind, err error) Msg {
	return Msg{kind: MsgLoaded, data: screenResult{kind, err}}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(kind models.Kind, err error) Msg {
	return Msg{kind: MsgActionDone, data: screenResult{kind, err}}
}

// uploadDoneMsg is the constructor for [MsgUploadDone]
func uploadDoneMsg(kind models.Kind, err error) Msg {
	return Msg{kind: MsgUploadDone, data: screenResult{kind, err}}
}
