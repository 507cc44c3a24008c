package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/songbook/internal/models"
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
	MsgSongsFetched MsgKind = iota
)

type songsFetched struct {
	title string
	songs []*models.Song
	err   error
}

// songsFetchedMsg is the constructor for [MsgSongsFetched]
func songsFetchedMsg(title string, songs []*models.Song, err error) Msg {
	return Msg{kind: MsgSongsFetched, data: songsFetched{title, songs, err}}
}
