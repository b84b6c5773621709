package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/tasks"
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
	MsgPlaylistsLoaded MsgKind = iota
	MsgItemsLoaded
	MsgProgressUpdate
	MsgArchiveComplete
)

type playlistsLoaded struct {
	playlists []models.Playlist
	err       error
}

type itemsLoaded struct {
	playlist models.Playlist
	entries  []models.Entry
	order    models.Order
	err      error
}

type archiveComplete struct {
	result *tasks.ArchiveResult
	err    error
}

// playlistsLoadedMsg is the constructor for [MsgPlaylistsLoaded]
func playlistsLoadedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsLoaded, data: playlistsLoaded{playlists, err}}
}

// itemsLoadedMsg is the constructor for [MsgItemsLoaded]
func itemsLoadedMsg(playlist models.Playlist, entries []models.Entry, order models.Order, err error) Msg {
	return Msg{kind: MsgItemsLoaded, data: itemsLoaded{playlist, entries, order, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// archiveCompleteMsg is the constructor for [MsgArchiveComplete]
func archiveCompleteMsg(result *tasks.ArchiveResult, err error) Msg {
	return Msg{kind: MsgArchiveComplete, data: archiveComplete{result, err}}
}
