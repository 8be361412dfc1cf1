package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytdash/internal/tasks"
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
	MsgItemsFetched MsgKind = iota
	MsgProgressUpdate
	MsgBulkComplete
)

type itemsFetched struct {
	collection Collection
	items      []list.Item
	notice     string
	err        error
}

// itemsFetchedMsg is the constructor for [MsgItemsFetched]
func itemsFetchedMsg(c Collection, items []list.Item, notice string, err error) Msg {
	return Msg{kind: MsgItemsFetched, data: itemsFetched{c, items, notice, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// bulkCompleteMsg is the constructor for [MsgBulkComplete]
func bulkCompleteMsg(result tasks.BulkResult) Msg {
	return Msg{kind: MsgBulkComplete, data: result}
}
