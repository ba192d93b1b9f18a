package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nicolasrp432/PlaywrongIa/internal/services"
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
	MsgHomeLoaded MsgKind = iota
	MsgDetailLoaded
	MsgSearchDone
)

type detailLoaded struct {
	id      int
	outcome services.DetailOutcome
}

type searchDone struct {
	query string
	err   error
}

// homeLoadedMsg is the constructor for [MsgHomeLoaded]; the data lives in the store.
func homeLoadedMsg() Msg {
	return Msg{kind: MsgHomeLoaded}
}

// detailLoadedMsg is the constructor for [MsgDetailLoaded]
func detailLoadedMsg(id int, outcome services.DetailOutcome) Msg {
	return Msg{kind: MsgDetailLoaded, data: detailLoaded{id: id, outcome: outcome}}
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(query string, err error) Msg {
	return Msg{kind: MsgSearchDone, data: searchDone{query: query, err: err}}
}
