package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/tasks"
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
	MsgSearchResults MsgKind = iota
	MsgProgressUpdate
	MsgShowAdded
	MsgAlert
	MsgSweepDone
	MsgSiteOpened
	MsgIdentityChanged
	MsgAuthDone
)

type searchResults struct {
	query string
	hits  []models.CatalogHit
}

type authDone struct {
	identity models.Identity
	err      error
}

type showAdded struct {
	show *models.TrackedShow
	err  error
}

// searchResultsMsg is the constructor for [MsgSearchResults]
func searchResultsMsg(query string, hits []models.CatalogHit) Msg {
	return Msg{kind: MsgSearchResults, data: searchResults{query, hits}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// showAddedMsg is the constructor for [MsgShowAdded]
func showAddedMsg(show *models.TrackedShow, err error) Msg {
	return Msg{kind: MsgShowAdded, data: showAdded{show, err}}
}

// alertMsg is the constructor for [MsgAlert]
func alertMsg(alert tasks.Alert) Msg {
	return Msg{kind: MsgAlert, data: alert}
}

// sweepDoneMsg is the constructor for [MsgSweepDone]; count is the number of alerts raised.
func sweepDoneMsg(count int) Msg {
	return Msg{kind: MsgSweepDone, data: count}
}

// siteOpenedMsg is the constructor for [MsgSiteOpened]
func siteOpenedMsg(err error) Msg {
	return Msg{kind: MsgSiteOpened, data: err}
}

// identityChangedMsg is the constructor for [MsgIdentityChanged]
func identityChangedMsg(identity models.Identity) Msg {
	return Msg{kind: MsgIdentityChanged, data: identity}
}

// authDoneMsg is the constructor for [MsgAuthDone]; identity is zero after a sign-out.
func authDoneMsg(identity models.Identity, err error) Msg {
	return Msg{kind: MsgAuthDone, data: authDone{identity, err}}
}
