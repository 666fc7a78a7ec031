package ui

import (
	"time"

	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/player"
	"github.com/desertthunder/streamz/internal/session"
	"github.com/desertthunder/streamz/internal/tasks"
)

// homeLoadedMsg carries the loaded home page.
type homeLoadedMsg struct {
	page *tasks.HomePage
	err  error
}

// homeProgressMsg carries one loader update and the channel the next one arrives on.
type homeProgressMsg struct {
	update   tasks.ProgressUpdate
	progress <-chan tasks.ProgressUpdate
}

// contentLoadedMsg carries a content detail.
type contentLoadedMsg struct {
	content *models.Content
	err     error
}

// tickMsg advances the simulated media clock of the player that scheduled it.
type tickMsg struct {
	player *PlayerModel
	at     time.Time
}

// controlsMsg reports a controls visibility change from the inactivity timer.
type controlsMsg struct {
	visible bool
}

// playerClosedMsg is sent when the player view unmounts and control returns to the browser.
type playerClosedMsg struct {
	target models.Target
	state  player.State
}

// sessionMsg carries a session transition published by the manager.
type sessionMsg struct {
	snap session.Snapshot
}
