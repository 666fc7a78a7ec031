package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the browse views.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	play    key.Binding
	back    key.Binding
	refresh key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		play:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.play, k.back, k.refresh},
		{k.quit},
	}
}

// playerKeyMap defines the player view bindings.
type playerKeyMap struct {
	toggle  key.Binding
	mute    key.Binding
	back5   key.Binding
	fwd5    key.Binding
	volUp   key.Binding
	volDown key.Binding
	jump    key.Binding
	back    key.Binding
	quit    key.Binding
}

func newPlayerKeyMap() playerKeyMap {
	return playerKeyMap{
		toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		mute:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		back5:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "-5%")),
		fwd5:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "+5%")),
		volUp:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "vol+")),
		volDown: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "vol-")),
		jump:    key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "jump")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k playerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.mute, k.back5, k.fwd5, k.volUp, k.volDown, k.jump, k.back, k.quit}
}

func (k playerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.mute, k.jump},
		{k.back5, k.fwd5, k.volUp, k.volDown},
		{k.back, k.quit},
	}
}
