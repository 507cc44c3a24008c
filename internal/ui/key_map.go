package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	enter  key.Binding
	back   key.Binding
	prev   key.Binding
	next   key.Binding
	up     key.Binding
	down   key.Binding
	chords key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev columns")),
		next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next columns")),
		up:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "transpose up")),
		down:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "transpose down")),
		chords: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "toggle chords")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.enter, k.back},
		{k.prev, k.next},
		{k.up, k.down, k.chords},
		{k.quit},
	}
}
