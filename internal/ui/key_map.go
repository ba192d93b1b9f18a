package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	enter      key.Binding
	back       key.Binding
	nextTab    key.Binding
	prevTab    key.Binding
	search     key.Binding
	refresh    key.Binding
	clearError key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		back:       key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		nextTab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next row")),
		prevTab:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous row")),
		search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		clearError: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss error")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.nextTab, k.prevTab, k.search},
		{k.back, k.refresh, k.clearError, k.quit},
	}
}
