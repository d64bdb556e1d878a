package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	search   key.Binding
	enter    key.Binding
	back     key.Binding
	toggle   key.Binding
	remove   key.Binding
	note     key.Binding
	save     key.Binding
	filter   key.Binding
	sort     key.Binding
	group    key.Binding
	theme    key.Binding
	open     key.Binding
	dismiss  key.Binding
	upcoming key.Binding
	auth     key.Binding
	yes      key.Binding
	no       key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		search:   key.NewBinding(key.WithKeys("/", "a"), key.WithHelp("/", "search")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		toggle:   key.NewBinding(key.WithKeys(" ", "w"), key.WithHelp("space", "watched")),
		remove:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		note:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "note")),
		save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		group:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "group")),
		theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open site")),
		dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		upcoming: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upcoming")),
		auth:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "sign in/out")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.toggle, k.note, k.remove, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.search, k.enter},
		{k.toggle, k.note, k.remove, k.open},
		{k.filter, k.sort, k.group, k.theme},
		{k.upcoming, k.auth, k.dismiss},
		{k.back, k.quit},
	}
}
