package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Increment key.Binding
	Decrement key.Binding
	Reset     key.Binding
	Toggle    key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Increment: key.NewBinding(
			key.WithKeys("+", "k", "up"),
			key.WithHelp("+/k", "increment"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-", "j", "down"),
			key.WithHelp("-/j", "decrement"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset count"),
			key.WithDisabled(),
		),
		Toggle: key.NewBinding(
			key.WithKeys("a", " "),
			key.WithHelp("a/space", "auto increment"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap. Disabled bindings are skipped by the
// help renderer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Increment, k.Decrement, k.Toggle, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Increment, k.Decrement},
		{k.Toggle, k.Reset},
		{k.Quit},
	}
}
