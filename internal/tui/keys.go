package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the prompt.
type KeyMap struct {
	Submit key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// InputHelpText returns help text for input fields.
func (k KeyMap) InputHelpText() string {
	return k.Submit.Help().Key + " " + k.Submit.Help().Desc + " • " + k.Quit.Help().Key + " " + k.Quit.Help().Desc
}
