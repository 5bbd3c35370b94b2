package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keys handled above the screens.
type KeyMap struct {
	Quit           key.Binding
	QuitList       key.Binding
	CommandPalette key.Binding
	Help           key.Binding
	Back           key.Binding
	Logout         key.Binding
	Jump           key.Binding
	PageSize       key.Binding
}

// DefaultKeyMap returns the default keybinding configuration.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		QuitList: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit from the list"),
		),
		CommandPalette: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "log out"),
		),
		Jump: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "jump to row"),
		),
		PageSize: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "rows per page"),
		),
	}
}
