package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of every screen.
type KeyMap struct {
	Quit       key.Binding
	Submit     key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	SwitchForm key.Binding
	Up         key.Binding
	Down       key.Binding
	Edit       key.Binding
	SwitchEdit key.Binding
	Cancel     key.Binding
	Delete     key.Binding
	Confirm    key.Binding
	SignOut    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		SwitchForm: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "login/register"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit"),
		),
		SwitchEdit: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "edit row under cursor"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "sign out"),
		),
	}
}

// authHelp is the help line of the login and register screens.
type authHelp struct{ k KeyMap }

func (h authHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.NextField, h.k.Submit, h.k.SwitchForm, h.k.Quit}
}

func (h authHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }

// todoHelp is the help line of the task list, which depends on focus.
type todoHelp struct {
	k       KeyMap
	list    bool
	editing bool
}

func (h todoHelp) ShortHelp() []key.Binding {
	switch {
	case h.editing:
		return []key.Binding{h.k.Submit, h.k.Cancel, h.k.NextField, h.k.SwitchEdit, h.k.SignOut}
	case h.list:
		return []key.Binding{h.k.Up, h.k.Down, h.k.Edit, h.k.Delete, h.k.NextField, h.k.SignOut}
	default:
		return []key.Binding{h.k.NextField, h.k.Submit, h.k.SignOut, h.k.Quit}
	}
}

func (h todoHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }
