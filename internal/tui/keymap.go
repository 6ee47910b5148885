package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap groups the bindings active in table view. Other views (filter edit,
// confirm, picker) read raw key.Msg directly since they capture freeform text.
type keyMap struct {
	Picker     key.Binding
	Details    key.Binding
	Back       key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	Refresh    key.Binding
	Filter     key.Binding
	Help       key.Binding
	Start      key.Binding
	Stop       key.Binding
	Terminate  key.Binding
	Quit       key.Binding
	RegionKeys [6]key.Binding
}

var defaultKeyMap = keyMap{
	Picker:    key.NewBinding(key.WithKeys(":")),
	Details:   key.NewBinding(key.WithKeys("enter", "d")),
	Back:      key.NewBinding(key.WithKeys("esc")),
	NextPage:  key.NewBinding(key.WithKeys("]")),
	PrevPage:  key.NewBinding(key.WithKeys("[")),
	Refresh:   key.NewBinding(key.WithKeys("r")),
	Filter:    key.NewBinding(key.WithKeys("/")),
	Help:      key.NewBinding(key.WithKeys("?")),
	Start:     key.NewBinding(key.WithKeys("s")),
	Stop:      key.NewBinding(key.WithKeys("S")),
	Terminate: key.NewBinding(key.WithKeys("T")),
	Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q")),
	RegionKeys: [6]key.Binding{
		key.NewBinding(key.WithKeys("0")),
		key.NewBinding(key.WithKeys("1")),
		key.NewBinding(key.WithKeys("2")),
		key.NewBinding(key.WithKeys("3")),
		key.NewBinding(key.WithKeys("4")),
		key.NewBinding(key.WithKeys("5")),
	},
}
