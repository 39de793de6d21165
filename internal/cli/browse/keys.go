package browse

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the browser
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	TabSprites key.Binding
	TabPacks   key.Binding
	TabTrash   key.Binding
	NextTab    key.Binding

	Search      key.Binding // Focus the search input.
	SearchLeave key.Binding // Return to the list, keeping the keyword.
	Category    key.Binding // Cycle the category filter.
	Sort        key.Binding // Cycle newest / cheapest / priciest.
	Reset       key.Binding // Clear keyword, category and sort.

	Restore key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("n", "right"),
		key.WithHelp("n", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("p", "left"),
		key.WithHelp("p", "prev page"),
	),
	TabSprites: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "sprites"),
	),
	TabPacks: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "packs"),
	),
	TabTrash: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "trash"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next tab"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	SearchLeave: key.NewBinding(
		key.WithKeys("esc", "enter"),
		key.WithHelp("esc", "done"),
	),
	Category: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "category"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort"),
	),
	Reset: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear filters"),
	),
	Restore: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restore"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
