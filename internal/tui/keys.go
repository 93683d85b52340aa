package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding of the browser. Grid and modal bindings may
// share keys since only one set is active at a time.
type KeyMap struct {
	// grid
	Up          key.Binding
	Down        key.Binding
	PrevPage    key.Binding
	NextPage    key.Binding
	NextMode    key.Binding
	Filter      key.Binding
	Select      key.Binding
	GroupSelect key.Binding
	SelectAll   key.Binding
	Delete      key.Binding
	Open        key.Binding
	Refresh     key.Binding
	Bigger      key.Binding
	Smaller     key.Binding

	// modal
	Prev       key.Binding
	Next       key.Binding
	Like       key.Binding
	AddTags    key.Binding
	RemoveTag  key.Binding
	Public     key.Binding
	Link       key.Binding
	ShareUser  key.Binding
	CloseModal key.Binding

	// shared
	Back key.Binding
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevPage:    key.NewBinding(key.WithKeys("left", "h", "["), key.WithHelp("←/h", "prev page")),
		NextPage:    key.NewBinding(key.WithKeys("right", "l", "]"), key.WithHelp("→/l", "next page")),
		NextMode:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "mode")),
		Filter:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Select:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		GroupSelect: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "group select")),
		SelectAll:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Bigger:      key.NewBinding(key.WithKeys("+"), key.WithHelp("+/-", "page size")),
		Smaller:     key.NewBinding(key.WithKeys("-")),

		Prev:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		Next:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Like:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "like")),
		AddTags:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "add tags")),
		RemoveTag:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove tag")),
		Public:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "public")),
		Link:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "link")),
		ShareUser:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "share with")),
		CloseModal: key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "close")),

		Back: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// gridHelp implements help.KeyMap for the gallery grid.
type gridHelp struct{ k KeyMap }

func (h gridHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Open, h.k.PrevPage, h.k.NextPage, h.k.NextMode, h.k.Filter, h.k.Help, h.k.Quit}
}

func (h gridHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Up, h.k.Down, h.k.PrevPage, h.k.NextPage},
		{h.k.NextMode, h.k.Filter, h.k.Refresh, h.k.Bigger},
		{h.k.GroupSelect, h.k.Select, h.k.SelectAll, h.k.Delete, h.k.Back},
		{h.k.Open, h.k.Help, h.k.Quit},
	}
}

// modalHelp implements help.KeyMap for the image viewer.
type modalHelp struct{ k KeyMap }

func (h modalHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Prev, h.k.Next, h.k.Like, h.k.AddTags, h.k.CloseModal, h.k.Help}
}

func (h modalHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Prev, h.k.Next, h.k.Like},
		{h.k.AddTags, h.k.RemoveTag},
		{h.k.Public, h.k.Link, h.k.ShareUser},
		{h.k.CloseModal, h.k.Help},
	}
}
