package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Left     key.Binding
	Right    key.Binding
	Top      key.Binding
	Bottom   key.Binding

	Open            key.Binding
	Back            key.Binding
	ToggleChanges   key.Binding
	ToggleHighlight key.Binding
	Quit            key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", " ", "f"), key.WithHelp("pgdn", "page down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),

	Open:            key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:            key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	ToggleChanges:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "only changes")),
	ToggleHighlight: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "highlight")),
	Quit:            key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type shortcut struct {
	shortcut string
	label    string
}

type Shortcuts []shortcut

func NewShortcuts(bindings ...key.Binding) *Shortcuts {
	shortcuts := make(Shortcuts, 0, len(bindings))
	for _, b := range bindings {
		shortcuts.AddBinding(b)
	}
	return &shortcuts
}

func (s *Shortcuts) Add(sc, label string) *Shortcuts {
	*s = append(*s, shortcut{shortcut: sc, label: label})
	return s
}

// AddBinding adds the help of [b], unless it is disabled.
func (s *Shortcuts) AddBinding(b key.Binding) *Shortcuts {
	if !b.Enabled() {
		return s
	}
	h := b.Help()
	return s.Add(h.Key, h.Desc)
}

func (s *Shortcuts) AddIf(b bool, sc, label string) *Shortcuts {
	if b {
		s.Add(sc, label)
	}
	return s
}

func (s *Shortcuts) Render(theme Theme) string {
	var bob strings.Builder
	for i, sc := range *s {
		if i != 0 {
			bob.WriteString(theme.MutedTextStyle.Render(", "))
		}
		bob.WriteString(sc.shortcut)
		bob.WriteString(" ")
		bob.WriteString(theme.MutedTextStyle.Render(sc.label))
	}
	return bob.String()
}
