package ux

import (
	"github.com/charmbracelet/lipgloss"
)

// Semantic colors used on the console.
var (
	Accent  = lipgloss.Color("#8BC34A") // Lime Green
	Muted   = lipgloss.Color("#6b7280")
	Danger  = lipgloss.Color("#e53935")
	Caution = lipgloss.Color("#FFC107")
	Info    = lipgloss.Color("#2196F3")
)

// styles are bound to the renderer of the console's writer, so output to a
// pipe or buffer carries no escape sequences.
type styles struct {
	title    lipgloss.Style
	rule     lipgloss.Style
	thinking lipgloss.Style
	action   lipgloss.Style
	warning  lipgloss.Style
	failure  lipgloss.Style
	prompt   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(Accent),
		rule:     r.NewStyle().Foreground(Muted),
		thinking: r.NewStyle().Foreground(Muted).Italic(true),
		action:   r.NewStyle().Bold(true).Foreground(Info),
		warning:  r.NewStyle().Foreground(Caution),
		failure:  r.NewStyle().Foreground(Danger),
		prompt:   r.NewStyle().Bold(true),
	}
}
