package cli

import (
	"context"

	"github.com/charmbracelet/lipgloss"
)

// Styles are derived from the user's theme colour.
type Styles struct {
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Badge     lipgloss.Style
}

func NewStyles(theme string) Styles {
	accent := lipgloss.Color(theme)
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(accent),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Badge:     lipgloss.NewStyle().Foreground(accent),
	}
}

func (a *App) style() Styles {
	return NewStyles(a.session.Theme(context.Background()))
}
