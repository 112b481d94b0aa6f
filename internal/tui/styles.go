package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/marcin-skalski/pr-status/internal/signal"
	"github.com/marcin-skalski/pr-status/internal/status"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			PaddingLeft(1).
			PaddingRight(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginTop(1)

	prStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Underline(true)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

func statusIcon(s status.Status) string {
	switch s {
	case status.Ready:
		return "✅"
	case status.Error:
		return "🔨"
	case status.Pending:
		return "⚙️"
	case status.NeedsReview:
		return "📋"
	case status.NeedsWork:
		return "🔧"
	default:
		return "❓"
	}
}

// effectGlyph hints at the animation a terminal cannot play.
func effectGlyph(e signal.Effect) string {
	switch e {
	case signal.Breathe:
		return "◐"
	case signal.Blink:
		return "✸"
	default:
		return "■"
	}
}

func keyStyle(p signal.Point) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color(p.Color)).
		Padding(0, 1)
}

func statusStyle(s status.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(signal.PointFor(s).Color))
}
