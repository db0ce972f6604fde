package logger

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"})
	summaryLabelStyle = lipgloss.NewStyle().
				Faint(true).
				Width(18)
	summaryValueStyle = lipgloss.NewStyle().Bold(true)
)

// SummaryField is one labelled line of an end-of-run summary
type SummaryField struct {
	Label string
	Value string
}

// RenderSummary formats fields as an aligned two-column block under title
func RenderSummary(title string, fields []SummaryField) string {
	var b strings.Builder
	b.WriteString(summaryTitleStyle.Render(title))
	for _, f := range fields {
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			summaryLabelStyle.Render(f.Label+":"),
			summaryValueStyle.Render(f.Value),
		))
	}
	return b.String()
}
