package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	plainBold  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
	plainCode  = lipgloss.NewStyle().Foreground(lipgloss.Color("#93c5fd")).Background(lipgloss.Color("#27272a"))
	plainBlock = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#3f3f46")).Padding(0, 1)
	plainLang  = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a")).Bold(true)
)

// Plain renders a reply from its segments without a markdown engine.
// It is the fallback when glamour cannot render.
func Plain(text string) string {
	var sb strings.Builder

	for _, seg := range ParseSegments(text) {
		switch seg.Kind {
		case SegmentBold:
			sb.WriteString(plainBold.Render(seg.Text))
		case SegmentInlineCode:
			sb.WriteString(plainCode.Render(seg.Text))
		case SegmentCodeBlock:
			header := plainLang.Render(strings.ToUpper(seg.Language))
			sb.WriteString("\n")
			sb.WriteString(plainBlock.Render(header + "\n" + seg.Text))
			sb.WriteString("\n")
		default:
			sb.WriteString(seg.Text)
		}
	}

	return sb.String()
}
