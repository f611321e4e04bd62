// Package tui provides the terminal chat screen for sanai.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/sanai/internal/errors"
	"github.com/diogo/sanai/internal/render"
)

// Color variables (set from the active palette)
var (
	colorSurface    lipgloss.Color
	colorBorder     lipgloss.Color
	colorAccent     lipgloss.Color
	colorAccentSoft lipgloss.Color
	colorSuccess    lipgloss.Color
	colorError      lipgloss.Color
	colorText       lipgloss.Color
	colorTextDim    lipgloss.Color
)

// Style variables (rebuilt by ApplyPalette)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle lipgloss.Style

	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	timestampStyle       lipgloss.Style

	imageLinkStyle   lipgloss.Style
	imageInlineStyle lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	chipStyle       lipgloss.Style

	loadingStyle lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style
	noticeStyle     lipgloss.Style
	copiedStyle     lipgloss.Style

	speakingStyle lipgloss.Style
	ttsOnStyle    lipgloss.Style
	ttsOffStyle   lipgloss.Style

	errorStyle lipgloss.Style

	welcomeStyle      lipgloss.Style
	welcomeTitleStyle lipgloss.Style
	welcomeIconStyle  lipgloss.Style
)

// Gradient colors for the typing animation (fixed colors)
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#2563eb"),
	lipgloss.Color("#3b82f6"),
	lipgloss.Color("#60a5fa"),
	lipgloss.Color("#93c5fd"),
	lipgloss.Color("#a855f7"),
	lipgloss.Color("#c084fc"),
	lipgloss.Color("#22d3ee"),
	lipgloss.Color("#67e8f9"),
}

func init() {
	ApplyPalette(render.DefaultPalette)
}

// ApplyPalette rebuilds every style from p
func ApplyPalette(p render.Palette) {
	colorSurface = p.Surface
	colorBorder = p.Border
	colorAccent = p.Accent
	colorAccentSoft = p.AccentSoft
	colorSuccess = p.Success
	colorError = p.Error
	colorText = p.Text
	colorTextDim = p.TextDim

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2).
		MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1)

	// User bubbles sit on the right, model bubbles on the left.
	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Foreground(colorText).
		Padding(0, 1).
		MarginLeft(4)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true).
		MarginLeft(4)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Background(colorSurface).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(4)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorAccentSoft).
		Bold(true)

	timestampStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	imageLinkStyle = lipgloss.NewStyle().
		Foreground(colorAccentSoft).
		Underline(true)

	imageInlineStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		MarginTop(1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true).
		MarginRight(1)

	chipStyle = lipgloss.NewStyle().
		Foreground(colorSuccess).
		Bold(true)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAccentSoft).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		MarginTop(1)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	noticeStyle = lipgloss.NewStyle().
		Foreground(colorAccentSoft)

	copiedStyle = lipgloss.NewStyle().
		Foreground(colorSuccess).
		Bold(true)

	speakingStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	ttsOnStyle = lipgloss.NewStyle().
		Foreground(colorAccentSoft)

	ttsOffStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	welcomeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Align(lipgloss.Center)

	welcomeTitleStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true).
		MarginBottom(1).
		Align(lipgloss.Center)

	welcomeIconStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Align(lipgloss.Center)
}

// errorHint suggests what to do about err, or returns ""
func errorHint(err error) string {
	switch {
	case errors.IsAuthError(err):
		return "Set a valid key with 'sanai config set api_key <key>' or GEMINI_API_KEY"
	case errors.IsRateLimitError(err):
		return "Usage limit reached. Try again later"
	case errors.IsBlockedError(err):
		return "The prompt was blocked. Rephrase it and try again"
	case errors.IsTimeoutError(err):
		return "Request timed out. Try again or check your connection"
	case errors.IsNetworkError(err):
		return "Check your internet connection and try again"
	}
	return ""
}

// FormatError returns a styled error message with additional context
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if hint := errorHint(err); hint != "" {
		sb.WriteString(dimStyle.Render("\n  Hint: " + hint))
	}

	return sb.String()
}

// PrintError prints a styled error message to stderr
func PrintError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, FormatError(err))
}
