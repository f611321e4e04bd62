package render

import "github.com/charmbracelet/lipgloss"

// Palette is the colour set of the chat screen
type Palette struct {
	Name string

	Background lipgloss.Color
	Surface    lipgloss.Color // model bubbles, code chips
	Border     lipgloss.Color

	Accent     lipgloss.Color // user bubbles, send hints
	AccentSoft lipgloss.Color // inline code, links
	Success    lipgloss.Color // attachment ready, copied
	Error      lipgloss.Color // speaking indicator, errors

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

// DefaultPalette is the zinc and blue scheme of the San AI web client.
var DefaultPalette = Palette{
	Name:       "zinc",
	Background: lipgloss.Color("#0b0b0d"),
	Surface:    lipgloss.Color("#18181b"),
	Border:     lipgloss.Color("#27272a"),
	Accent:     lipgloss.Color("#2563eb"),
	AccentSoft: lipgloss.Color("#93c5fd"),
	Success:    lipgloss.Color("#22c55e"),
	Error:      lipgloss.Color("#ef4444"),
	Text:       lipgloss.Color("#f1f5f9"),
	TextDim:    lipgloss.Color("#71717a"),
}

var palettes = []Palette{
	DefaultPalette,
	{
		Name:       "tokyonight",
		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),
		Accent:     lipgloss.Color("#7aa2f7"),
		AccentSoft: lipgloss.Color("#bb9af7"),
		Success:    lipgloss.Color("#9ece6a"),
		Error:      lipgloss.Color("#f7768e"),
		Text:       lipgloss.Color("#c0caf5"),
		TextDim:    lipgloss.Color("#565f89"),
	},
	{
		Name:       "catppuccin",
		Background: lipgloss.Color("#1e1e2e"),
		Surface:    lipgloss.Color("#313244"),
		Border:     lipgloss.Color("#45475a"),
		Accent:     lipgloss.Color("#89b4fa"),
		AccentSoft: lipgloss.Color("#cba6f7"),
		Success:    lipgloss.Color("#a6e3a1"),
		Error:      lipgloss.Color("#f38ba8"),
		Text:       lipgloss.Color("#cdd6f4"),
		TextDim:    lipgloss.Color("#6c7086"),
	},
	{
		Name:       "dracula",
		Background: lipgloss.Color("#282a36"),
		Surface:    lipgloss.Color("#44475a"),
		Border:     lipgloss.Color("#6272a4"),
		Accent:     lipgloss.Color("#bd93f9"),
		AccentSoft: lipgloss.Color("#8be9fd"),
		Success:    lipgloss.Color("#50fa7b"),
		Error:      lipgloss.Color("#ff5555"),
		Text:       lipgloss.Color("#f8f8f2"),
		TextDim:    lipgloss.Color("#6272a4"),
	},
}

// PaletteByName looks up a palette. Unknown names return DefaultPalette and false.
func PaletteByName(name string) (Palette, bool) {
	for _, p := range palettes {
		if p.Name == name {
			return p, true
		}
	}
	return DefaultPalette, false
}

// PaletteNames lists the selectable palettes
func PaletteNames() []string {
	names := make([]string, len(palettes))
	for i, p := range palettes {
		names[i] = p.Name
	}
	return names
}
