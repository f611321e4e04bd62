package render

import (
	"os"

	"github.com/charmbracelet/glamour/styles"
)

// Glamour style names accepted in markdown.style
const (
	StyleAuto  = styles.AutoStyle
	StyleDark  = styles.DarkStyle
	StyleLight = styles.LightStyle
	StyleNoTTY = styles.NoTTYStyle
)

// IsBuiltinStyle reports whether style names one of glamour's bundled styles.
func IsBuiltinStyle(style string) bool {
	if style == StyleAuto {
		return true
	}
	_, ok := styles.DefaultStyles[style]
	return ok
}

// resolveStyle returns the style to hand to glamour. Unknown names that are
// not readable files fall back to the dark style so a typo never breaks output.
func resolveStyle(style string) string {
	if style == "" {
		return StyleDark
	}
	if IsBuiltinStyle(style) {
		return style
	}
	if _, err := os.Stat(style); err == nil {
		return style
	}
	return StyleDark
}
