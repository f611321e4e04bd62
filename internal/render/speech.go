package render

import (
	"regexp"
	"strings"

	"github.com/diogo/sanai/internal/models"
)

var (
	speechCodeBlock = regexp.MustCompile("(?s)```.*?```")
	speechLink      = regexp.MustCompile(`\[.*?\]\(.*?\)`)
)

// CleanForSpeech strips markup that should not be read aloud: fenced code
// becomes a short placeholder, bold markers and markdown links are removed,
// and the result is capped at models.MaxSpeechRunes characters.
func CleanForSpeech(text string) string {
	clean := speechCodeBlock.ReplaceAllString(text, models.CodePlaceholder)
	clean = strings.ReplaceAll(clean, "**", "")
	clean = speechLink.ReplaceAllString(clean, "")

	if runes := []rune(clean); len(runes) > models.MaxSpeechRunes {
		clean = string(runes[:models.MaxSpeechRunes])
	}
	return clean
}
