// Package chat holds the conversation state and turns user input into
// chat or image requests.
package chat

import (
	"regexp"
	"strings"

	"github.com/diogo/sanai/internal/models"
)

// Intent is the kind of remote work a submission needs
type Intent int

const (
	IntentChat Intent = iota
	IntentImage
)

func (i Intent) String() string {
	if i == IntentImage {
		return "image"
	}
	return "chat"
}

// Classify decides whether input asks for a generated image.
// Inputs with an attachment always go to the chat model.
func Classify(input string, hasAttachment bool) Intent {
	if hasAttachment {
		return IntentChat
	}

	lower := strings.ToLower(input)
	for _, trigger := range models.ImageTriggers {
		if strings.Contains(lower, trigger) {
			return IntentImage
		}
	}
	return IntentChat
}

var imageCommand = regexp.MustCompile(`(?i)/(img|foto|gambar)`)

// ImagePrompt strips the image commands from input.
// Nothing left means the default prompt.
func ImagePrompt(input string) string {
	prompt := strings.TrimSpace(imageCommand.ReplaceAllString(input, ""))
	if prompt == "" {
		return models.DefaultImagePrompt
	}
	return prompt
}
