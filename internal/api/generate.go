package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diogo/sanai/internal/models"
)

// GenerateRequest describes one chat turn
type GenerateRequest struct {
	Prompt       string
	ImageDataURI string           // optional data:<mime>;base64,<data> attachment
	History      []models.Message // earlier turns sent as context, oldest first
}

// GenerateContent sends a prompt (and optional image) to the chat model and returns
// the reply text. A reply without text returns "" and no error.
func (c *Client) GenerateContent(ctx context.Context, req GenerateRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	payload, err := buildChatPayload(req, c.systemInstruction, c.temperature)
	if err != nil {
		return "", fmt.Errorf("failed to build payload: %w", err)
	}

	endpoint := c.modelEndpoint(c.model)
	log := c.log.WithField("model", c.model)
	log.WithField("image", req.ImageDataURI != "").WithField("history", len(req.History)).Debug("generate content")

	start := time.Now()
	body, err := c.post(ctx, "generate content", endpoint, payload)
	if err != nil {
		log.WithError(err).Warn("generate content failed")
		return "", err
	}

	text, err := parseTextResponse(body)
	if err != nil {
		log.WithError(err).Warn("generate content: unusable response")
		return "", err
	}

	log.WithField("took", time.Since(start).Round(time.Millisecond)).WithField("chars", len(text)).Info("generate content done")
	return text, nil
}
