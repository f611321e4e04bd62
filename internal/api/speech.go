package api

import (
	"context"
	"fmt"
	"strings"
)

// SynthesizeSpeech asks the TTS model to read text aloud and returns the base64
// encoded PCM audio (signed 16-bit little-endian, 24 kHz mono).
func (c *Client) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text cannot be empty")
	}

	payload, err := buildSpeechPayload(text, c.voice)
	if err != nil {
		return "", fmt.Errorf("failed to build payload: %w", err)
	}

	log := c.log.WithField("model", c.ttsModel).WithField("voice", c.voice)

	body, err := c.post(ctx, "synthesize speech", c.modelEndpoint(c.ttsModel), payload)
	if err != nil {
		log.WithError(err).Warn("speech request failed")
		return "", err
	}

	audio, err := parseAudioResponse(body)
	if err != nil {
		log.WithError(err).Warn("speech response has no audio")
		return "", err
	}

	log.WithField("bytes", len(audio)).Debug("speech synthesized")
	return audio, nil
}
