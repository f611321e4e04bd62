package api

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/diogo/sanai/internal/models"
)

// Wire types for generateContent requests

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type generationConfig struct {
	Temperature        *float64      `json:"temperature,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

// ParseDataURI splits a data:<mime>;base64,<data> URI into its MIME type and payload
func ParseDataURI(uri string) (mimeType, data string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", fmt.Errorf("not a data URI")
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("data URI has no payload")
	}

	mimeType, encoding, _ := strings.Cut(header, ";")
	if encoding != "base64" {
		return "", "", fmt.Errorf("data URI is not base64 encoded")
	}
	if mimeType == "" {
		return "", "", fmt.Errorf("data URI has no MIME type")
	}

	return mimeType, payload, nil
}

// historyContents converts earlier messages to request turns; images are not resent
func historyContents(history []models.Message) []content {
	var out []content
	for _, msg := range history {
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		out = append(out, content{
			Role:  string(msg.Role),
			Parts: []part{{Text: msg.Text}},
		})
	}
	return out
}

// buildChatPayload creates the body of a chat generateContent request
func buildChatPayload(req GenerateRequest, systemInstruction string, temperature float64) ([]byte, error) {
	parts := []part{{Text: req.Prompt}}

	if req.ImageDataURI != "" {
		mimeType, data, err := ParseDataURI(req.ImageDataURI)
		if err != nil {
			return nil, fmt.Errorf("invalid image attachment: %w", err)
		}
		parts = append(parts, part{InlineData: &inlineData{MimeType: mimeType, Data: data}})
	}

	contents := historyContents(req.History)
	contents = append(contents, content{Role: string(models.RoleUser), Parts: parts})

	body := generateContentRequest{
		Contents:         contents,
		GenerationConfig: &generationConfig{Temperature: &temperature},
	}
	if systemInstruction != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: systemInstruction}}}
	}

	return sonic.Marshal(body)
}

// buildSpeechPayload creates the body of a text-to-speech request
func buildSpeechPayload(text, voice string) ([]byte, error) {
	body := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voice},
				},
			},
		},
	}

	return sonic.Marshal(body)
}
