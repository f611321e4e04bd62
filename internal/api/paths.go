// Package api provides the HTTP clients for the remote Gemini, speech and image services.
package api

// GJSON paths for extracting values from generateContent responses.
const (
	PathCandidateParts = "candidates.0.content.parts"
	PathFinishReason   = "candidates.0.finishReason"
	PathBlockReason    = "promptFeedback.blockReason"

	// Relative to a part
	PathPartText    = "text"
	PathPartThought = "thought"
	PathPartAudio   = "inlineData.data"
	PathPartMime    = "inlineData.mimeType"

	// Error envelope
	PathErrorMessage = "error.message"
	PathErrorStatus  = "error.status"
)
