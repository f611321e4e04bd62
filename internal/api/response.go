package api

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/sanai/internal/errors"
)

// parseTextResponse extracts the concatenated text parts of the first candidate.
// Thought parts are skipped. A well-formed response without text yields "".
func parseTextResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)

	if reason := parsed.Get(PathBlockReason); reason.Exists() {
		return "", apierrors.NewBlockedError(reason.String())
	}

	var sb strings.Builder
	parsed.Get(PathCandidateParts).ForEach(func(_, p gjson.Result) bool {
		if p.Get(PathPartThought).Bool() {
			return true
		}
		if text := p.Get(PathPartText); text.Exists() {
			sb.WriteString(text.String())
		}
		return true
	})

	return sb.String(), nil
}

// parseAudioResponse extracts the base64 audio payload of the first candidate
func parseAudioResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)

	if reason := parsed.Get(PathBlockReason); reason.Exists() {
		return "", apierrors.NewBlockedError(reason.String())
	}

	var audio string
	parsed.Get(PathCandidateParts).ForEach(func(_, p gjson.Result) bool {
		if data := p.Get(PathPartAudio); data.Exists() && data.String() != "" {
			audio = data.String()
			return false
		}
		return true
	})

	if audio == "" {
		return "", apierrors.ErrNoContent
	}
	return audio, nil
}

// parseErrorBody converts a non-200 response to an APIError
func parseErrorBody(status int, endpoint string, body []byte) error {
	apiErr := apierrors.NewAPIError(status, endpoint, http.StatusText(status))

	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if msg := parsed.Get(PathErrorMessage); msg.Exists() && msg.String() != "" {
			apiErr.Message = msg.String()
		}
		apiErr.Status = parsed.Get(PathErrorStatus).String()
	} else if text := strings.TrimSpace(string(body)); text != "" {
		apiErr.Message = text
	}

	return apiErr
}
