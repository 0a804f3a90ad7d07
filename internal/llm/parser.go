package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
)

// stripCodeFences removes a surrounding ```json fence if the model added one.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// toRawJSON validates that text is a JSON document and returns it.
func toRawJSON(text string) (json.RawMessage, error) {
	cleaned := stripCodeFences(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", common.ErrMalformedResponse)
	}
	if !json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("%w: not valid JSON: %.80q", common.ErrMalformedResponse, cleaned)
	}
	return json.RawMessage(cleaned), nil
}

// decodeStructured unmarshals raw into out, mapping failures to ErrMalformedResponse.
func decodeStructured(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	return nil
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
