package synthesis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeModelJSON unmarshals JSON from a model response. Models
// sometimes wrap the payload in a markdown code fence or surrounding
// prose; one recovery pass handles both before giving up with
// ErrMalformedResponse.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return fmt.Errorf("%w: empty output", ErrMalformedResponse)
	}

	// Fast path: valid JSON as-is.
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	if stripped := stripCodeFence(s); stripped != s {
		if err := json.Unmarshal([]byte(stripped), v); err == nil {
			return nil
		}
		s = stripped
	}

	// Last attempt: extract the first top-level JSON object.
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("%w: no JSON object found (len=%d)", ErrMalformedResponse, len(s))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// stripCodeFence removes a surrounding ```json ... ``` (or bare ```)
// fence. Text without a fence comes back unchanged.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(body, '\n'); nl != -1 {
		lang := strings.TrimSpace(body[:nl])
		if lang == "" || lang == "json" {
			body = body[nl+1:]
		}
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}
