package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizeJSON recovers a JSON candidate from free-form model text.
//
// Text that already parses is returned as is. Otherwise a leading code fence
// is dropped and the span from the first '{' to the last '}' is tried. If that
// does not parse either, raw comes back unchanged and the
// caller's decode reports the failure.
func NormalizeJSON(raw string) string {
	if json.Valid([]byte(raw)) {
		return raw
	}

	text := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(text, "```json"):
		text = strings.TrimSpace(text[len("```json"):])
	case strings.HasPrefix(text, "```"):
		text = strings.TrimSpace(text[len("```"):])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}
	return raw
}

// DecodeJSON normalizes raw and unmarshals it into v.
func DecodeJSON(raw string, v any) error {
	cleaned := NormalizeJSON(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("invalid JSON from model: %w (raw: %s)", err, Truncate(raw, 500))
	}
	return nil
}

// Truncate shortens s to at most n runes for logs and error messages.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
