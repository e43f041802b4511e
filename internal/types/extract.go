package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// STRUCTURED OUTPUT EXTRACTION UTILITIES
// =============================================================================
//
// Collaborators backed by an LLM return JSON, but models occasionally wrap
// the payload in markdown fences or lead with prose. These helpers recover
// the JSON object so boundary validation can run on structured data instead
// of raw text.

// ExtractJSON returns the first JSON object or array embedded in s, stripping
// ```json fences and surrounding prose.
func ExtractJSON(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty response")
	}

	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return "", fmt.Errorf("no JSON payload in response")
	}
	open := s[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON payload in response")
}

// DecodeJSON extracts the JSON payload from s and unmarshals it into v.
func DecodeJSON(s string, v any) error {
	payload, err := ExtractJSON(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("decode structured output: %w", err)
	}
	return nil
}
