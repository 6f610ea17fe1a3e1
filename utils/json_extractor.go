package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSONFound is returned when no valid JSON object/array is found in the input
var ErrNoJSONFound = errors.New("no valid JSON object or array found in response")

var markdownFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")

// ExtractJSON pulls a JSON document out of a model response that may
// carry markdown fences, prose, or garbage around the payload.
//
// It handles common issues like:
// - Markdown code blocks (```json ... ```)
// - Garbage characters before/after valid JSON
// - Mixed content with valid JSON embedded
func ExtractJSON(response string) (string, error) {
	if response == "" {
		return "", ErrNoJSONFound
	}

	cleaned := extractFromMarkdown(response)

	// Bracket matching finds the first complete object or array even
	// when the model wrapped it in prose.
	if jsonStr := extractJSONByBrackets(cleaned); jsonStr != "" && json.Valid([]byte(jsonStr)) {
		return jsonStr, nil
	}

	if json.Valid([]byte(cleaned)) {
		return cleaned, nil
	}

	return "", fmt.Errorf("%w: response length=%d", ErrNoJSONFound, len(response))
}

// ExtractJSONTo extracts JSON from response and unmarshals it into the target
func ExtractJSONTo(response string, target interface{}) error {
	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(jsonStr), target)
}

// extractFromMarkdown removes markdown code block formatting
func extractFromMarkdown(s string) string {
	s = strings.TrimSpace(s)

	if m := markdownFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// extractJSONByBrackets uses bracket matching to find complete JSON
func extractJSONByBrackets(s string) string {
	startObj := strings.Index(s, "{")
	startArr := strings.Index(s, "[")

	var start int
	var openChar, closeChar byte

	switch {
	case startObj == -1 && startArr == -1:
		return ""
	case startObj == -1 || (startArr != -1 && startArr < startObj):
		start = startArr
		openChar, closeChar = '[', ']'
	default:
		start = startObj
		openChar, closeChar = '{', '}'
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
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
