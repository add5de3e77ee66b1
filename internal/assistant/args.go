package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parsedArguments is the decoded form of a tool call's argument text.
type parsedArguments struct {
	cities []string
	raw    map[string]any
}

// parseToolArguments decodes a tool call's raw argument text. Models do
// not reliably honor the declared schema, so decoding is best-effort and
// total: any input, however malformed, yields a (possibly empty) city
// list and never an error.
//
// The chain, in order:
//  1. JSON-decode the whole payload; on failure, an empty mapping.
//  2. cities as a JSON array: used directly.
//  3. cities as a string: JSON-decode it (the model stringified the
//     list), then try a literal list like "['London', 'Paris']", then
//     fall back to treating the whole string as a single city name.
//  4. cities absent or null: empty list.
//  5. cities as any other bare value: wrapped as a single name unless
//     falsy.
func parseToolArguments(argumentsText string) parsedArguments {
	raw := map[string]any{}
	if err := json.Unmarshal([]byte(argumentsText), &raw); err != nil {
		raw = map[string]any{}
	}

	parsed := parsedArguments{raw: raw}

	switch v := raw["cities"].(type) {
	case []any:
		parsed.cities = stringValues(v)
	case string:
		parsed.cities = parseCitiesString(v)
	case nil:
		// absent or explicit null: empty
	default:
		// bare scalar (number, bool): wrap unless falsy
		if s := fmt.Sprint(v); s != "" && s != "false" && s != "0" {
			parsed.cities = []string{s}
		}
	}

	return parsed
}

// parseCitiesString recovers a city list from a string-typed cities value.
func parseCitiesString(s string) []string {
	var viaJSON []any
	if err := json.Unmarshal([]byte(s), &viaJSON); err == nil {
		return stringValues(viaJSON)
	}

	if cities, ok := parseLiteralList(s); ok {
		return cities
	}

	if s == "" {
		return nil
	}
	return []string{s}
}

// parseLiteralList parses a Python-style list literal such as
// "['London', 'Paris']" or a single quoted value like "'London'".
// Items may use single or double quotes; unquoted items are taken as-is.
func parseLiteralList(s string) ([]string, bool) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if inner == "" {
			return nil, true
		}
		items, ok := splitTopLevel(inner)
		if !ok {
			return nil, false
		}
		cities := make([]string, 0, len(items))
		for _, item := range items {
			item = unquoteLiteral(strings.TrimSpace(item))
			if item == "" {
				return nil, false
			}
			cities = append(cities, item)
		}
		return cities, true
	}

	// Single quoted literal: "'London'" or "\"London\""
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		value := s[1 : len(s)-1]
		if value == "" {
			return nil, true
		}
		return []string{value}, true
	}

	return nil, false
}

// splitTopLevel splits on commas that are not inside quotes. Returns
// false when a quote is left unterminated.
func splitTopLevel(s string) ([]string, bool) {
	var items []string
	var start int
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ',':
			items = append(items, s[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, false
	}
	return append(items, s[start:]), true
}

func unquoteLiteral(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// stringValues renders each list element as a string; non-string elements
// (the model occasionally emits numbers) are formatted rather than dropped.
func stringValues(values []any) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			out[i] = s
		} else {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}
