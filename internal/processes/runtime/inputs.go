// Package runtime holds the small helpers shared by the built-in catalog
// processes: input coercion and result-field plucking around the untyped
// JSON maps the host hands back.
package runtime

import (
	"fmt"
	"strings"
)

// StringInput fetches a required string input, trimmed.
func StringInput(processID string, inputs map[string]any, key string) (string, error) {
	raw, ok := inputs[key]
	if !ok {
		return "", fmt.Errorf("%s: input %q is required", processID, key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s: input %q must be a string, got %T", processID, key, raw)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s: input %q is empty", processID, key)
	}
	return value, nil
}

// OptionalString fetches an optional string input, empty when absent.
func OptionalString(inputs map[string]any, key string) string {
	if value, ok := inputs[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// List plucks an array field from a task result. Absent fields come back as
// an empty list so callers can length-check without nil guards.
func List(result map[string]any, key string) []any {
	if items, ok := result[key].([]any); ok {
		return items
	}
	return nil
}

// IntOption reads an integer option from process configuration, falling back
// when the key is absent or malformed. JSON-decoded configs deliver numbers
// as float64.
func IntOption(cfg map[string]any, key string, fallback int) int {
	switch value := cfg[key].(type) {
	case int:
		if value > 0 {
			return value
		}
	case float64:
		if value > 0 {
			return int(value)
		}
	}
	return fallback
}
