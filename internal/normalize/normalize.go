// Package normalize provides utilities for normalizing free-text input.
package normalize

import "strings"

// Tags parses a comma-separated tag string into canonical tokens:
// split on comma, trim whitespace, lowercase, drop empty tokens.
// Order and duplicates are preserved — deduplication is deliberately
// left to readers that want set semantics.
func Tags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, t := range parts {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
