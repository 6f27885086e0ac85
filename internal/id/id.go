// Package id generates and validates opaque record identifiers.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// nanoidLen is the length of the random portion of an ID.
const nanoidLen = 21

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "com-V1StGXR8_Z5jdHi6B-myT").
//
// NanoIDs are URL-friendly and compact, and collision avoidance relies on
// token entropy rather than any shared counter or lock.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use only where failure should crash the program (e.g., initialization).
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Valid reports whether s is a well-formed ID for the given prefix.
// Malformed IDs are rejected before any store lookup.
func Valid(prefix, s string) bool {
	if len(s) != len(prefix)+1+nanoidLen {
		return false
	}
	if !strings.HasPrefix(s, prefix+"-") {
		return false
	}
	for _, r := range s[len(prefix)+1:] {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
