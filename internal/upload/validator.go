// Package upload provides upload policy validation and durable file storage
// for comic page batches.
package upload

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/panelverse/panelverse-server/internal/store"
)

// Validation errors.
var (
	ErrUnsupportedFileType = &store.Error{
		Code:    http.StatusBadRequest,
		Message: "file type not allowed",
	}

	ErrFileTooLarge = &store.Error{
		Code:    http.StatusRequestEntityTooLarge,
		Message: "file size exceeds maximum limit",
	}
)

// Policy holds the per-file upload rules. Checks are pure: no I/O, no
// ordering dependency between the files of a batch.
type Policy struct {
	allowed map[string]bool
	maxSize int64
}

// NewPolicy builds a policy from an extension allow-set (".png" style,
// any case) and a maximum file size in bytes.
func NewPolicy(extensions []string, maxSize int64) Policy {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}
	return Policy{allowed: allowed, maxSize: maxSize}
}

// Validate checks one file against the policy. The extension comparison is
// case-insensitive.
func (p Policy) Validate(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !p.allowed[ext] {
		return ErrUnsupportedFileType.WithMessage(fmt.Sprintf("file type %q not allowed", ext))
	}
	if size > p.maxSize {
		return ErrFileTooLarge
	}
	return nil
}

// MaxSize returns the configured per-file byte limit.
func (p Policy) MaxSize() int64 { return p.maxSize }
