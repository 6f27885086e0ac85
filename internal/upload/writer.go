package upload

import (
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/panelverse/panelverse-server/internal/domain"
)

// Writer persists validated upload bytes under a root directory and hands
// back FileMeta with the derived public URL. Stored names are entropy-based
// (uuid4 hex + original extension), so unlimited concurrent writers need no
// coordination to avoid collisions.
type Writer struct {
	root       string
	publicPath string
}

// NewWriter creates a Writer rooted at dir. publicPath is the URL prefix the
// stored files are served back under by the external static-file layer.
func NewWriter(dir, publicPath string) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload root cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Writer{
		root:       dir,
		publicPath: "/" + strings.Trim(publicPath, "/"),
	}, nil
}

// Write stores data under a fresh unique name and returns its metadata.
// The file is fully written before the returned FileMeta can be referenced
// by any catalog record.
func (w *Writer) Write(originalFilename string, data []byte) (domain.FileMeta, error) {
	stored := w.storedName(originalFilename)

	if err := os.WriteFile(filepath.Join(w.root, stored), data, 0o644); err != nil {
		return domain.FileMeta{}, fmt.Errorf("failed to write upload: %w", err)
	}

	return domain.FileMeta{
		OriginalFilename: originalFilename,
		StoredFilename:   stored,
		URL:              w.URL(stored),
		Size:             int64(len(data)),
	}, nil
}

// Path returns the filesystem path of a stored file.
func (w *Writer) Path(storedFilename string) string {
	return filepath.Join(w.root, storedFilename)
}

// URL returns the public URL a stored file is served under.
func (w *Writer) URL(storedFilename string) string {
	return path.Join(w.publicPath, storedFilename)
}

// storedName generates the unique on-disk name: 32 hex chars of uuid4
// entropy plus the lowercased original extension.
func (w *Writer) storedName(originalFilename string) string {
	u := uuid.New()
	return hex.EncodeToString(u[:]) + strings.ToLower(filepath.Ext(originalFilename))
}
