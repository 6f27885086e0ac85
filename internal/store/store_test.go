package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/panelverse/panelverse-server/internal/domain"
)

// setupTestStore opens a store backed by a temp directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// makeTestComic builds a comic with one page file and sensible defaults.
func makeTestComic(title, authorID string, tags ...string) *domain.Comic {
	if tags == nil {
		tags = []string{}
	}
	files := []domain.FileMeta{{
		OriginalFilename: "page1.png",
		StoredFilename:   "abc123.png",
		URL:              "/media/uploads/abc123.png",
		Size:             1024,
	}}
	return &domain.Comic{
		Title:       title,
		Description: "",
		Tags:        tags,
		Files:       files,
		FileCount:   len(files),
		AuthorID:    authorID,
		UploadedBy:  "author@example.com",
		UploadDate:  time.Now().UTC(),
		CoverURL:    files[0].URL,
	}
}

// mustCreateComic creates the comic and fails the test on error.
func mustCreateComic(t *testing.T, s *Store, c *domain.Comic) *domain.Comic {
	t.Helper()
	require.NoError(t, s.CreateComic(context.Background(), c))
	return c
}
