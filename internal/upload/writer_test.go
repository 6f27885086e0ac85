package upload

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "media/uploads")
	require.NoError(t, err)

	data := []byte("fake image bytes")
	meta, err := w.Write("Page 1.PNG", data)
	require.NoError(t, err)

	assert.Equal(t, "Page 1.PNG", meta.OriginalFilename)
	assert.True(t, strings.HasSuffix(meta.StoredFilename, ".png"), "extension is lowercased: %q", meta.StoredFilename)
	assert.Len(t, meta.StoredFilename, 32+len(".png"))
	assert.Equal(t, "/media/uploads/"+meta.StoredFilename, meta.URL)
	assert.Equal(t, int64(len(data)), meta.Size)

	onDisk, err := os.ReadFile(filepath.Join(dir, meta.StoredFilename))
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	assert.Equal(t, filepath.Join(dir, meta.StoredFilename), w.Path(meta.StoredFilename))
}

func TestWriterWrite_UniqueNames(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "media/uploads")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for range 50 {
		meta, err := w.Write("same.png", []byte("x"))
		require.NoError(t, err)
		assert.False(t, seen[meta.StoredFilename], "stored names must never collide")
		seen[meta.StoredFilename] = true
	}
}

func TestWriterWrite_ConcurrentWriters(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "media/uploads")
	require.NoError(t, err)

	const writers = 16
	names := make([]string, writers)
	var wg sync.WaitGroup
	for i := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			meta, werr := w.Write("page.png", []byte("concurrent"))
			if werr != nil {
				t.Errorf("Write: %v", werr)
				return
			}
			names[i] = meta.StoredFilename
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, writers)
	for _, n := range names {
		assert.False(t, seen[n])
		seen[n] = true
	}
}

func TestNewWriter_EmptyRoot(t *testing.T) {
	_, err := NewWriter("", "media/uploads")
	assert.Error(t, err)
}
