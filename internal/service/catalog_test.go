package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelverse/panelverse-server/internal/auth"
	"github.com/panelverse/panelverse-server/internal/id"
	"github.com/panelverse/panelverse-server/internal/media/thumbs"
	"github.com/panelverse/panelverse-server/internal/store"
	"github.com/panelverse/panelverse-server/internal/upload"
)

var (
	alice = auth.Identity{ID: "usr-alice", Label: "Alice"}
	bob   = auth.Identity{ID: "usr-bob", Label: "Bob"}
)

// captureQueue records enqueued jobs instead of deriving anything.
type captureQueue struct {
	jobs []thumbs.Job
}

func (q *captureQueue) Enqueue(job thumbs.Job) bool {
	q.jobs = append(q.jobs, job)
	return true
}

type catalogFixture struct {
	catalog   *Catalog
	store     *store.Store
	queue     *captureQueue
	uploadDir string
}

func setupCatalog(t *testing.T) *catalogFixture {
	t.Helper()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.New(t.TempDir(), discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	uploadDir := t.TempDir()
	writer, err := upload.NewWriter(uploadDir, "media/uploads")
	require.NoError(t, err)

	policy := upload.NewPolicy([]string{".jpg", ".jpeg", ".png", ".gif", ".pdf", ".cbz"}, 1024*1024)
	queue := &captureQueue{}

	return &catalogFixture{
		catalog:   NewCatalog(s, policy, writer, queue, discard),
		store:     s,
		queue:     queue,
		uploadDir: uploadDir,
	}
}

func pngFile(name string) UploadFile {
	return UploadFile{Filename: name, Data: []byte("png bytes")}
}

func uploadedFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestUpload(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	comic, err := f.catalog.Upload(ctx, alice, UploadInput{
		Title:       "Space Saga",
		Description: "a space opera",
		Tags:        "Sci-Fi, ACTION , sci-fi",
		Files:       []UploadFile{pngFile("page1.png"), {Filename: "book.pdf", Data: []byte("pdf")}},
	})
	require.NoError(t, err)

	assert.True(t, id.Valid("com", comic.ID))
	assert.Equal(t, 2, comic.FileCount)
	assert.Len(t, comic.Files, 2)
	assert.Equal(t, []string{"sci-fi", "action", "sci-fi"}, comic.Tags, "tags normalize but keep order and duplicates")
	assert.Equal(t, comic.Files[0].URL, comic.CoverURL, "cover comes from the first file")
	assert.False(t, comic.Published, "uploads start unpublished")
	assert.Equal(t, "usr-alice", comic.AuthorID)
	assert.Equal(t, "Alice", comic.UploadedBy)
	assert.False(t, comic.UploadDate.IsZero())

	assert.Equal(t, 2, uploadedFiles(t, f.uploadDir))

	// Only the raster file gets a thumbnail job.
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, comic.ID, f.queue.jobs[0].ComicID)
	assert.Equal(t, comic.Files[0].StoredFilename, f.queue.jobs[0].StoredFilename)

	got, err := f.catalog.Get(ctx, comic.ID)
	require.NoError(t, err)
	assert.Equal(t, "Space Saga", got.Title)
}

func TestUpload_Validation(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	_, err := f.catalog.Upload(ctx, alice, UploadInput{Title: "   ", Files: []UploadFile{pngFile("a.png")}})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	_, err = f.catalog.Upload(ctx, alice, UploadInput{Title: "No Files"})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	assert.Equal(t, 0, uploadedFiles(t, f.uploadDir), "validation failures write nothing")
}

func TestUpload_MidBatchFailureLeavesEarlierBytes(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	_, err := f.catalog.Upload(ctx, alice, UploadInput{
		Title: "Doomed Batch",
		Files: []UploadFile{pngFile("ok.png"), {Filename: "virus.exe", Data: []byte("nope")}},
	})
	require.ErrorIs(t, err, upload.ErrUnsupportedFileType)

	// The first file was already written and is intentionally not rolled
	// back; no catalog record references it.
	assert.Equal(t, 1, uploadedFiles(t, f.uploadDir))

	total, err := f.store.CountComics(ctx, store.ComicFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestPatch_OwnershipAndMerge(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	comic, err := f.catalog.Upload(ctx, alice, UploadInput{Title: "Original", Files: []UploadFile{pngFile("a.png")}})
	require.NoError(t, err)

	_, err = f.catalog.Patch(ctx, bob, comic.ID, PatchInput{Title: strPtr("Stolen")})
	assert.ErrorIs(t, err, store.ErrForbidden)

	newTags := "Drama, DRAMA "
	published := true
	updated, err := f.catalog.Patch(ctx, alice, comic.ID, PatchInput{
		Tags:      &newTags,
		Published: &published,
	})
	require.NoError(t, err)
	assert.Equal(t, "Original", updated.Title, "unsupplied fields stay untouched")
	assert.Equal(t, []string{"drama", "drama"}, updated.Tags)
	assert.True(t, updated.Published)
}

func TestPatch_AppendFiles(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	comic, err := f.catalog.Upload(ctx, alice, UploadInput{Title: "Growing", Files: []UploadFile{pngFile("a.png")}})
	require.NoError(t, err)
	cover := comic.CoverURL
	f.queue.jobs = nil

	updated, err := f.catalog.Patch(ctx, alice, comic.ID, PatchInput{
		Append: []UploadFile{pngFile("b.png"), pngFile("c.png")},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, updated.FileCount)
	assert.Len(t, updated.Files, 3)
	assert.Equal(t, cover, updated.CoverURL, "append never rewrites the cover")
	assert.Len(t, f.queue.jobs, 2, "appended raster files get thumbnail jobs")
}

func TestPatch_AppendRejectedFileAbortsWholeAppend(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	comic, err := f.catalog.Upload(ctx, alice, UploadInput{Title: "Stable", Files: []UploadFile{pngFile("a.png")}})
	require.NoError(t, err)

	_, err = f.catalog.Patch(ctx, alice, comic.ID, PatchInput{
		Append: []UploadFile{{Filename: "bad.exe", Data: []byte("x")}},
	})
	require.ErrorIs(t, err, upload.ErrUnsupportedFileType)

	got, err := f.catalog.Get(ctx, comic.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FileCount)
}

func TestDelete(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	comic, err := f.catalog.Upload(ctx, alice, UploadInput{Title: "Doomed", Files: []UploadFile{pngFile("a.png")}})
	require.NoError(t, err)

	err = f.catalog.Delete(ctx, bob, comic.ID)
	assert.ErrorIs(t, err, store.ErrForbidden)

	require.NoError(t, f.catalog.Delete(ctx, alice, comic.ID))

	_, err = f.catalog.Get(ctx, comic.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = f.catalog.Delete(ctx, alice, comic.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestList_Pagination(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		_, err := f.catalog.Upload(ctx, alice, UploadInput{Title: title, Files: []UploadFile{pngFile("p.png")}})
		require.NoError(t, err)
	}

	res, err := f.catalog.List(ctx, ListParams{
		Sort: store.DefaultComicSort(),
		Page: store.Page{Limit: 2},
	})
	require.NoError(t, err)
	assert.Len(t, res.Comics, 2)
	assert.Equal(t, 3, res.Total)
	assert.True(t, res.HasMore)

	res, err = f.catalog.List(ctx, ListParams{
		Sort: store.DefaultComicSort(),
		Page: store.Page{Limit: 2, Skip: 2},
	})
	require.NoError(t, err)
	assert.Len(t, res.Comics, 1)
	assert.False(t, res.HasMore)

	// Skip beyond the total yields an empty page, not an error.
	res, err = f.catalog.List(ctx, ListParams{
		Sort: store.DefaultComicSort(),
		Page: store.Page{Limit: 10, Skip: 50},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Comics)
	assert.False(t, res.HasMore)

	// Oversize limits are clamped, and the clamped value is echoed back.
	res, err = f.catalog.List(ctx, ListParams{
		Sort: store.DefaultComicSort(),
		Page: store.Page{Limit: 200},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Limit)
}

func TestSaveUnsaveSaved(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	comic, err := f.catalog.Upload(ctx, alice, UploadInput{Title: "Keeper", Files: []UploadFile{pngFile("a.png")}})
	require.NoError(t, err)

	err = f.catalog.Save(ctx, bob, "com-"+"aaaaaaaaaaaaaaaaaaaaa")
	assert.ErrorIs(t, err, store.ErrNotFound, "saving a missing comic fails")

	require.NoError(t, f.catalog.Save(ctx, bob, comic.ID))
	// Saving twice is a no-op.
	require.NoError(t, f.catalog.Save(ctx, bob, comic.ID))

	saved, err := f.catalog.Saved(ctx, bob)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, comic.ID, saved[0].ID)

	require.NoError(t, f.catalog.Unsave(ctx, bob, comic.ID))
	saved, err = f.catalog.Saved(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSaved_SkipsDeletedComics(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	keep, err := f.catalog.Upload(ctx, alice, UploadInput{Title: "Keep", Files: []UploadFile{pngFile("a.png")}})
	require.NoError(t, err)
	gone, err := f.catalog.Upload(ctx, alice, UploadInput{Title: "Gone", Files: []UploadFile{pngFile("b.png")}})
	require.NoError(t, err)

	require.NoError(t, f.catalog.Save(ctx, bob, keep.ID))
	require.NoError(t, f.catalog.Save(ctx, bob, gone.ID))
	require.NoError(t, f.catalog.Delete(ctx, alice, gone.ID))

	saved, err := f.catalog.Saved(ctx, bob)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, keep.ID, saved[0].ID)
}

func TestSaved_NoUserRecord(t *testing.T) {
	f := setupCatalog(t)

	saved, err := f.catalog.Saved(context.Background(), auth.Identity{ID: "usr-stranger"})
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestTags_Scoping(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	_, err := f.catalog.Upload(ctx, alice, UploadInput{Title: "A", Tags: "action, drama", Files: []UploadFile{pngFile("a.png")}})
	require.NoError(t, err)
	_, err = f.catalog.Upload(ctx, bob, UploadInput{Title: "B", Tags: "romance", Files: []UploadFile{pngFile("b.png")}})
	require.NoError(t, err)

	all, err := f.catalog.Tags(ctx, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"action", "drama", "romance"}, all)

	mine, err := f.catalog.Tags(ctx, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"action", "drama"}, mine)
}

func strPtr(s string) *string { return &s }
