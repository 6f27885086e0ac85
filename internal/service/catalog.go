// Package service orchestrates the catalog use cases: upload ingestion,
// catalog queries, metadata edits, and reader bookmarks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/panelverse/panelverse-server/internal/auth"
	"github.com/panelverse/panelverse-server/internal/domain"
	"github.com/panelverse/panelverse-server/internal/media/thumbs"
	"github.com/panelverse/panelverse-server/internal/normalize"
	"github.com/panelverse/panelverse-server/internal/store"
	"github.com/panelverse/panelverse-server/internal/upload"
)

// Validation errors.
var (
	ErrTitleRequired = store.ErrInvalidInput.WithMessage("title is required")
	ErrFilesRequired = store.ErrInvalidInput.WithMessage("at least one file is required")
	ErrNotAuthor     = store.ErrForbidden.WithMessage("only the author can modify this comic")
)

// ThumbQueue accepts derivation jobs. Enqueue must never block.
type ThumbQueue interface {
	Enqueue(job thumbs.Job) bool
}

// Catalog wires the ingestion pipeline and query engine together behind one
// use-case surface for the HTTP layer.
type Catalog struct {
	store  *store.Store
	policy upload.Policy
	writer *upload.Writer
	queue  ThumbQueue
	logger *slog.Logger
}

// NewCatalog creates the catalog service. queue may be nil to disable
// thumbnail derivation.
func NewCatalog(s *store.Store, policy upload.Policy, writer *upload.Writer, queue ThumbQueue, logger *slog.Logger) *Catalog {
	return &Catalog{
		store:  s,
		policy: policy,
		writer: writer,
		queue:  queue,
		logger: logger,
	}
}

// UploadFile is one incoming file of an upload batch.
type UploadFile struct {
	Filename string
	Data     []byte
}

// UploadInput is the multipart upload form.
type UploadInput struct {
	Title       string
	Description string
	// Tags is the raw comma-separated tag string as submitted.
	Tags  string
	Files []UploadFile
}

// Upload ingests a comic batch. Files are validated and written one at a
// time, in submission order; the first failure aborts the batch before any
// catalog record exists. Files already written by then stay on disk as
// unreferenced bytes — cleanup is an offline concern, the upload path never
// deletes.
func (c *Catalog) Upload(ctx context.Context, ident auth.Identity, in UploadInput) (*domain.Comic, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	if len(in.Files) == 0 {
		return nil, ErrFilesRequired
	}

	files, err := c.writeFiles(in.Files)
	if err != nil {
		return nil, err
	}

	comic := &domain.Comic{
		Title:       in.Title,
		Description: in.Description,
		Tags:        normalize.Tags(in.Tags),
		Files:       files,
		AuthorID:    ident.ID,
		UploadedBy:  ident.Label,
		UploadDate:  time.Now().UTC(),
		Published:   false,
		// The cover is fixed at creation; later appends never change it.
		CoverURL: files[0].URL,
	}

	if err := c.store.CreateComic(ctx, comic); err != nil {
		return nil, fmt.Errorf("failed to create comic: %w", err)
	}

	c.enqueueThumbs(comic.ID, files)

	c.logger.Info("comic uploaded",
		"comic_id", comic.ID,
		"author_id", ident.ID,
		"files", len(files))
	return comic, nil
}

// writeFiles runs the validate-then-write loop over a batch.
func (c *Catalog) writeFiles(in []UploadFile) ([]domain.FileMeta, error) {
	files := make([]domain.FileMeta, 0, len(in))
	for _, f := range in {
		if err := c.policy.Validate(f.Filename, int64(len(f.Data))); err != nil {
			return nil, err
		}
		meta, err := c.writer.Write(f.Filename, f.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to store %q: %w", f.Filename, err)
		}
		files = append(files, meta)
	}
	return files, nil
}

// enqueueThumbs schedules derivation for the raster files of a batch.
func (c *Catalog) enqueueThumbs(comicID string, files []domain.FileMeta) {
	if c.queue == nil {
		return
	}
	for _, f := range files {
		if !thumbs.IsRasterImage(f.StoredFilename) {
			continue
		}
		thumbName := thumbs.ThumbName(f.StoredFilename)
		c.queue.Enqueue(thumbs.Job{
			ComicID:        comicID,
			StoredFilename: f.StoredFilename,
			SourcePath:     c.writer.Path(f.StoredFilename),
			ThumbPath:      c.writer.Path(thumbName),
			ThumbURL:       c.writer.URL(thumbName),
		})
	}
}

// ListParams selects, orders, and pages a catalog query.
type ListParams struct {
	Filter store.ComicFilter
	Sort   store.ComicSort
	Page   store.Page
}

// ListResult is one page of the catalog plus pagination bookkeeping.
type ListResult struct {
	Comics  []*domain.Comic
	Total   int
	Limit   int
	Skip    int
	HasMore bool
}

// List runs the catalog query. The page and the total come from two
// independent reads, so under concurrent writes they can disagree slightly.
func (c *Catalog) List(ctx context.Context, p ListParams) (*ListResult, error) {
	p.Page.Clamp()

	comics, err := c.store.ListComics(ctx, p.Filter, p.Sort, p.Page)
	if err != nil {
		return nil, fmt.Errorf("failed to list comics: %w", err)
	}
	total, err := c.store.CountComics(ctx, p.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count comics: %w", err)
	}

	return &ListResult{
		Comics:  comics,
		Total:   total,
		Limit:   p.Page.Limit,
		Skip:    p.Page.Skip,
		HasMore: p.Page.Skip+len(comics) < total,
	}, nil
}

// Get fetches one comic.
func (c *Catalog) Get(ctx context.Context, comicID string) (*domain.Comic, error) {
	return c.store.GetComic(ctx, comicID)
}

// PatchInput carries a partial metadata update plus an optional batch of
// files to append.
type PatchInput struct {
	Title       *string
	Description *string
	// Tags is the raw comma-separated string; normalization happens here.
	Tags      *string
	Published *bool
	Append    []UploadFile
}

// Patch applies a metadata update and/or file append as the author.
func (c *Catalog) Patch(ctx context.Context, ident auth.Identity, comicID string, in PatchInput) (*domain.Comic, error) {
	comic, err := c.ownedComic(ctx, ident, comicID)
	if err != nil {
		return nil, err
	}

	patch := store.ComicPatch{
		Title:       in.Title,
		Description: in.Description,
		Published:   in.Published,
	}
	if in.Tags != nil {
		tags := normalize.Tags(*in.Tags)
		patch.Tags = &tags
	}

	if !patch.Empty() {
		comic, err = c.store.PatchComic(ctx, comicID, patch)
		if err != nil {
			return nil, err
		}
	}

	if len(in.Append) > 0 {
		files, err := c.writeFiles(in.Append)
		if err != nil {
			return nil, err
		}
		comic, err = c.store.AppendComicFiles(ctx, comicID, files)
		if err != nil {
			return nil, err
		}
		c.enqueueThumbs(comicID, files)
	}

	return comic, nil
}

// Delete removes a comic as its author. Of two concurrent deletes exactly one
// succeeds; the loser observes not-found.
func (c *Catalog) Delete(ctx context.Context, ident auth.Identity, comicID string) error {
	if _, err := c.ownedComic(ctx, ident, comicID); err != nil {
		return err
	}
	if err := c.store.DeleteComic(ctx, comicID); err != nil {
		return err
	}
	c.logger.Info("comic deleted", "comic_id", comicID, "author_id", ident.ID)
	return nil
}

// ownedComic fetches a comic and verifies the caller is its author.
func (c *Catalog) ownedComic(ctx context.Context, ident auth.Identity, comicID string) (*domain.Comic, error) {
	comic, err := c.store.GetComic(ctx, comicID)
	if err != nil {
		return nil, err
	}
	if comic.AuthorID != ident.ID {
		return nil, ErrNotAuthor
	}
	return comic, nil
}

// Tags returns the distinct tag set, optionally scoped to one author.
func (c *Catalog) Tags(ctx context.Context, authorID string) ([]string, error) {
	return c.store.DistinctTags(ctx, authorID)
}

// Save bookmarks a comic for the caller. The comic must exist; the user
// record is created on first contact.
func (c *Catalog) Save(ctx context.Context, ident auth.Identity, comicID string) error {
	if _, err := c.store.GetComic(ctx, comicID); err != nil {
		return err
	}
	if _, err := c.store.EnsureUser(ctx, ident.ID, ident.Label); err != nil {
		return err
	}
	return c.store.SaveComicForUser(ctx, ident.ID, comicID)
}

// Unsave removes a bookmark. Unsaving something never saved is a no-op.
func (c *Catalog) Unsave(ctx context.Context, ident auth.Identity, comicID string) error {
	if _, err := c.store.EnsureUser(ctx, ident.ID, ident.Label); err != nil {
		return err
	}
	return c.store.UnsaveComicForUser(ctx, ident.ID, comicID)
}

// Saved returns the caller's bookmarked comics in save order. Bookmarks whose
// comic has since been deleted are skipped.
func (c *Catalog) Saved(ctx context.Context, ident auth.Identity) ([]*domain.Comic, error) {
	saved, err := c.store.SavedComicIDs(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []*domain.Comic{}, nil
		}
		return nil, err
	}

	comics := make([]*domain.Comic, 0, len(saved))
	for _, comicID := range saved {
		comic, err := c.store.GetComic(ctx, comicID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		comics = append(comics, comic)
	}
	return comics, nil
}
