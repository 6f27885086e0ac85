package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/panelverse/panelverse-server/internal/domain"
	"github.com/panelverse/panelverse-server/internal/id"
)

// Comic errors.
var (
	ErrComicNotFound = ErrNotFound.WithMessage("comic not found")
)

// ComicPatch carries a partial metadata update. Only non-nil fields are
// merged; last writer wins, there is no optimistic concurrency token.
type ComicPatch struct {
	Title       *string
	Description *string
	Tags        *[]string
	Published   *bool
}

// Empty reports whether the patch carries no fields.
func (p ComicPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Tags == nil && p.Published == nil
}

// CreateComic inserts a comic as a single atomic document write.
// The store assigns the opaque ID and sets it on the passed record.
func (s *Store) CreateComic(ctx context.Context, c *domain.Comic) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	comicID, err := id.Generate("com")
	if err != nil {
		return err
	}
	c.ID = comicID
	c.FileCount = len(c.Files)

	return s.update(func(txn *badger.Txn) error {
		return setJSON(txn, comicPrefix+c.ID, c)
	})
}

// GetComic retrieves a comic by ID.
// Returns ErrComicNotFound if the comic does not exist.
func (s *Store) GetComic(ctx context.Context, comicID string) (*domain.Comic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var c domain.Comic
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, comicPrefix+comicID, &c)
	})
	if err != nil {
		if errNotFound(err) {
			return nil, ErrComicNotFound
		}
		return nil, err
	}
	return &c, nil
}

// PatchComic merges only the supplied metadata fields into the comic.
// AuthorID and UploadDate are never touched. Returns the updated record.
func (s *Store) PatchComic(ctx context.Context, comicID string, patch ComicPatch) (*domain.Comic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var c domain.Comic
	err := s.update(func(txn *badger.Txn) error {
		key := comicPrefix + comicID
		if err := getJSON(txn, key, &c); err != nil {
			return err
		}

		if patch.Title != nil {
			c.Title = *patch.Title
		}
		if patch.Description != nil {
			c.Description = *patch.Description
		}
		if patch.Tags != nil {
			c.Tags = *patch.Tags
		}
		if patch.Published != nil {
			c.Published = *patch.Published
		}

		return setJSON(txn, key, &c)
	})
	if err != nil {
		if errNotFound(err) {
			return nil, ErrComicNotFound
		}
		return nil, err
	}
	return &c, nil
}

// AppendComicFiles appends page files to the existing ordered sequence and
// recomputes file_count. CoverURL is deliberately left alone: it stays the
// URL of the file that was first at creation time.
func (s *Store) AppendComicFiles(ctx context.Context, comicID string, files []domain.FileMeta) (*domain.Comic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var c domain.Comic
	err := s.update(func(txn *badger.Txn) error {
		key := comicPrefix + comicID
		if err := getJSON(txn, key, &c); err != nil {
			return err
		}

		c.Files = append(c.Files, files...)
		c.FileCount = len(c.Files)

		return setJSON(txn, key, &c)
	})
	if err != nil {
		if errNotFound(err) {
			return nil, ErrComicNotFound
		}
		return nil, err
	}
	return &c, nil
}

// DeleteComic removes the comic document unconditionally. The ownership check
// happens in the caller via a prior GetComic. Absent comics return
// ErrComicNotFound, so two concurrent deletes of the same ID yield exactly
// one success and one not-found.
func (s *Store) DeleteComic(ctx context.Context, comicID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.update(func(txn *badger.Txn) error {
		key := comicPrefix + comicID
		var c domain.Comic
		if err := getJSON(txn, key, &c); err != nil {
			return err
		}
		return txn.Delete([]byte(key))
	})
	if errNotFound(err) {
		return ErrComicNotFound
	}
	return err
}

// SetFileThumbnail records the derived thumbnail URL and source dimensions on
// the FileMeta with the given stored filename. Called by the thumbnail
// deriver after the upload response has long been returned; best effort.
func (s *Store) SetFileThumbnail(ctx context.Context, comicID, storedFilename, thumbURL string, width, height int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.update(func(txn *badger.Txn) error {
		key := comicPrefix + comicID
		var c domain.Comic
		if err := getJSON(txn, key, &c); err != nil {
			return err
		}

		for i := range c.Files {
			if c.Files[i].StoredFilename == storedFilename {
				c.Files[i].ThumbnailURL = thumbURL
				c.Files[i].Width = width
				c.Files[i].Height = height
				return setJSON(txn, key, &c)
			}
		}

		// File no longer referenced (comic patched or deleted meanwhile).
		return ErrNotFound
	})
	if errNotFound(err) {
		return ErrComicNotFound
	}
	return err
}

// errNotFound reports whether err is the not-found sentinel (or derived from it).
func errNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
