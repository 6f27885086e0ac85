package store

import (
	"context"
	"encoding/json/v2"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/panelverse/panelverse-server/internal/domain"
)

// SortField is a whitelisted comic sort key.
type SortField string

// Whitelisted sort fields. Anything else silently falls back to upload date;
// an unknown sort key is not an error path.
const (
	SortByUploadDate SortField = "upload_date"
	SortByTitle      SortField = "title"
	SortByFileCount  SortField = "file_count"
)

// ParseSortField maps client input onto the whitelist, falling back to
// SortByUploadDate for absent or malformed values.
func ParseSortField(s string) SortField {
	switch SortField(s) {
	case SortByTitle:
		return SortByTitle
	case SortByFileCount:
		return SortByFileCount
	default:
		return SortByUploadDate
	}
}

// ComicSort describes result ordering. Descending is the default direction.
type ComicSort struct {
	Field      SortField
	Descending bool
}

// DefaultComicSort returns upload date, newest first.
func DefaultComicSort() ComicSort {
	return ComicSort{Field: SortByUploadDate, Descending: true}
}

// ComicFilter selects comics. Dimensions compose with AND; the tag dimension
// itself uses OR across the supplied tags.
type ComicFilter struct {
	// Search matches as a case-insensitive substring against title OR description.
	Search string
	// Tags matches comics carrying at least one of these (normalized) tags.
	Tags []string
	// Published filters on exact equality when non-nil.
	Published *bool
	// AuthorID switches to the "mine" scope: only this author's comics,
	// regardless of published state.
	AuthorID string
	// PublishedOnly restricts the public catalog scope to published comics.
	PublishedOnly bool
}

// Matches reports whether the comic passes every filter dimension.
func (f *ComicFilter) Matches(c *domain.Comic) bool {
	if f.AuthorID != "" && c.AuthorID != f.AuthorID {
		return false
	}
	if f.PublishedOnly && !c.Published {
		return false
	}
	if f.Published != nil && c.Published != *f.Published {
		return false
	}
	if len(f.Tags) > 0 && !c.HasAnyTag(f.Tags) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Title), needle) &&
			!strings.Contains(strings.ToLower(c.Description), needle) {
			return false
		}
	}
	return true
}

// Page holds offset pagination parameters.
type Page struct {
	Limit int
	Skip  int
}

// Clamp corrects the page in place: limit into [0,100], skip non-negative.
// Skip has no upper bound.
func (p *Page) Clamp() {
	if p.Limit < 0 {
		p.Limit = 0
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
}

// ListComics returns the comics matching filter, ordered by sort, sliced by
// page. The total count is served by CountComics as an independent query;
// under concurrent writes the two are not snapshot-consistent, which is an
// accepted gap.
func (s *Store) ListComics(ctx context.Context, filter ComicFilter, order ComicSort, page Page) ([]*domain.Comic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page.Clamp()

	matched, err := s.scanComics(&filter)
	if err != nil {
		return nil, err
	}

	sortComics(matched, order)

	if page.Skip >= len(matched) {
		return []*domain.Comic{}, nil
	}
	matched = matched[page.Skip:]
	if page.Limit < len(matched) {
		matched = matched[:page.Limit]
	}
	return matched, nil
}

// CountComics returns the total number of comics matching filter.
func (s *Store) CountComics(ctx context.Context, filter ComicFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	matched, err := s.scanComics(&filter)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// scanComics iterates the comic prefix and collects matching records.
func (s *Store) scanComics(filter *ComicFilter) ([]*domain.Comic, error) {
	prefix := []byte(comicPrefix)
	var matched []*domain.Comic

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var c domain.Comic
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			})
			if err != nil {
				// Skip undecodable documents rather than failing the scan.
				if s.logger != nil {
					s.logger.Warn("skipping undecodable comic document",
						"key", string(it.Item().Key()), "error", err)
				}
				continue
			}
			if filter.Matches(&c) {
				matched = append(matched, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

// sortComics orders the slice in place. The sort is stable so equal keys keep
// their scan order.
func sortComics(comics []*domain.Comic, order ComicSort) {
	less := func(a, b *domain.Comic) bool {
		switch order.Field {
		case SortByTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case SortByFileCount:
			return a.FileCount < b.FileCount
		default:
			return a.UploadDate.Before(b.UploadDate)
		}
	}

	sort.SliceStable(comics, func(i, j int) bool {
		if order.Descending {
			return less(comics[j], comics[i])
		}
		return less(comics[i], comics[j])
	})
}
