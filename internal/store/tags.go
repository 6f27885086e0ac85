package store

import (
	"context"
	"sort"
)

// DistinctTags computes the distinct tag set across comics in scope:
// authorID narrows to one owner, an empty authorID means the whole catalog.
// The result is a set; it is sorted only to keep output stable, callers must
// not rely on any particular order.
func (s *Store) DistinctTags(ctx context.Context, authorID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	comics, err := s.scanComics(&ComicFilter{AuthorID: authorID})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, c := range comics {
		for _, t := range c.Tags {
			seen[t] = true
		}
	}

	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	return tags, nil
}
