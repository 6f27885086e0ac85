// Package domain contains the core record types for the comic catalog.
package domain

import "time"

// FileMeta is the metadata record for one uploaded page file.
// It is exclusively owned by its Comic and has no independent lifecycle.
type FileMeta struct {
	OriginalFilename string `json:"original_filename"`
	StoredFilename   string `json:"stored_filename"` // unique on disk, entropy-named
	URL              string `json:"url"`
	Size             int64  `json:"size,omitempty"`
	Width            int    `json:"width,omitempty"`
	Height           int    `json:"height,omitempty"`
	// ThumbnailURL is set by the deferred thumbnail deriver after the upload
	// response has already been returned. It is eventually consistent and may
	// stay empty forever if derivation fails.
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Comic is a single catalog record: an ordered batch of page files plus metadata.
type Comic struct {
	ID          string `json:"id"` // opaque, store-assigned
	Title       string `json:"title"`
	Description string `json:"description"`
	// Tags are lowercase, trimmed, non-empty tokens. Order and duplicates are
	// preserved. The sequence is not a set.
	Tags       []string   `json:"tags"`
	Files      []FileMeta `json:"files"`
	FileCount  int        `json:"file_count"` // always len(Files)
	AuthorID   string     `json:"author_id"`  // immutable after creation
	UploadedBy string     `json:"uploaded_by"`
	UploadDate time.Time  `json:"upload_date"` // set once, never overwritten
	Published  bool       `json:"published"`
	// CoverURL is the URL of Files[0] at creation time. Later file appends do
	// not recompute it; the staleness is documented behavior.
	CoverURL string `json:"cover_url,omitempty"`
}

// HasAnyTag reports whether the comic carries at least one of the given tags.
func (c *Comic) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range c.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
