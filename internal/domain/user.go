package domain

import (
	"slices"
	"time"
)

// User is a reader/creator account. Credential material lives with the external
// auth collaborator; the catalog only keeps identity and bookmarks.
type User struct {
	ID        string `json:"id"`
	NumericID int64  `json:"numeric_id"` // legacy numeric identity from the atomic counter
	Name      string `json:"name"`
	Email     string `json:"email"`
	// SavedComics is a set-like relation of bookmarked comic IDs, kept in
	// insertion order.
	SavedComics []string  `json:"saved_comics"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaveComic adds a comic ID to the bookmark set.
// Returns false if it was already saved.
func (u *User) SaveComic(comicID string) bool {
	if slices.Contains(u.SavedComics, comicID) {
		return false
	}
	u.SavedComics = append(u.SavedComics, comicID)
	return true
}

// UnsaveComic removes a comic ID from the bookmark set.
// Returns false if it was not saved.
func (u *User) UnsaveComic(comicID string) bool {
	i := slices.Index(u.SavedComics, comicID)
	if i < 0 {
		return false
	}
	u.SavedComics = slices.Delete(u.SavedComics, i, i+1)
	return true
}
