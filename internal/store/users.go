package store

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/panelverse/panelverse-server/internal/domain"
)

// User errors.
var (
	ErrUserNotFound = ErrNotFound.WithMessage("user not found")
)

// usersCounter names the counter backing legacy numeric user identities.
const usersCounter = "users"

// EnsureUser fetches the record for an externally issued identity, creating
// it on first contact. Creation and numeric-ID assignment happen in one
// transaction, so concurrent first requests converge on a single record.
func (s *Store) EnsureUser(ctx context.Context, userID, name string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var u domain.User
	err := s.update(func(txn *badger.Txn) error {
		key := userPrefix + userID
		err := getJSON(txn, key, &u)
		if err == nil {
			return nil
		}
		if !errNotFound(err) {
			return err
		}

		numericID, err := incrementCounterTxn(txn, usersCounter)
		if err != nil {
			return err
		}
		u = domain.User{
			ID:          userID,
			NumericID:   numericID,
			Name:        name,
			SavedComics: []string{},
			CreatedAt:   time.Now().UTC(),
		}
		return setJSON(txn, key, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var u domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userPrefix+userID, &u)
	})
	if err != nil {
		if errNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// SaveComicForUser adds a comic to the user's bookmark set. Idempotent.
func (s *Store) SaveComicForUser(ctx context.Context, userID, comicID string) error {
	return s.mutateUser(ctx, userID, func(u *domain.User) {
		u.SaveComic(comicID)
	})
}

// UnsaveComicForUser removes a comic from the user's bookmark set. Idempotent.
func (s *Store) UnsaveComicForUser(ctx context.Context, userID, comicID string) error {
	return s.mutateUser(ctx, userID, func(u *domain.User) {
		u.UnsaveComic(comicID)
	})
}

// SavedComicIDs returns the user's bookmarked comic IDs in insertion order.
func (s *Store) SavedComicIDs(ctx context.Context, userID string) ([]string, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.SavedComics, nil
}

// mutateUser applies fn to the user document in one transaction.
func (s *Store) mutateUser(ctx context.Context, userID string, fn func(*domain.User)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.update(func(txn *badger.Txn) error {
		key := userPrefix + userID
		var u domain.User
		if err := getJSON(txn, key, &u); err != nil {
			return err
		}
		fn(&u)
		return setJSON(txn, key, &u)
	})
	if errNotFound(err) {
		return ErrUserNotFound
	}
	return err
}
