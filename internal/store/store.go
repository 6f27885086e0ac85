// Package store implements the catalog repository on top of Badger.
//
// Every record is a single JSON document under a prefixed key
// (comic:{id}, user:{id}, counter:{name}). Mutations are single-document
// atomic: one Badger transaction per operation, nothing transactional across
// documents. Badger aborts conflicting transactions instead of blocking, so
// read-modify-write operations retry a bounded number of times.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes.
const (
	comicPrefix   = "comic:"
	userPrefix    = "user:"
	counterPrefix = "counter:"
)

// maxTxnRetries bounds retries of transactions aborted by Badger's conflict
// detection. At least one conflicting transaction commits per round, so the
// attempts needed are bounded by the number of concurrent writers on a key.
const maxTxnRetries = 100

// Store wraps a Badger database instance. The handle is passed explicitly
// into every collaborator — there is no package-level singleton.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	if logger != nil {
		logger.Info("badger database opened", "path", path)
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database connection")
	}
	return s.db.Close()
}

// update runs fn in a read-write transaction, retrying on conflict aborts.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for range maxTxnRetries {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// getJSON reads and unmarshals the document at key within txn.
func getJSON(txn *badger.Txn, key string, dest any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, dest); err != nil {
			return fmt.Errorf("failed to unmarshal document: %w", err)
		}
		return nil
	})
}

// setJSON marshals and writes the document at key within txn.
func setJSON(txn *badger.Txn, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return txn.Set([]byte(key), data)
}
