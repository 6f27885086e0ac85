package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

// IncrementCounter atomically increments the named counter and returns the
// new value. The read and write happen inside one transaction — never as
// separate calls — so concurrent callers always receive distinct values.
// Missing counters start at zero, so the first increment returns 1.
//
// Used to assign legacy numeric identities.
func (s *Store) IncrementCounter(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var next int64
	err := s.update(func(txn *badger.Txn) error {
		var ierr error
		next, ierr = incrementCounterTxn(txn, name)
		return ierr
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// incrementCounterTxn bumps the counter within an existing transaction so
// callers can couple the increment with other writes atomically.
func incrementCounterTxn(txn *badger.Txn, name string) (int64, error) {
	key := counterPrefix + name
	var current int64

	item, err := txn.Get([]byte(key))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		current = 0
	case err != nil:
		return 0, fmt.Errorf("failed to get counter: %w", err)
	default:
		err = item.Value(func(val []byte) error {
			parsed, perr := strconv.ParseInt(string(val), 10, 64)
			if perr != nil {
				return fmt.Errorf("corrupt counter value %q: %w", val, perr)
			}
			current = parsed
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	next := current + 1
	return next, txn.Set([]byte(key), []byte(strconv.FormatInt(next, 10)))
}
