// Package badger implements the session store on BadgerDB, an embedded
// key/value store with native entry TTLs.
package badger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// SessionStore implements auth.SessionStore.
//
// Each session is a single entry written with a TTL, so expiry is enforced
// by the store itself: an expired token is indistinguishable from one that
// never existed. Reads and deletes go through Badger transactions, which
// gives read-your-writes within the store.
type SessionStore struct {
	db *badger.DB
}

// Config holds session store options.
type Config struct {
	// Dir is the directory backing the store. Ignored when InMemory is set.
	Dir string

	// InMemory keeps all entries in memory, losing them on restart.
	InMemory bool
}

// NewSessionStore opens the store, creating Dir if needed.
func NewSessionStore(cfg Config) (*SessionStore, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Session entries are tiny; keep Badger quiet and uncompressed.
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store at %q: %w", cfg.Dir, err)
	}

	return &SessionStore{db: db}, nil
}

// Put records token -> userID for the given duration.
func (s *SessionStore) Put(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(token), []byte(strconv.FormatInt(userID, 10))).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get resolves a token to a user id. Absent and expired tokens both return
// ok == false.
func (s *SessionStore) Get(ctx context.Context, token string) (int64, bool, error) {
	var userID int64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(token))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			parsed, err := strconv.ParseInt(string(val), 10, 64)
			if err != nil {
				return fmt.Errorf("corrupt session value %q: %w", val, err)
			}
			userID = parsed
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up session: %w", err)
	}
	return userID, true, nil
}

// Delete removes a token immediately.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(token))
	})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping reports whether the store is usable.
func (s *SessionStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("session store is closed")
	}
	return nil
}

// Close releases the store.
func (s *SessionStore) Close() error {
	return s.db.Close()
}
