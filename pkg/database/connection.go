package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Store owns the SQLite database holding activities. One Store per database file
// is allowed at a time; it lives for the whole application session.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
	now  func() time.Time

	mu       sync.Mutex
	watchers map[uint64]chan struct{}
	nextID   uint64
	closed   bool
}

// Option customizes a Store
type Option func(*Store)

// WithClock sets the clock used for created_at stamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// ExpandPath expands a leading tilde to the home directory
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = homeDir + path[1:]
	}
	return path, nil
}

// Open locks the database file, brings its schema up to date and returns the store
func Open(ctx context.Context, dbPath string, opts ...Option) (*Store, error) {
	dbPath, err := ExpandPath(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "resolve database path")
	}

	// Create the directory structure if it doesn't exist
	dbDir := filepath.Dir(dbPath)
	if dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}

	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "lock database")
	}
	if !locked {
		return nil, ErrStoreLocked
	}

	if err := Migrate(ctx, dbPath); err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		_ = lock.Unlock()
		return nil, errors.Wrap(err, "open database")
	}
	// a single connection serializes every read and write
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		_ = lock.Unlock()
		return nil, errors.Wrap(err, "ping database")
	}

	s := &Store{
		db:       db,
		lock:     lock,
		path:     dbPath,
		now:      time.Now,
		watchers: make(map[uint64]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	log.Debug().Str("database", dbPath).Msg("database opened")
	return s, nil
}

// Path returns the resolved database file path
func (s *Store) Path() string {
	return s.path
}

// Close stops all watchers, closes the database and releases the lock
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for id, ch := range s.watchers {
		close(ch)
		delete(s.watchers, id)
	}
	s.mu.Unlock()

	err := s.db.Close()
	if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
		err = unlockErr
	}
	return errors.Wrap(err, "close database")
}
