package reminders

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const ledgerBucket = "delivered"

// Ledger remembers which occurrences were already delivered, across restarts.
type Ledger struct {
	db     *bolt.DB
	bucket []byte
}

// OpenLedger opens the bolt file at path and ensures the bucket exists.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create ledger directory")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger %s", path)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ledgerBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create ledger bucket")
	}

	return &Ledger{db: db, bucket: []byte(ledgerBucket)}, nil
}

// Seen reports whether the occurrence was already delivered.
func (l *Ledger) Seen(o Occurrence) (bool, error) {
	if l == nil || l.db == nil {
		return false, bolt.ErrDatabaseNotOpen
	}
	var seen bool
	err := l.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket(l.bucket).Get([]byte(o.Key())) != nil
		return nil
	})
	return seen, err
}

// Record marks the occurrence delivered. The value is the fire instant, used by
// Cleanup.
func (l *Ledger) Record(o Occurrence) error {
	if l == nil || l.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, uint64(o.FireAt.Unix()))

	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(l.bucket).Put([]byte(o.Key()), value)
	})
}

// Cleanup forgets occurrences that fired before olderThan and returns how many
// were removed.
func (l *Ledger) Cleanup(olderThan time.Time) (int, error) {
	if l == nil || l.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	removed := 0
	err := l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(l.bucket)
		var stale [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			if len(v) != 8 || int64(binary.BigEndian.Uint64(v)) < olderThan.Unix() {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Size returns the number of recorded occurrences.
func (l *Ledger) Size() (int, error) {
	if l == nil || l.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := l.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(l.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the bolt file.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
