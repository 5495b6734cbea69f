package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/scrafurl/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	exchangeBucket   = "exchanges"
	expiryValueBytes = 8
)

// boltJournal implements a Journal backed by BoltDB. Keys are the exchange
// time in big-endian nanoseconds followed by its ID, so a cursor walks them
// in chronological order. Values are an 8-byte expiry followed by JSON.
type boltJournal struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Journal.
func openBolt(path string, opts Options) (*boltJournal, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(exchangeBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	j := &boltJournal{
		db:              db,
		ttl:             opts.TTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	j.lastCleanup.Store(j.now().Unix())
	return j, nil
}

// Close closes the BoltDB journal.
func (b *boltJournal) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record stores an exchange, assigning an ID and timestamp when missing.
func (b *boltJournal) Record(ex domain.Exchange) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	if ex.At.IsZero() {
		ex.At = now
	}

	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshal exchange: %w", err)
	}
	value := make([]byte, expiryValueBytes+len(payload))
	binary.BigEndian.PutUint64(value, uint64(now.Add(b.ttl).Unix()))
	copy(value[expiryValueBytes:], payload)

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(exchangeBucket))
		if bucket == nil {
			return fmt.Errorf("exchange bucket missing")
		}
		return bucket.Put(exchangeKey(ex), value)
	})
}

// Recent returns up to limit unexpired exchanges, newest first.
func (b *boltJournal) Recent(limit int) ([]domain.Exchange, error) {
	if b == nil || b.db == nil || limit <= 0 {
		return nil, nil
	}

	now := b.now()
	out := make([]domain.Exchange, 0, limit)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(exchangeBucket))
		if bucket == nil {
			return fmt.Errorf("exchange bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && len(out) < limit; k, v = cursor.Prev() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				continue
			}
			var ex domain.Exchange
			if err := json.Unmarshal(v[expiryValueBytes:], &ex); err != nil {
				return fmt.Errorf("decode exchange %x: %w", k, err)
			}
			out = append(out, ex)
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes expired exchanges on a fixed cadence to avoid unbounded growth.
func (b *boltJournal) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(exchangeBucket))
		if bucket == nil {
			return fmt.Errorf("exchange bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func exchangeKey(ex domain.Exchange) []byte {
	key := make([]byte, 8, 8+len(ex.ID))
	binary.BigEndian.PutUint64(key, uint64(ex.At.UnixNano()))
	return append(key, ex.ID...)
}

// decodeExpiry decodes the expiry time from the stored value prefix.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
