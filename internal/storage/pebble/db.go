package pebblestore

import (
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"

	logpkg "github.com/rzbill/pagelog/pkg/log"
)

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = pebble.ErrNotFound

// SyncPolicy decides when committed batches reach the WAL on disk.
type SyncPolicy int

const (
	// SyncGrouped coalesces WAL syncs within SyncInterval (default 5ms).
	SyncGrouped SyncPolicy = iota
	// SyncAlways syncs the WAL on every commit.
	SyncAlways
	// SyncNone leaves WAL syncing to Pebble.
	SyncNone
)

// Options configures the store.
type Options struct {
	// Dir is the Pebble database directory.
	Dir          string
	Sync         SyncPolicy
	SyncInterval time.Duration
	// Logger receives Pebble's internal log lines. Optional.
	Logger logpkg.Logger
	// PebbleOptions allows advanced tuning. Nil uses Pebble defaults.
	PebbleOptions *pebble.Options
	// Hooks observes commit and read sizes. Optional.
	Hooks Hooks
}

// Hooks lets callers observe store traffic.
type Hooks interface {
	OnCommit(elapsed time.Duration, bytes int)
	OnRead(elapsed time.Duration, bytes int)
}

type noHooks struct{}

func (noHooks) OnCommit(time.Duration, int) {}
func (noHooks) OnRead(time.Duration, int)   {}

// DB is a Pebble database with a fixed commit sync policy.
type DB struct {
	inner *pebble.DB
	sync  bool
	hooks Hooks
}

// Open creates or opens the database in opts.Dir.
func Open(opts Options) (*DB, error) {
	if opts.Dir == "" {
		return nil, errors.New("pebblestore: Options.Dir is required")
	}
	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	if opts.Logger != nil {
		po.Logger = pebbleLogger{opts.Logger.WithComponent("pebble")}
	}
	switch opts.Sync {
	case SyncGrouped:
		interval := opts.SyncInterval
		if interval <= 0 {
			interval = 5 * time.Millisecond
		}
		po.WALMinSyncInterval = func() time.Duration { return interval }
	case SyncAlways, SyncNone:
	default:
		return nil, fmt.Errorf("pebblestore: unknown sync policy %d", opts.Sync)
	}

	inner, err := pebble.Open(opts.Dir, po)
	if err != nil {
		return nil, fmt.Errorf("pebblestore: open %s: %w", opts.Dir, err)
	}
	hooks := opts.Hooks
	if hooks == nil {
		hooks = noHooks{}
	}
	return &DB{inner: inner, sync: opts.Sync != SyncNone, hooks: hooks}, nil
}

// Close closes the database. Closing a nil DB is a no-op.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

// NewBatch starts an atomic multi-key update.
func (db *DB) NewBatch() *pebble.Batch { return db.inner.NewBatch() }

// Commit applies b with the configured sync policy. The caller still owns b.
func (db *DB) Commit(b *pebble.Batch) error {
	if b == nil {
		return errors.New("pebblestore: nil batch")
	}
	start := time.Now()
	size := b.Len()
	opt := pebble.NoSync
	if db.sync {
		opt = pebble.Sync
	}
	err := b.Commit(opt)
	db.hooks.OnCommit(time.Since(start), size)
	return err
}

// Set writes one key.
func (db *DB) Set(key, value []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Set(key, value, nil); err != nil {
		return err
	}
	return db.Commit(b)
}

// Delete removes one key.
func (db *DB) Delete(key []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Delete(key, nil); err != nil {
		return err
	}
	return db.Commit(b)
}

// Get returns a copy of the value for key, or ErrNotFound.
func (db *DB) Get(key []byte) ([]byte, error) {
	start := time.Now()
	val, closer, err := db.inner.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	out := append([]byte(nil), val...)
	db.hooks.OnRead(time.Since(start), len(out))
	return out, nil
}

// Scan calls fn for every key with the given prefix in ascending order.
// Key and value slices are only valid during the call. A non-nil error from
// fn stops the scan and is returned.
func (db *DB) Scan(prefix []byte, fn func(key, value []byte) error) error {
	it, err := db.inner.NewIter(prefixBounds(prefix))
	if err != nil {
		return err
	}
	defer it.Close()
	for ok := it.First(); ok; ok = it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}

// Last returns copies of the greatest key with the given prefix and its
// value, or ErrNotFound.
func (db *DB) Last(prefix []byte) ([]byte, []byte, error) {
	it, err := db.inner.NewIter(prefixBounds(prefix))
	if err != nil {
		return nil, nil, err
	}
	defer it.Close()
	if !it.Last() {
		if err := it.Error(); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrNotFound
	}
	return append([]byte(nil), it.Key()...), append([]byte(nil), it.Value()...), nil
}

func prefixBounds(prefix []byte) *pebble.IterOptions {
	return &pebble.IterOptions{LowerBound: prefix, UpperBound: prefixEnd(prefix)}
}

// prefixEnd is the smallest key greater than every key with prefix, or nil
// when prefix is all 0xff.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

type pebbleLogger struct{ l logpkg.Logger }

// Pebble's informational output is chatty; it goes to debug.
func (p pebbleLogger) Infof(format string, args ...interface{})  { p.l.Debugf(format, args...) }
func (p pebbleLogger) Errorf(format string, args ...interface{}) { p.l.Errorf(format, args...) }
func (p pebbleLogger) Fatalf(format string, args ...interface{}) { p.l.Fatalf(format, args...) }
