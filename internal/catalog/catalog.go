package catalog

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	pebblestore "github.com/rzbill/pagelog/internal/storage/pebble"
)

// ErrNotFound is returned when no segment matches.
var ErrNotFound = errors.New("catalog: segment not found")

// Meta describes one segment.
type Meta struct {
	Seq        uint64 `json:"seq"`
	Path       string `json:"path"`
	OpenedAtMs int64  `json:"openedAtMs"`
}

// FileName is the segment file name for prefix and seq: prefix-00000042.log.
func FileName(prefix string, seq uint64) string {
	return fmt.Sprintf("%s-%08d.log", prefix, seq)
}

// ParseFileName is the inverse of FileName for a base name.
func ParseFileName(prefix, name string) (uint64, bool) {
	digits, ok := strings.CutPrefix(name, prefix+"-")
	if !ok {
		return 0, false
	}
	if digits, ok = strings.CutSuffix(digits, ".log"); !ok {
		return 0, false
	}
	seq, err := strconv.ParseUint(digits, 10, 64)
	return seq, err == nil
}

// Catalog allocates segment sequence numbers and stores their metadata.
type Catalog struct {
	db *pebblestore.DB

	mu   sync.Mutex
	next uint64
	now  func() time.Time
}

// Open loads the next sequence number from db.
func Open(db *pebblestore.DB) (*Catalog, error) {
	if db == nil {
		return nil, errors.New("catalog: nil db")
	}
	c := &Catalog{db: db, now: time.Now}
	v, err := db.Get(metaKey)
	switch {
	case err == nil && len(v) >= 8:
		c.next = binary.BigEndian.Uint64(v[:8])
	case err == nil:
		return nil, fmt.Errorf("catalog: corrupt meta (%d bytes)", len(v))
	case !errors.Is(err, pebblestore.ErrNotFound):
		return nil, fmt.Errorf("catalog: load meta: %w", err)
	}
	return c, nil
}

// Next allocates the next sequence number and records a segment under dir
// named with prefix. The entry and the counter are committed in one batch.
func (c *Catalog) Next(dir, prefix string) (Meta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := Meta{
		Seq:        c.next,
		Path:       filepath.Join(dir, FileName(prefix, c.next)),
		OpenedAtMs: c.now().UnixMilli(),
	}
	val, err := json.Marshal(m)
	if err != nil {
		return Meta{}, err
	}

	b := c.db.NewBatch()
	defer b.Close()
	if err := b.Set(entryKey(m.Seq), val, nil); err != nil {
		return Meta{}, err
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], m.Seq+1)
	if err := b.Set(metaKey, meta[:], nil); err != nil {
		return Meta{}, err
	}
	if err := c.db.Commit(b); err != nil {
		return Meta{}, fmt.Errorf("catalog: commit segment %d: %w", m.Seq, err)
	}
	c.next = m.Seq + 1
	return m, nil
}

// Get returns the segment with sequence seq.
func (c *Catalog) Get(seq uint64) (Meta, error) {
	v, err := c.db.Get(entryKey(seq))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return Meta{}, ErrNotFound
	}
	if err != nil {
		return Meta{}, err
	}
	return decode(v)
}

// Last returns the most recently allocated segment.
func (c *Catalog) Last() (Meta, error) {
	_, v, err := c.db.Last(entryPrefix)
	if errors.Is(err, pebblestore.ErrNotFound) {
		return Meta{}, ErrNotFound
	}
	if err != nil {
		return Meta{}, err
	}
	return decode(v)
}

// List returns all segments in sequence order.
func (c *Catalog) List(ctx context.Context) ([]Meta, error) {
	var out []Meta
	err := c.db.Scan(entryPrefix, func(k, v []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := seqFromKey(k); !ok {
			return nil
		}
		m, err := decode(v)
		if err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func decode(v []byte) (Meta, error) {
	var m Meta
	if err := json.Unmarshal(v, &m); err != nil {
		return Meta{}, fmt.Errorf("catalog: decode meta: %w", err)
	}
	return m, nil
}
