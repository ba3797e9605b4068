package id

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sync"
	"time"
)

// ID is [8 bytes unix ms][8 bytes sequence], big-endian.
type ID [16]byte

// Bytes returns a copy of the 16 raw bytes.
func (i ID) Bytes() []byte { return append([]byte(nil), i[:]...) }

// String is the 32-character lowercase hex form.
func (i ID) String() string { return hex.EncodeToString(i[:]) }

// Time is the embedded millisecond timestamp.
func (i ID) Time() time.Time {
	return time.UnixMilli(int64(binary.BigEndian.Uint64(i[:8])))
}

// Sequence is the embedded per-millisecond counter.
func (i ID) Sequence() uint64 { return binary.BigEndian.Uint64(i[8:]) }

// Compare orders IDs byte-wise, which is creation order.
func (i ID) Compare(other ID) int { return bytes.Compare(i[:], other[:]) }

// ParseHex decodes the form produced by String.
func ParseHex(s string) (ID, error) {
	var out ID
	if len(s) != hex.EncodedLen(len(out)) {
		return out, fmt.Errorf("id: want %d hex chars, got %d", hex.EncodedLen(len(out)), len(s))
	}
	if _, err := hex.Decode(out[:], []byte(s)); err != nil {
		return out, fmt.Errorf("id: %w", err)
	}
	return out, nil
}

// Generator hands out strictly increasing IDs. Safe for concurrent use.
type Generator struct {
	now func() int64

	mu     sync.Mutex
	lastMs int64
	seq    uint64
}

// NewGenerator uses the wall clock.
func NewGenerator() *Generator {
	return NewGeneratorWithClock(func() int64 { return time.Now().UnixMilli() })
}

// NewGeneratorWithClock uses now (unix ms) as its time source.
func NewGeneratorWithClock(now func() int64) *Generator {
	return &Generator{now: now}
}

// Next returns the next ID. A clock that moves backwards is ignored; a
// sequence that would wrap waits for the next millisecond.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := max(g.now(), g.lastMs)
	switch {
	case ms > g.lastMs:
		g.seq = 0
	case g.seq < math.MaxUint64:
		g.seq++
	default:
		for ms <= g.lastMs {
			time.Sleep(time.Millisecond / 8)
			ms = g.now()
		}
		g.seq = 0
	}
	g.lastMs = ms

	var out ID
	binary.BigEndian.PutUint64(out[:8], uint64(ms))
	binary.BigEndian.PutUint64(out[8:], g.seq)
	return out
}
