package id

import (
	"sort"
	"sync/atomic"
	"testing"
	"time"
)

func fixedClock(ms *atomic.Int64) func() int64 { return ms.Load }

func TestNextIsStrictlyIncreasing(t *testing.T) {
	var clock atomic.Int64
	clock.Store(1000)
	g := NewGeneratorWithClock(fixedClock(&clock))

	tests := []struct {
		name string
		ms   int64
	}{
		{"same millisecond", 1000},
		{"clock forward", 1005},
		{"clock backwards", 900},
	}
	prev := g.Next()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.Store(tt.ms)
			next := g.Next()
			if prev.Compare(next) >= 0 {
				t.Fatalf("%s not after %s", next, prev)
			}
			prev = next
		})
	}
	if prev.Time().UnixMilli() != 1005 || prev.Sequence() != 1 {
		t.Fatalf("regressed id should pin to last ms: time %d seq %d", prev.Time().UnixMilli(), prev.Sequence())
	}
}

func TestSequenceWrapWaitsForNextMs(t *testing.T) {
	var clock atomic.Int64
	clock.Store(2000)
	g := NewGeneratorWithClock(fixedClock(&clock))
	g.lastMs = 2000
	g.seq = ^uint64(0)

	got := make(chan ID, 1)
	go func() { got <- g.Next() }()
	time.AfterFunc(10*time.Millisecond, func() { clock.Store(2001) })

	select {
	case id := <-got:
		if id.Time().UnixMilli() != 2001 || id.Sequence() != 0 {
			t.Fatalf("time %d seq %d", id.Time().UnixMilli(), id.Sequence())
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for the next millisecond")
	}
}

func TestHexSortsLikeIDs(t *testing.T) {
	g := NewGenerator()
	names := make([]string, 50)
	for i := range names {
		names[i] = g.Next().String()
	}
	if !sort.StringsAreSorted(names) {
		t.Fatal("hex names out of creation order")
	}
}

func TestParseHexRoundTrip(t *testing.T) {
	var clock atomic.Int64
	clock.Store(1_700_000_000_123)
	g := NewGeneratorWithClock(fixedClock(&clock))
	g.Next()
	want := g.Next()

	got, err := ParseHex(want.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
	if got.Time().UnixMilli() != 1_700_000_000_123 || got.Sequence() != 1 {
		t.Fatalf("time %v seq %d", got.Time(), got.Sequence())
	}
	for _, bad := range []string{"", "abc", "zz" + want.String()[2:]} {
		if _, err := ParseHex(bad); err == nil {
			t.Fatalf("ParseHex(%q) should fail", bad)
		}
	}
}
