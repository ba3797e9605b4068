package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	pebblestore "github.com/rzbill/pagelog/internal/storage/pebble"
)

func openDB(t *testing.T, dir string) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{Dir: dir, Sync: pebblestore.SyncAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	return db
}

func TestNextAssignsSequentialPaths(t *testing.T) {
	db := openDB(t, t.TempDir())
	t.Cleanup(func() { _ = db.Close() })
	c, err := Open(db)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	for i := uint64(0); i < 3; i++ {
		m, err := c.Next("/data", "seg")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if m.Seq != i {
			t.Fatalf("seq = %d, want %d", m.Seq, i)
		}
		if want := filepath.Join("/data", FileName("seg", i)); m.Path != want {
			t.Fatalf("path = %s, want %s", m.Path, want)
		}
	}
	if FileName("seg", 42) != "seg-00000042.log" {
		t.Fatalf("file name = %s", FileName("seg", 42))
	}

	list, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[2].Seq != 2 {
		t.Fatalf("list = %+v", list)
	}
	last, err := c.Last()
	if err != nil || last.Seq != 2 {
		t.Fatalf("last = %+v, %v", last, err)
	}
	got, err := c.Get(1)
	if err != nil || got.Path != list[1].Path {
		t.Fatalf("get = %+v, %v", got, err)
	}
	if _, err := c.Get(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSequenceSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	db := openDB(t, dir)
	c, err := Open(db)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := c.Next("d", "p"); err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db = openDB(t, dir)
	t.Cleanup(func() { _ = db.Close() })
	c, err = Open(db)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	m, err := c.Next("d", "p")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if m.Seq != 2 {
		t.Fatalf("seq after reopen = %d, want 2", m.Seq)
	}
}

func TestEmptyCatalog(t *testing.T) {
	db := openDB(t, t.TempDir())
	t.Cleanup(func() { _ = db.Close() })
	c, err := Open(db)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := c.Last(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	list, err := c.List(context.Background())
	if err != nil || len(list) != 0 {
		t.Fatalf("list = %v, %v", list, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = c.Next("d", "p")
	if _, err := c.List(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name string
		seq  uint64
		ok   bool
	}{
		{FileName("segment", 42), 42, true},
		{"segment-00000000.log", 0, true},
		{"segment-abc.log", 0, false},
		{"segment-00000001.tmp", 0, false},
		{"other-00000001.log", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, ok := ParseFileName("segment", tt.name)
			if ok != tt.ok || seq != tt.seq {
				t.Fatalf("ParseFileName(%q) = %d, %v", tt.name, seq, ok)
			}
		})
	}
}
