package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDataDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if got := DefaultDataDir(); got != "/custom/data/pagelog" {
		t.Fatalf("DefaultDataDir() = %s", got)
	}
}

func TestDefaultDataDirWithoutHome(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv("XDG_DATA_HOME", "/ignored")
	if got := DefaultDataDir(); got != "./data" {
		t.Fatalf("expected ./data fallback, got %s", got)
	}
}

func TestDefaultDataDirShape(t *testing.T) {
	got := DefaultDataDir()
	if got == "" {
		t.Fatal("empty data dir")
	}
	if !filepath.IsAbs(got) && !strings.HasPrefix(got, "./") {
		t.Fatalf("expected absolute or ./ path, got %s", got)
	}
	if !strings.HasSuffix(got, "pagelog") && got != "./data" {
		t.Fatalf("expected a pagelog directory, got %s", got)
	}
	if again := DefaultDataDir(); again != got {
		t.Fatalf("not stable: %s then %s", got, again)
	}
}

func TestDirChecks(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "segment-00000000.log")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		dir      bool
		writable bool
	}{
		{"directory", dir, true, true},
		{"file", file, false, false},
		{"missing", filepath.Join(dir, "missing"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDir(tt.path); got != tt.dir {
				t.Fatalf("isDir(%s) = %v", tt.path, got)
			}
			if got := isWritableDir(tt.path); got != tt.writable {
				t.Fatalf("isWritableDir(%s) = %v", tt.path, got)
			}
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %d entries", len(entries))
	}
}
