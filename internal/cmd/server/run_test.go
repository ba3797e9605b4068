package serverrun

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/pagelog/internal/config"
	"github.com/rzbill/pagelog/internal/segment"
	pebblestore "github.com/rzbill/pagelog/internal/storage/pebble"
	logpkg "github.com/rzbill/pagelog/pkg/log"
)

func TestGetenvDefault(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		envValue string
		expected string
	}{
		{"environment variable set", "PAGELOG_TEST_VAR", "env_value", "env_value"},
		{"environment variable not set", "PAGELOG_TEST_VAR_NOT_SET", "", "default"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			} else {
				_ = os.Unsetenv(tt.key)
			}
			if got := getenvDefault(tt.key, "default"); got != tt.expected {
				t.Errorf("getenvDefault(%s) = %s, expected %s", tt.key, got, tt.expected)
			}
		})
	}
}

func TestProcessLoggerFallsBackOnBadConfig(t *testing.T) {
	t.Setenv("PAGELOG_LOG_LEVEL", "loud")
	t.Setenv("PAGELOG_LOG_FORMAT", "text")
	if processLogger() == nil {
		t.Fatal("expected a logger")
	}
}

func TestRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dir := t.TempDir()
	opts := Options{
		DataDir:     dir,
		GRPCAddr:    "127.0.0.1:0",
		HTTPAddr:    "127.0.0.1:0",
		CatalogSync: pebblestore.SyncNone,
		Config:      cfgpkg.Default(),
		Logger:      logpkg.NewNopLogger(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := Run(ctx, opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	// the writer opened and registered one segment before shutdown
	paths, err := segment.Glob(filepath.Join(dir, "segments"), "segment")
	if err != nil || len(paths) != 1 {
		t.Fatalf("segments = %v, %v", paths, err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.PageSize = -1
	err := Run(context.Background(), Options{DataDir: t.TempDir(), Config: cfg, Logger: logpkg.NewNopLogger()})
	if err == nil {
		t.Fatal("expected config error")
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	cfg := cfgpkg.Default()
	cfg.PageSize = 16
	cfg.FileSize = 32
	cfg.Filter = `!text.startsWith("#")`

	in := strings.NewReader("alpha\n# comment\n\nbravo charlie delta\necho\n")
	res, err := Write(context.Background(), dir, cfg, in, logpkg.NewNopLogger())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if res.Written != 3 || res.Filtered != 1 || res.Skipped != 1 {
		t.Fatalf("result = %+v", res)
	}

	paths, err := segment.Glob(filepath.Join(dir, "segments"), cfg.SegmentPrefix)
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	var lines []string
	for _, p := range paths {
		if err := segment.ReadLines(p, func(l []byte) error {
			lines = append(lines, string(l))
			return nil
		}); err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if strings.Join(lines, "|") != "alpha|bravo charlie delta|echo" {
		t.Fatalf("lines = %q", lines)
	}
}
