package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Segment naming strategies.
const (
	NamerCatalog  = "catalog"
	NamerSequence = "sequence"
	NamerUnique   = "unique"
)

// Sync modes for segment durability.
const (
	SyncNever  = "never"
	SyncPage   = "page"
	SyncRotate = "rotate"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// PageSize is the number of bytes buffered before a write hits the segment.
	PageSize int `json:"pageSize"`
	// FileSize is the segment budget; FileSize/PageSize pages per segment.
	FileSize      int    `json:"fileSize"`
	QueueCapacity int    `json:"queueCapacity"`
	SegmentPrefix string `json:"segmentPrefix"`
	// Namer picks how segment paths are allocated: catalog (persistent
	// sequence in the catalog store), sequence (continues after the highest
	// file on disk) or unique (time-sortable ids).
	Namer      string `json:"namer"`
	Sync       string `json:"sync"`
	Serializer string `json:"serializer"`
	// Filter is an optional CEL expression; records it rejects are dropped at ingest.
	Filter        string `json:"filter"`
	StopTimeoutMs int    `json:"stopTimeoutMs"`
	AMQP          AMQP   `json:"amqp"`
}

// AMQP configures the optional broker source. Disabled when URL is empty.
type AMQP struct {
	URL      string `json:"url"`
	Queue    string `json:"queue"`
	Prefetch int    `json:"prefetch"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		PageSize:      4096,
		FileSize:      512 << 20,
		QueueCapacity: 10000,
		SegmentPrefix: "segment",
		Namer:         NamerCatalog,
		Sync:          SyncNever,
		Serializer:    "text",
		StopTimeoutMs: 5000,
		AMQP:          AMQP{Queue: "pagelog", Prefetch: 64},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("config: pageSize must be positive, got %d", c.PageSize)
	}
	if c.FileSize <= 0 {
		return fmt.Errorf("config: fileSize must be positive, got %d", c.FileSize)
	}
	if c.FileSize < c.PageSize {
		return fmt.Errorf("config: fileSize (%d) smaller than pageSize (%d)", c.FileSize, c.PageSize)
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("config: queueCapacity must not be negative")
	}
	switch c.Namer {
	case "", NamerCatalog, NamerSequence, NamerUnique:
	default:
		return fmt.Errorf("config: unknown namer %q", c.Namer)
	}
	switch c.Sync {
	case "", SyncNever, SyncPage, SyncRotate:
	default:
		return fmt.Errorf("config: unknown sync mode %q", c.Sync)
	}
	return nil
}

// Load reads configuration from a JSON file. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, errors.New("yaml config not supported; use JSON")
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
