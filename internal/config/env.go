package config

import (
	"os"
	"strconv"
)

// FromEnv overlays PAGELOG_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if n, ok := envInt("PAGELOG_PAGE_SIZE"); ok {
		cfg.PageSize = n
	}
	if n, ok := envInt("PAGELOG_FILE_SIZE"); ok {
		cfg.FileSize = n
	}
	if n, ok := envInt("PAGELOG_QUEUE_CAPACITY"); ok {
		cfg.QueueCapacity = n
	}
	if v := os.Getenv("PAGELOG_SEGMENT_PREFIX"); v != "" {
		cfg.SegmentPrefix = v
	}
	if v := os.Getenv("PAGELOG_NAMER"); v != "" {
		cfg.Namer = v
	}
	if v := os.Getenv("PAGELOG_SYNC"); v != "" {
		cfg.Sync = v
	}
	if v := os.Getenv("PAGELOG_SERIALIZER"); v != "" {
		cfg.Serializer = v
	}
	if v := os.Getenv("PAGELOG_FILTER"); v != "" {
		cfg.Filter = v
	}
	if n, ok := envInt("PAGELOG_STOP_TIMEOUT_MS"); ok {
		cfg.StopTimeoutMs = n
	}
	if v := os.Getenv("PAGELOG_AMQP_URL"); v != "" {
		cfg.AMQP.URL = v
	}
	if v := os.Getenv("PAGELOG_AMQP_QUEUE"); v != "" {
		cfg.AMQP.Queue = v
	}
	if n, ok := envInt("PAGELOG_AMQP_PREFETCH"); ok {
		cfg.AMQP.Prefetch = n
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
