// Package config provides loading and environment overlay for pagelog
// configuration. It exposes a Default() baseline, JSON file loading and a
// PAGELOG_* environment overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/pagelog.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil { /* handle */ }
//	rt, _ := runtime.Open(runtime.Options{DataDir: "/var/lib/pagelog", Config: cfg})
package config
