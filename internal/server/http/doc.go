// Package httpserver is the REST ingest gateway:
//
//	GET  /v1/healthz    writer and catalog health
//	POST /v1/records    raw body, ?split=lines, or {"payload": ...} / {"payloads": [...]}
//	GET  /v1/segments   catalog entries with current file sizes
//
// Example:
//
//	s := httpserver.New(rt, logger)
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
