// Package runtime wires a pagelog instance for one data directory: the
// Pebble segment catalog, the page writer and the ingest service in front
// of it.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Config: config.Default()})
//	_ = rt.Start(ctx)
//	_ = rt.Ingest().Append(ctx, []byte("hello"))
//	_ = rt.Stop(ctx) // drains the queue, closes the segment and the catalog
package runtime
