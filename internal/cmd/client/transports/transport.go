// Package transports provides pluggable transport implementations for the CLI.
package transports

import "context"

// Segment is one catalog entry as reported by the server.
type Segment struct {
	Seq        uint64 `json:"seq"`
	Path       string `json:"path"`
	OpenedAtMs int64  `json:"openedAtMs"`
	// Size is only reported over HTTP; -1 when unknown.
	Size int64 `json:"size"`
}

// Transport abstracts the transport used by the CLI (gRPC/HTTP).
type Transport interface {
	Append(ctx context.Context, payload []byte) error
	Health(ctx context.Context) (string, error)
	Segments(ctx context.Context) ([]Segment, error)
}
