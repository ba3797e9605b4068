// Package client provides the `pagelog` command-line client commands.
//
// The commands talk to a running server over gRPC (default) or the HTTP
// gateway, selected with --transport.
//
// # Address configuration
//
// The gRPC address is read from PAGELOG_GRPC (default 127.0.0.1:50051).
// The HTTP base URL comes from the embedding application via a BaseURLFunc;
// the standalone binary uses PAGELOG_HTTP or http://127.0.0.1:8080.
//
// Usage
//
//	pagelog append 'user signed up'
//	tail -f app.log | pagelog append --stdin
//	pagelog health --transport http
//	pagelog segments list
//	pagelog segments cat 3
package client
