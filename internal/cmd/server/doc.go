// Package serverrun holds the long-running entry points used by the CLI:
// Run starts the writer behind gRPC, HTTP and the optional AMQP source and
// handles shutdown; Write feeds a reader's lines straight into segments.
//
// Example:
//
//	opts := serverrun.Options{DataDir: "./data", GRPCAddr: ":50051", HTTPAddr: ":8080", Config: config.Default()}
//	_ = serverrun.Run(ctx, opts)
package serverrun
