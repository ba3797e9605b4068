// Package log is the structured logger used across pagelog.
//
// Logger has leveled methods taking Fields; records go through a log/slog
// handler into a Formatter (text or JSON) and one or more Outputs.
//
//	l := log.NewLogger(log.WithLevel(log.InfoLevel))
//	l = l.WithComponent("pagewriter")
//	l.Info("segment opened", log.Str(log.SegmentKey, "/var/lib/pagelog/segments/segment-00000000.log"))
//
// ApplyConfig builds a Logger from a Config (level, format, outputs,
// redaction, sampling). RedirectStdLog sends the standard library logger,
// which Pebble writes to, through a Logger.
package log
