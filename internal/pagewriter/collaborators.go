package pagewriter

import (
	"errors"
	"fmt"

	logpkg "github.com/rzbill/pagelog/pkg/log"
)

// Serializer turns one record into one line, terminator included.
// It is called on the worker goroutine, once per record.
type Serializer interface {
	Serialize(record any) ([]byte, error)
}

// SerializerFunc adapts a function to Serializer.
type SerializerFunc func(record any) ([]byte, error)

func (f SerializerFunc) Serialize(record any) ([]byte, error) { return f(record) }

// SegmentNamer supplies the path of every new segment. It is called exactly
// once per segment, including the first one.
type SegmentNamer interface {
	NextPath() (string, error)
}

// NamerFunc adapts a function to SegmentNamer.
type NamerFunc func() (string, error)

func (f NamerFunc) NextPath() (string, error) { return f() }

// ErrorSink receives I/O failures on the worker goroutine. It must not block.
type ErrorSink interface {
	OnError(err error)
}

// ErrorSinkFunc adapts a function to ErrorSink.
type ErrorSinkFunc func(err error)

func (f ErrorSinkFunc) OnError(err error) { f(err) }

// LogSink reports errors through a Logger at error level.
type LogSink struct {
	Logger logpkg.Logger
}

func (s LogSink) OnError(err error) {
	fields := []logpkg.Field{logpkg.Err(err)}
	var segErr *SegmentError
	if errors.As(err, &segErr) {
		fields = append(fields, logpkg.Str("op", segErr.Op), logpkg.Str(logpkg.SegmentKey, segErr.Path))
	}
	s.Logger.Error("segment write failed", fields...)
}

// lineSerializer renders records with fmt and appends a newline.
func lineSerializer(record any) ([]byte, error) {
	var line []byte
	switch v := record.(type) {
	case []byte:
		line = append(line, v...)
	case string:
		line = append(line, v...)
	case fmt.Stringer:
		line = append(line, v.String()...)
	default:
		line = fmt.Append(line, v)
	}
	return append(line, '\n'), nil
}
