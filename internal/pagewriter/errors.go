package pagewriter

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSegment is reported when a page is flushed while no segment is open.
	ErrNoSegment = errors.New("pagewriter: no open segment")
	// ErrStopped is returned by Writer.Append once the writer is stopping.
	ErrStopped = errors.New("pagewriter: writer stopped")
	// ErrAlreadyStarted is returned when Run is called twice.
	ErrAlreadyStarted = errors.New("pagewriter: writer already started")
)

// SegmentError describes a failed segment operation (name, open, write,
// sync or close).
type SegmentError struct {
	Op   string
	Path string
	Err  error
}

func (e *SegmentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("pagewriter: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pagewriter: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }
