package pagewriter

import (
	"context"
	"time"
)

// DefaultQueueCapacity is used when NewQueue gets a negative capacity.
const DefaultQueueCapacity = 10000

type entryKind uint8

const (
	kindRecord entryKind = iota
	kindStop
)

// Entry is one queue element: either a record or the stop marker.
type Entry struct {
	kind   entryKind
	record any
}

// RecordEntry wraps a producer record.
func RecordEntry(record any) Entry { return Entry{kind: kindRecord, record: record} }

// StopEntry returns the stop marker. Any number of them may be enqueued.
func StopEntry() Entry { return Entry{kind: kindStop} }

// IsStop reports whether e is the stop marker.
func (e Entry) IsStop() bool { return e.kind == kindStop }

// Record returns the wrapped record (nil for the stop marker).
func (e Entry) Record() any { return e.record }

// Queue is a bounded FIFO shared by any number of producers and one worker.
type Queue struct {
	ch chan Entry
}

// NewQueue creates a queue holding up to capacity entries. A capacity of 0
// hands every entry directly to the worker.
func NewQueue(capacity int) *Queue {
	if capacity < 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{ch: make(chan Entry, capacity)}
}

// Put enqueues record, blocking while the queue is full or until ctx is done.
func (q *Queue) Put(ctx context.Context, record any) error {
	return q.put(ctx, RecordEntry(record))
}

// Offer enqueues record, waiting at most timeout for space. A non-positive
// timeout makes a single non-blocking attempt.
func (q *Queue) Offer(record any, timeout time.Duration) bool {
	return q.offer(RecordEntry(record), timeout)
}

// Take removes the oldest entry, blocking until one is available or ctx is done.
func (q *Queue) Take(ctx context.Context) (Entry, error) {
	select {
	case e := <-q.ch:
		return e, nil
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	}
}

// Len returns the number of queued entries.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return cap(q.ch) }

func (q *Queue) put(ctx context.Context, e Entry) error {
	select {
	case q.ch <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) offer(e Entry, timeout time.Duration) bool {
	if timeout <= 0 {
		return q.tryPut(e)
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case q.ch <- e:
		return true
	case <-t.C:
		return false
	}
}

func (q *Queue) tryPut(e Entry) bool {
	select {
	case q.ch <- e:
		return true
	default:
		return false
	}
}

// takeOrHalt is Take for the worker: a closed halt channel yields a stop entry.
func (q *Queue) takeOrHalt(ctx context.Context, halt <-chan struct{}) (Entry, error) {
	select {
	case e := <-q.ch:
		return e, nil
	case <-halt:
		return StopEntry(), nil
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	}
}
