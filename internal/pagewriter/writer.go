package pagewriter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	logpkg "github.com/rzbill/pagelog/pkg/log"
)

// Writer drains a Queue into page-buffered, rotating segment files.
// Run executes the worker; every other method is safe for concurrent use.
type Writer struct {
	opts          Options
	maxWriteCount int
	queue         *Queue
	logger        logpkg.Logger

	running atomic.Bool
	started atomic.Bool

	halt     chan struct{}
	haltOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once

	// owned by the worker goroutine
	page *page
	seg  *segment
}

// New builds a Writer consuming q.
func New(q *Queue, opts Options) (*Writer, error) {
	if q == nil {
		return nil, fmt.Errorf("pagewriter: nil queue")
	}
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	w := &Writer{
		opts:          o,
		maxWriteCount: o.MaxWriteCount(),
		queue:         q,
		logger:        o.Logger.With(logpkg.Component("pagewriter")),
		halt:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	w.running.Store(true)
	return w, nil
}

// Queue returns the queue the writer consumes.
func (w *Writer) Queue() *Queue { return w.queue }

// Append enqueues record unless the writer is already stopping.
func (w *Writer) Append(ctx context.Context, record any) error {
	if !w.running.Load() {
		return ErrStopped
	}
	return w.queue.Put(ctx, record)
}

// Done is closed once the worker has flushed its last page and closed its
// segment.
func (w *Writer) Done() <-chan struct{} { return w.done }

// Run executes the worker loop until a stop entry is processed, UnsafeStop is
// called or ctx is cancelled. It returns nil after a stop and ctx.Err() after
// cancellation; in every case the partial page is flushed first.
func (w *Writer) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	w.page = newPage(w.opts.PageSize)
	defer w.shutdown()

	w.logger.Info("writer started",
		logpkg.Int("page_size", w.opts.PageSize),
		logpkg.Int("pages_per_segment", w.maxWriteCount),
		logpkg.Str("sync", w.opts.Sync.String()),
	)

	var backoff time.Duration
	for w.running.Load() {
		if err := w.openNext(); err != nil {
			w.opts.ErrorSink.OnError(err)
			backoff = w.nextBackoff(backoff)
			if err := w.pause(ctx, backoff); err != nil {
				return err
			}
			continue
		}
		backoff = 0
		if err := w.drainSegment(ctx); err != nil {
			return err
		}
	}
	return nil
}

// drainSegment processes entries until the open segment is full or the
// writer stops.
func (w *Writer) drainSegment(ctx context.Context) error {
	for {
		e, err := w.queue.takeOrHalt(ctx, w.halt)
		if err != nil {
			return err
		}
		if e.IsStop() {
			w.shutdown()
		} else {
			w.seg.pages += w.accumulate(e.record)
		}
		if w.seg != nil && w.seg.pages >= w.maxWriteCount {
			w.closeSegment()
			return nil
		}
		if !w.running.Load() {
			return nil
		}
	}
}

func (w *Writer) accumulate(record any) int {
	line, err := w.opts.Serializer.Serialize(record)
	if err != nil {
		w.opts.ErrorSink.OnError(fmt.Errorf("pagewriter: serialize record: %w", err))
		return 0
	}
	return w.page.add(line, w.writePage)
}

// writePage writes one page to the open segment. Failures are reported and
// the bytes are dropped.
func (w *Writer) writePage(b []byte) {
	if len(b) == 0 {
		return
	}
	if w.seg == nil {
		w.opts.ErrorSink.OnError(&SegmentError{Op: "write", Err: ErrNoSegment})
		return
	}
	if err := w.seg.write(b); err != nil {
		w.opts.ErrorSink.OnError(err)
		return
	}
	if w.opts.Sync == SyncPage {
		if err := w.seg.sync(); err != nil {
			w.opts.ErrorSink.OnError(err)
		}
	}
}

func (w *Writer) openNext() error {
	path, err := w.opts.Namer.NextPath()
	if err != nil {
		return &SegmentError{Op: "name", Err: err}
	}
	seg, err := openSegment(path)
	if err != nil {
		return err
	}
	w.seg = seg
	w.logger.Debug("segment opened", logpkg.Str(logpkg.SegmentKey, path))
	return nil
}

func (w *Writer) closeSegment() {
	if w.seg == nil {
		return
	}
	seg := w.seg
	w.seg = nil
	if w.opts.Sync == SyncRotate {
		if err := seg.sync(); err != nil {
			w.opts.ErrorSink.OnError(err)
		}
	}
	if err := seg.close(); err != nil {
		w.opts.ErrorSink.OnError(err)
	}
	w.logger.Debug("segment closed", logpkg.Str(logpkg.SegmentKey, seg.path), logpkg.Int("pages", seg.pages))
}

func (w *Writer) nextBackoff(prev time.Duration) time.Duration {
	if prev <= 0 {
		return w.opts.OpenBackoff
	}
	if next := prev * 2; next < w.opts.MaxOpenBackoff {
		return next
	}
	return w.opts.MaxOpenBackoff
}

// pause waits d, returning early on UnsafeStop (nil) or ctx (ctx.Err()).
func (w *Writer) pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-w.halt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
