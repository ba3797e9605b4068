package pagewriter

import (
	"context"
)

// State is the writer lifecycle: Running -> Stopping -> Stopped.
type State int

const (
	StateRunning State = iota
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// State reports the current lifecycle state.
func (w *Writer) State() State {
	select {
	case <-w.done:
		return StateStopped
	default:
	}
	if w.running.Load() {
		return StateRunning
	}
	return StateStopping
}

// SafeStop enqueues a stop entry behind every pending record and waits for
// the worker to write them all and close the segment. If ctx ends first it
// returns ctx.Err() and the stop is best-effort: an enqueued stop entry is
// still honoured later. Calling SafeStop after the worker finished returns nil.
func (w *Writer) SafeStop(ctx context.Context) error {
	select {
	case w.queue.ch <- StopEntry():
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UnsafeStop tells the worker to stop after the record it is processing.
// It never blocks. Records still queued are left in the queue.
func (w *Writer) UnsafeStop() {
	w.running.Store(false)
	w.haltOnce.Do(func() { close(w.halt) })
	w.queue.tryPut(StopEntry())
}

// shutdown runs on the worker: clear the running flag, write the partial
// page, close the segment and release SafeStop callers. Repeated calls only
// re-flush an empty page.
func (w *Writer) shutdown() {
	w.running.Store(false)
	w.page.flush(w.writePage)
	w.closeSegment()
	w.doneOnce.Do(func() {
		close(w.done)
		w.logger.Info("writer stopped")
	})
}
