// Package pagewriter implements pagelog's asynchronous, page-buffered segment
// writer.
//
// # Overview
//
// Producers enqueue arbitrary records on a Queue. A single worker goroutine
// (Writer.Run) takes them in FIFO order, serializes each into a line, packs
// lines into one reusable page buffer of Options.PageSize bytes and writes a
// page to the open segment file whenever it fills. After
// FileSize/PageSize page writes the segment is closed and the next one is
// opened through the SegmentNamer.
//
//	var n int
//	q := pagewriter.NewQueue(10000)
//	w, _ := pagewriter.New(q, pagewriter.Options{
//	    PageSize: 4096,
//	    FileSize: 512 << 20,
//	    Namer: pagewriter.NamerFunc(func() (string, error) {
//	        n++
//	        return fmt.Sprintf("/var/lib/pagelog/segments/segment-%08d.log", n), nil
//	    }),
//	})
//	go w.Run(ctx)
//	_ = q.Put(ctx, "hello")
//	_ = w.SafeStop(ctx) // everything enqueued before this call is on disk
//
// # Page rules
//
// For a line of n bytes and r bytes left in the page:
//   - n > PageSize: the line is split across as many pages as needed and the
//     trailing partial page is written as well.
//   - n > r: the current page is written, the line starts the next page.
//   - n == r: the line completes the page, which is written.
//   - otherwise the line is buffered.
//
// Only the filled prefix of a page is written, so a segment is exactly the
// concatenation of its lines. The pages of one record always land in the
// same segment.
//
// # Shutdown
//
// SafeStop enqueues a stop entry behind all pending records and waits for the
// worker to flush and close. UnsafeStop flips the running flag and returns
// at once; queued records behind it are abandoned. Both are idempotent.
//
// # Errors
//
// I/O failures never stop the worker. They are handed to the ErrorSink
// (a LogSink by default); a failed page is dropped, a failed open is retried
// with a fresh path after a short backoff.
package pagewriter
