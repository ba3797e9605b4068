package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rzbill/pagelog/internal/catalog"
	cfgpkg "github.com/rzbill/pagelog/internal/config"
	"github.com/rzbill/pagelog/internal/filter"
	"github.com/rzbill/pagelog/internal/ingest"
	"github.com/rzbill/pagelog/internal/namer"
	"github.com/rzbill/pagelog/internal/pagewriter"
	"github.com/rzbill/pagelog/internal/segment"
	"github.com/rzbill/pagelog/internal/serializer"
	pebblestore "github.com/rzbill/pagelog/internal/storage/pebble"
	logpkg "github.com/rzbill/pagelog/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir     string
	Config      cfgpkg.Config
	Logger      logpkg.Logger
	CatalogSync pebblestore.SyncPolicy
	// ErrorSink overrides where writer I/O errors go. Defaults to the logger.
	ErrorSink pagewriter.ErrorSink
}

// Runtime wires the catalog store, the page writer and the ingest service
// for a single data directory.
type Runtime struct {
	cfg    cfgpkg.Config
	logger logpkg.Logger
	segDir string

	db      *pebblestore.DB
	catalog *catalog.Catalog
	writer  *pagewriter.Writer
	ingest  *ingest.Service

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	runErr  chan error

	stopOnce sync.Once
	stopErr  error
}

// Open validates the config and opens <DataDir>/catalog. Segments are
// written under <DataDir>/segments once Start is called.
func Open(opts Options) (*Runtime, error) {
	if opts.DataDir == "" {
		return nil, errors.New("runtime: Options.DataDir is required")
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}

	ser, err := serializer.ByName(cfg.Serializer)
	if err != nil {
		return nil, err
	}
	flt, err := filter.New(cfg.Filter)
	if err != nil {
		return nil, err
	}
	syncMode, err := pagewriter.ParseSyncMode(cfg.Sync)
	if err != nil {
		return nil, err
	}

	db, err := pebblestore.Open(pebblestore.Options{
		Dir:    filepath.Join(opts.DataDir, "catalog"),
		Sync:   opts.CatalogSync,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Open(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	segDir := filepath.Join(opts.DataDir, "segments")
	nm, err := newNamer(cfg, segDir, cat)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	w, err := pagewriter.New(pagewriter.NewQueue(cfg.QueueCapacity), pagewriter.Options{
		PageSize:   cfg.PageSize,
		FileSize:   cfg.FileSize,
		Sync:       syncMode,
		Namer:      nm,
		Serializer: ser,
		ErrorSink:  opts.ErrorSink,
		Logger:     logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Runtime{
		cfg:     cfg,
		logger:  logger.WithComponent("runtime"),
		segDir:  segDir,
		db:      db,
		catalog: cat,
		writer:  w,
		ingest:  ingest.New(w, flt, logger),
	}, nil
}

func newNamer(cfg cfgpkg.Config, segDir string, cat *catalog.Catalog) (pagewriter.SegmentNamer, error) {
	switch cfg.Namer {
	case "", cfgpkg.NamerCatalog:
		return &namer.Cataloged{Dir: segDir, Prefix: cfg.SegmentPrefix, Catalog: cat}, nil
	case cfgpkg.NamerSequence:
		return namer.ResumeSequence(segDir, cfg.SegmentPrefix)
	case cfgpkg.NamerUnique:
		return &namer.Unique{Dir: segDir, Prefix: cfg.SegmentPrefix}, nil
	default:
		return nil, fmt.Errorf("runtime: unknown namer %q", cfg.Namer)
	}
}

// Start launches the writer worker. Cancelling ctx does not stop it; use Stop.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return pagewriter.ErrAlreadyStarted
	}
	r.started = true
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel
	r.runErr = make(chan error, 1)
	go func() { r.runErr <- r.writer.Run(runCtx) }()
	r.logger.Info("runtime started", logpkg.Str("segments", r.segDir))
	return nil
}

// Stop drains the queue with a graceful stop bounded by ctx. If ctx ends
// first the writer is stopped without draining. The catalog is closed last.
// Stop is idempotent.
func (r *Runtime) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() { r.stopErr = r.stop(ctx) })
	return r.stopErr
}

func (r *Runtime) stop(ctx context.Context) error {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()

	var stopErr error
	if started {
		if err := r.writer.SafeStop(ctx); err != nil {
			r.logger.Warn("graceful stop timed out; dropping queued records",
				logpkg.Err(err), logpkg.Int("queued", r.writer.Queue().Len()))
			r.writer.UnsafeStop()
			stopErr = err
		}
		<-r.writer.Done()
		r.cancel()
		if err := <-r.runErr; err != nil && !errors.Is(err, context.Canceled) {
			stopErr = errors.Join(stopErr, err)
		}
	} else {
		r.writer.UnsafeStop()
	}
	if err := r.db.Close(); err != nil {
		stopErr = errors.Join(stopErr, fmt.Errorf("runtime: close catalog: %w", err))
	}
	r.logger.Info("runtime stopped")
	return stopErr
}

// CheckHealth reports an error when the writer is not running or the
// catalog cannot be read.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st := r.writer.State(); st != pagewriter.StateRunning {
		return fmt.Errorf("runtime: writer %s", st)
	}
	if _, err := r.catalog.Last(); err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return err
	}
	return nil
}

// Segments lists the segments in creation order. With the catalog namer it
// reads the catalog; otherwise it scans the segment directory, taking Seq
// from the file name when it has one and the listing position when not.
func (r *Runtime) Segments(ctx context.Context) ([]catalog.Meta, error) {
	if r.cfg.Namer == "" || r.cfg.Namer == cfgpkg.NamerCatalog {
		return r.catalog.List(ctx)
	}
	paths, err := segment.Glob(r.segDir, r.cfg.SegmentPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Meta, 0, len(paths))
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seq, ok := catalog.ParseFileName(r.cfg.SegmentPrefix, filepath.Base(p))
		if !ok {
			seq = uint64(i)
		}
		m := catalog.Meta{Seq: seq, Path: p}
		if fi, err := os.Stat(p); err == nil {
			m.OpenedAtMs = fi.ModTime().UnixMilli()
		}
		out = append(out, m)
	}
	return out, nil
}

// Catalog returns the segment catalog.
func (r *Runtime) Catalog() *catalog.Catalog { return r.catalog }

// Ingest returns the ingest service.
func (r *Runtime) Ingest() *ingest.Service { return r.ingest }

// Writer returns the page writer.
func (r *Runtime) Writer() *pagewriter.Writer { return r.writer }

// SegmentDir is where segment files are created.
func (r *Runtime) SegmentDir() string { return r.segDir }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.cfg }
