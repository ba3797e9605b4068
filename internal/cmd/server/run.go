package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/pagelog/internal/config"
	"github.com/rzbill/pagelog/internal/runtime"
	grpcserver "github.com/rzbill/pagelog/internal/server/grpc"
	httpserver "github.com/rzbill/pagelog/internal/server/http"
	amqpsource "github.com/rzbill/pagelog/internal/source/amqp"
	pebblestore "github.com/rzbill/pagelog/internal/storage/pebble"
	logpkg "github.com/rzbill/pagelog/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing
var getenv = os.Getenv

type Options struct {
	DataDir     string
	GRPCAddr    string
	HTTPAddr    string
	CatalogSync pebblestore.SyncPolicy
	Config      cfgpkg.Config
	// Logger overrides the PAGELOG_LOG_LEVEL / PAGELOG_LOG_FORMAT logger.
	Logger logpkg.Logger
}

// processLogger builds the logger from env; defaults: level=info, format=text.
func processLogger() logpkg.Logger {
	cfg := &logpkg.Config{
		Level:  getenvDefault("PAGELOG_LOG_LEVEL", "info"),
		Format: getenvDefault("PAGELOG_LOG_FORMAT", "text"),
	}
	l, err := logpkg.ApplyConfig(cfg)
	if err != nil {
		lvl := logpkg.InfoLevel
		if parsed, e := logpkg.ParseLevel(cfg.Level); e == nil {
			lvl = parsed
		}
		l = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}
	return l
}

// Run starts the writer with gRPC and HTTP ingest (and the AMQP source when
// configured) and blocks until ctx is cancelled or SIGINT/SIGTERM arrives.
// Intake is closed first, then the writer drains its queue within
// Config.StopTimeoutMs.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	logger := opts.Logger
	if logger == nil {
		logger = processLogger()
		logpkg.RedirectStdLog(logger)
	}

	rt, err := runtime.Open(runtime.Options{
		DataDir:     opts.DataDir,
		Config:      opts.Config,
		Logger:      logger,
		CatalogSync: opts.CatalogSync,
	})
	if err != nil {
		return err
	}
	if err := rt.Start(sctx); err != nil {
		_ = rt.Stop(context.Background())
		return err
	}

	logger.Info("Starting pagelog server",
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("segments", filepath.Clean(rt.SegmentDir())),
		logpkg.Str("grpc", opts.GRPCAddr),
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Int("page_size", opts.Config.PageSize),
		logpkg.Int("file_size", opts.Config.FileSize),
		logpkg.Str("sync", opts.Config.Sync),
	)

	gsrv := grpcserver.New(rt, logger)
	hsrv := httpserver.New(rt, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gsrv.ListenAndServe(sctx, opts.GRPCAddr); err != nil && sctx.Err() == nil {
			logger.Error("grpc server error", logpkg.Err(err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			logger.Error("http server error", logpkg.Err(err))
		}
	}()

	if amqpCfg := opts.Config.AMQP; amqpCfg.URL != "" {
		src := amqpsource.New(amqpsource.Config{
			URL:      amqpCfg.URL,
			Queue:    amqpCfg.Queue,
			Prefetch: amqpCfg.Prefetch,
		}, rt.Ingest(), logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := src.Run(sctx); err != nil && sctx.Err() == nil {
				logger.Error("amqp source error", logpkg.Err(err))
			}
		}()
	}

	<-sctx.Done()
	// intake closes before the writer drains
	gsrv.Close()
	hsrv.Close()
	wg.Wait()

	timeout := time.Duration(opts.Config.StopTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rt.Stop(stopCtx); err != nil {
		logger.Error("writer stop", logpkg.Err(err))
		return err
	}
	logger.Info("pagelog server stopped")
	return nil
}
