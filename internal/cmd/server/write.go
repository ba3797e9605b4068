package serverrun

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	cfgpkg "github.com/rzbill/pagelog/internal/config"
	"github.com/rzbill/pagelog/internal/ingest"
	"github.com/rzbill/pagelog/internal/runtime"
	logpkg "github.com/rzbill/pagelog/pkg/log"
)

// WriteResult counts lines read by Write.
type WriteResult struct {
	Written  int
	Filtered int
	Skipped  int
}

// Write appends every non-empty line of in to the segments under dataDir,
// then stops gracefully. No servers are started.
func Write(ctx context.Context, dataDir string, cfg cfgpkg.Config, in io.Reader, logger logpkg.Logger) (WriteResult, error) {
	var res WriteResult
	rt, err := runtime.Open(runtime.Options{DataDir: dataDir, Config: cfg, Logger: logger})
	if err != nil {
		return res, err
	}
	if err := rt.Start(ctx); err != nil {
		_ = rt.Stop(context.Background())
		return res, err
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64<<10), 16<<20)
	var scanErr error
	for sc.Scan() {
		err := rt.Ingest().Append(ctx, sc.Bytes())
		switch {
		case err == nil:
			res.Written++
		case errors.Is(err, ingest.ErrFiltered):
			res.Filtered++
		case errors.Is(err, ingest.ErrEmpty):
			res.Skipped++
		default:
			scanErr = err
		}
		if scanErr != nil {
			break
		}
	}
	if scanErr == nil {
		scanErr = sc.Err()
	}

	timeout := time.Duration(cfg.StopTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return res, errors.Join(scanErr, rt.Stop(stopCtx))
}
