package pagewriter

import (
	"errors"
	"fmt"
	"time"

	logpkg "github.com/rzbill/pagelog/pkg/log"
)

const (
	DefaultPageSize = 4096
	DefaultFileSize = 512 << 20

	defaultOpenBackoff    = 10 * time.Millisecond
	defaultMaxOpenBackoff = time.Second
)

// SyncMode controls when segment data is forced to stable storage.
type SyncMode int

const (
	// SyncNever leaves durability to the OS page cache.
	SyncNever SyncMode = iota
	// SyncPage syncs after every page write.
	SyncPage
	// SyncRotate syncs once, when a segment is closed.
	SyncRotate
)

func (m SyncMode) String() string {
	switch m {
	case SyncNever:
		return "never"
	case SyncPage:
		return "page"
	case SyncRotate:
		return "rotate"
	default:
		return fmt.Sprintf("SyncMode(%d)", int(m))
	}
}

// ParseSyncMode maps "never", "page" and "rotate" ("" is never).
func ParseSyncMode(s string) (SyncMode, error) {
	switch s {
	case "", "never":
		return SyncNever, nil
	case "page":
		return SyncPage, nil
	case "rotate":
		return SyncRotate, nil
	default:
		return SyncNever, fmt.Errorf("pagewriter: unknown sync mode %q", s)
	}
}

// Options configures a Writer. Namer is required.
type Options struct {
	// PageSize is the page buffer size in bytes. Default 4096.
	PageSize int
	// FileSize is the segment budget in bytes; a segment holds
	// FileSize/PageSize pages (at least one). Default 512 MiB.
	FileSize int
	Sync     SyncMode

	Namer      SegmentNamer
	Serializer Serializer
	ErrorSink  ErrorSink
	Logger     logpkg.Logger

	// OpenBackoff is the first pause after a failed segment open; it doubles
	// up to MaxOpenBackoff while opens keep failing.
	OpenBackoff    time.Duration
	MaxOpenBackoff time.Duration
}

func (o *Options) withDefaults() (Options, error) {
	out := *o
	if out.Namer == nil {
		return Options{}, errors.New("pagewriter: Options.Namer is required")
	}
	if out.PageSize < 0 || out.FileSize < 0 {
		return Options{}, fmt.Errorf("pagewriter: negative size (page %d, file %d)", out.PageSize, out.FileSize)
	}
	if out.PageSize == 0 {
		out.PageSize = DefaultPageSize
	}
	if out.FileSize == 0 {
		out.FileSize = DefaultFileSize
	}
	if out.Serializer == nil {
		out.Serializer = SerializerFunc(lineSerializer)
	}
	if out.Logger == nil {
		out.Logger = logpkg.NewLogger()
	}
	if out.ErrorSink == nil {
		out.ErrorSink = LogSink{Logger: out.Logger}
	}
	if out.OpenBackoff <= 0 {
		out.OpenBackoff = defaultOpenBackoff
	}
	if out.MaxOpenBackoff < out.OpenBackoff {
		out.MaxOpenBackoff = defaultMaxOpenBackoff
		if out.MaxOpenBackoff < out.OpenBackoff {
			out.MaxOpenBackoff = out.OpenBackoff
		}
	}
	return out, nil
}

// MaxWriteCount is the number of pages written to a segment before rotation.
func (o Options) MaxWriteCount() int {
	page := o.PageSize
	if page <= 0 {
		page = DefaultPageSize
	}
	file := o.FileSize
	if file <= 0 {
		file = DefaultFileSize
	}
	if n := file / page; n > 0 {
		return n
	}
	return 1
}
