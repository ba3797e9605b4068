package pagewriter

import (
	"os"
	"path/filepath"
)

// segment is the open output file plus the pages written to it.
type segment struct {
	path  string
	f     *os.File
	pages int
}

func openSegment(path string) (*segment, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &SegmentError{Op: "open", Path: path, Err: err}
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, &SegmentError{Op: "open", Path: path, Err: err}
	}
	return &segment{path: path, f: f}, nil
}

func (s *segment) write(b []byte) error {
	if _, err := s.f.Write(b); err != nil {
		return &SegmentError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func (s *segment) sync() error {
	if err := syncFile(s.f); err != nil {
		return &SegmentError{Op: "sync", Path: s.path, Err: err}
	}
	return nil
}

func (s *segment) close() error {
	if err := s.f.Close(); err != nil {
		return &SegmentError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}
