// Package namer supplies segment paths to the page writer.
package namer

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/rzbill/pagelog/internal/catalog"
	"github.com/rzbill/pagelog/internal/pagewriter"
	"github.com/rzbill/pagelog/internal/segment"
	"github.com/rzbill/pagelog/pkg/id"
)

var (
	_ pagewriter.SegmentNamer = (*Sequence)(nil)
	_ pagewriter.SegmentNamer = (*Unique)(nil)
	_ pagewriter.SegmentNamer = (*Cataloged)(nil)
)

// Sequence names segments prefix-00000000.log, prefix-00000001.log, ...
// counting from Start within one process.
type Sequence struct {
	Dir    string
	Prefix string
	Start  uint64

	mu   sync.Mutex
	next uint64
	init bool
}

func (s *Sequence) NextPath() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.init {
		s.next, s.init = s.Start, true
	}
	p := filepath.Join(s.Dir, catalog.FileName(s.Prefix, s.next))
	s.next++
	return p, nil
}

// ResumeSequence returns a Sequence starting after the highest numbered
// prefix-NNNNNNNN.log file already in dir, or at 0 when there is none.
// Files whose suffix is not a number are ignored.
func ResumeSequence(dir, prefix string) (*Sequence, error) {
	paths, err := segment.Glob(dir, prefix)
	if err != nil {
		return nil, err
	}
	s := &Sequence{Dir: dir, Prefix: prefix}
	for _, p := range paths {
		if seq, ok := catalog.ParseFileName(prefix, filepath.Base(p)); ok && seq >= s.Start {
			s.Start = seq + 1
		}
	}
	return s, nil
}

// Unique names segments prefix-{id}.log with time-sortable ids.
type Unique struct {
	Dir    string
	Prefix string

	once sync.Once
	gen  *id.Generator
}

func (u *Unique) NextPath() (string, error) {
	u.once.Do(func() { u.gen = id.NewGenerator() })
	return filepath.Join(u.Dir, u.Prefix+"-"+u.gen.Next().String()+".log"), nil
}

// Cataloged allocates sequence numbers from a catalog, so restarts continue
// the sequence and every segment is registered before it is opened.
type Cataloged struct {
	Dir     string
	Prefix  string
	Catalog *catalog.Catalog
}

func (c *Cataloged) NextPath() (string, error) {
	if c.Catalog == nil {
		return "", errors.New("namer: nil catalog")
	}
	m, err := c.Catalog.Next(c.Dir, c.Prefix)
	if err != nil {
		return "", err
	}
	return m.Path, nil
}
