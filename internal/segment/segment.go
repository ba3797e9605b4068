// Package segment reads segment files written by the page writer.
package segment

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tysonmote/gommap"
)

// Size returns the size of the segment at path in bytes.
func Size(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// ReadLines maps the segment read-only and calls fn for each line without
// its terminator. A trailing fragment with no "\n" is passed as a line too.
// The slice is only valid during the call. A non-nil error from fn stops
// the read and is returned.
func ReadLines(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if fi.Size() == 0 {
		return nil
	}
	mm, err := gommap.Map(f.Fd(), gommap.PROT_READ, gommap.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("segment: mmap %s: %w", path, err)
	}
	defer mm.UnsafeUnmap()

	data := []byte(mm)
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return fn(data)
		}
		if err := fn(data[:i]); err != nil {
			return err
		}
		data = data[i+1:]
	}
	return nil
}

// Count returns the number of lines in the segment.
func Count(path string) (int, error) {
	n := 0
	err := ReadLines(path, func([]byte) error {
		n++
		return nil
	})
	return n, err
}

// Glob lists segment files in dir with the given prefix, sorted by name.
func Glob(dir, prefix string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, prefix+"-*.log"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
