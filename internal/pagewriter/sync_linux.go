//go:build linux

package pagewriter

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncFile flushes file data; size changes are covered by fdatasync as well.
func syncFile(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
