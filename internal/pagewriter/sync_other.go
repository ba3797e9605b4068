//go:build !unix

package pagewriter

import "os"

func syncFile(f *os.File) error { return f.Sync() }
