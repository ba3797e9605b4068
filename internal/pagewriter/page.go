package pagewriter

// page is the worker's single reusable page buffer. buf[:n] holds the bytes
// not yet written to a segment.
type page struct {
	buf []byte
	n   int
}

func newPage(size int) *page {
	return &page{buf: make([]byte, size)}
}

func (p *page) remaining() int { return len(p.buf) - p.n }

func (p *page) len() int { return p.n }

// flush hands the filled prefix to write and empties the page. The page is
// reset even if write fails.
func (p *page) flush(write func([]byte)) {
	write(p.buf[:p.n])
	p.n = 0
}

// add places line into the page and returns how many pages were flushed.
func (p *page) add(line []byte, write func([]byte)) int {
	size := len(line)
	switch {
	case size > len(p.buf):
		flushes := 0
		for len(line) > 0 {
			c := copy(p.buf[p.n:], line)
			p.n += c
			line = line[c:]
			if p.n == len(p.buf) {
				p.flush(write)
				flushes++
			}
		}
		if p.n > 0 {
			p.flush(write)
			flushes++
		}
		return flushes
	case size > p.remaining():
		p.flush(write)
		p.n = copy(p.buf, line)
		return 1
	case size == p.remaining():
		p.n += copy(p.buf[p.n:], line)
		p.flush(write)
		return 1
	default:
		p.n += copy(p.buf[p.n:], line)
		return 0
	}
}
