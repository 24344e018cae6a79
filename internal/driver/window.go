package driver

import "loadprobe/internal/core"

// DefaultWindow is the monitor's rolling buffer size.
const DefaultWindow = 10

// window keeps the most recent samples seen by one driver.
type window struct {
	buf  []core.Sample
	next int
	full bool
}

func newWindow(size int) *window {
	if size <= 0 {
		size = DefaultWindow
	}
	return &window{buf: make([]core.Sample, size)}
}

func (w *window) push(s core.Sample) {
	w.buf[w.next] = s
	w.next++
	if w.next == len(w.buf) {
		w.next = 0
		w.full = true
	}
}

func (w *window) len() int {
	if w.full {
		return len(w.buf)
	}
	return w.next
}

// stats returns the mean latency in ms and the success percentage.
func (w *window) stats() (avgMs, successRate float64) {
	n := w.len()
	if n == 0 {
		return 0, 0
	}
	var total float64
	var ok int
	for _, s := range w.buf[:n] {
		total += s.ResponseTimeMs()
		if s.Successful() {
			ok++
		}
	}
	return total / float64(n), float64(ok) / float64(n) * 100
}
