// Package progress prints a live status line while a run is in flight.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Source is what the progress line reads from; *collector.ResultSet
// satisfies it.
type Source interface {
	Counts() (total, failures int)
	Duration() time.Duration
}

// DefaultInterval is how often the status line is redrawn.
const DefaultInterval = time.Second

type Progress struct {
	source   Source
	interval time.Duration
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopped  atomic.Bool
	quiet    bool
	output   io.Writer
	mu       sync.Mutex
}

func NewProgress(src Source, quiet bool) *Progress {
	return &Progress{
		source:   src,
		interval: DefaultInterval,
		quiet:    quiet,
		output:   os.Stderr,
	}
}

func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

// SetInterval changes the redraw period. Must be called before Start.
func (p *Progress) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval = d
	}
}

func (p *Progress) Start() {
	if p.quiet {
		return
	}
	p.stopCh = make(chan struct{})
	p.ticker = time.NewTicker(p.interval)
	go p.run(p.ticker, p.stopCh)
}

func (p *Progress) run(ticker *time.Ticker, stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.printProgress()
		}
	}
}

func (p *Progress) printProgress() {
	total, failures := p.source.Counts()
	elapsed := p.source.Duration()
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K%s\r", Line(total, failures, elapsed))
	p.mu.Unlock()
}

// Line renders "[mm:ss] Requests: N | RPS: x | Errors: k (p%)".
func Line(total, failures int, elapsed time.Duration) string {
	rounded := elapsed.Round(time.Second)
	mins := int(rounded.Minutes())
	secs := int(rounded.Seconds()) % 60
	rps := 0.0
	if elapsed > 0 {
		rps = float64(total) / elapsed.Seconds()
	}
	errorRate := 0.0
	if total > 0 {
		errorRate = float64(failures) / float64(total) * 100
	}
	return fmt.Sprintf("[%02d:%02d] Requests: %d | RPS: %.1f | Errors: %d (%.1f%%)",
		mins, secs, total, rps, failures, errorRate)
}

func (p *Progress) Stop() {
	if p.quiet || p.stopped.Swap(true) {
		return
	}
	if p.ticker != nil {
		p.ticker.Stop()
	}
	if p.stopCh != nil {
		close(p.stopCh)
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K")
	p.mu.Unlock()
}

func (p *Progress) Print(message string) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K%s\n", message)
	p.mu.Unlock()
}

func (p *Progress) Printf(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K"+format+"\n", args...)
	p.mu.Unlock()
}
