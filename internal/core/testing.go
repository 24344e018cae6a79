package core

import (
	"context"
	"sync"
	"time"
)

// MockWriter is a thread-safe io.Writer for testing.
type MockWriter struct {
	mu   sync.Mutex
	data []byte
}

func (w *MockWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *MockWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.data)
}

// FixedSelector always returns the same endpoint.
type FixedSelector struct {
	Endpoint Endpoint
}

func (s FixedSelector) Select() Endpoint { return s.Endpoint }

// ScriptedResponse is one canned probe result for ScriptedProber.
type ScriptedResponse struct {
	Status        int // 0 = transport failure
	ResponseTime  time.Duration
	ContentLength int64
}

// ScriptedProber replays canned responses in order, cycling when exhausted.
// Safe for concurrent use.
type ScriptedProber struct {
	Responses []ScriptedResponse
	Clock     Clock

	mu    sync.Mutex
	next  int
	calls int
}

func (p *ScriptedProber) Probe(ctx context.Context, ep Endpoint) Sample {
	p.mu.Lock()
	resp := ScriptedResponse{Status: 200, ResponseTime: time.Millisecond}
	if len(p.Responses) > 0 {
		resp = p.Responses[p.next%len(p.Responses)]
		p.next++
	}
	p.calls++
	p.mu.Unlock()

	var clock Clock = RealClock{}
	if p.Clock != nil {
		clock = p.Clock
	}

	outcome := Response(resp.Status)
	length := resp.ContentLength
	if resp.Status == 0 {
		outcome = TransportFailure(nil)
		length = 0
	}
	return Sample{
		Endpoint:      ep.Path,
		Method:        ep.Method,
		ResponseTime:  resp.ResponseTime,
		Outcome:       outcome,
		ContentLength: length,
		Timestamp:     clock.Now(),
	}
}

// Calls returns the number of probes issued.
func (p *ScriptedProber) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
