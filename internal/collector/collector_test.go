package collector

import (
	"sync"
	"testing"
	"time"

	"loadprobe/internal/core"
)

func TestResultSet_CollectsSamples(t *testing.T) {
	r := New()
	r.Report(core.Sample{WorkerID: 1, Endpoint: "/", Outcome: core.Response(200), ResponseTime: 10 * time.Millisecond})
	r.Report(core.Sample{WorkerID: 2, Endpoint: "/", Outcome: core.TransportFailure(nil), ResponseTime: 20 * time.Millisecond})
	r.Close()

	samples := r.Samples()
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].WorkerID != 1 || samples[1].WorkerID != 2 {
		t.Error("samples should keep completion order")
	}
}

func TestResultSet_Counts(t *testing.T) {
	r := New()
	for i := 0; i < 7; i++ {
		r.Report(core.Sample{Outcome: core.Response(200)})
	}
	r.Report(core.Sample{Outcome: core.Response(500)})
	r.Report(core.Sample{Outcome: core.Response(404)})
	r.Report(core.Sample{Outcome: core.TransportFailure(nil)})

	total, failures := r.Counts()
	if total != 10 {
		t.Errorf("expected 10 total, got %d", total)
	}
	if failures != 3 {
		t.Errorf("expected 3 failures, got %d", failures)
	}
	if r.Len() != 10 {
		t.Errorf("expected Len() 10, got %d", r.Len())
	}
}

func TestResultSet_SamplesReturnsCopy(t *testing.T) {
	r := New()
	r.Report(core.Sample{Endpoint: "/"})

	samples := r.Samples()
	samples[0].Endpoint = "/mutated"

	if r.Samples()[0].Endpoint != "/" {
		t.Error("Samples() must return a copy")
	}
}

func TestResultSet_ConcurrentAppendLosesNothing(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	workers := 100
	perWorker := 50

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				r.Report(core.Sample{WorkerID: workerID, Outcome: core.Response(200)})
			}
		}(i)
	}
	wg.Wait()
	r.Close()

	if r.Len() != workers*perWorker {
		t.Fatalf("expected %d samples, got %d", workers*perWorker, r.Len())
	}

	perWorkerCounts := make(map[int]int)
	for _, s := range r.Samples() {
		perWorkerCounts[s.WorkerID]++
	}
	for id := 0; id < workers; id++ {
		if perWorkerCounts[id] != perWorker {
			t.Errorf("worker %d: expected %d samples, got %d", id, perWorker, perWorkerCounts[id])
		}
	}
}

func TestResultSet_PerLaneOrderPreserved(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Report(core.Sample{WorkerID: workerID, ContentLength: int64(j)})
			}
		}(w)
	}
	wg.Wait()

	last := map[int]int64{0: -1, 1: -1, 2: -1, 3: -1}
	for _, s := range r.Samples() {
		if s.ContentLength <= last[s.WorkerID] {
			t.Fatalf("worker %d samples out of order", s.WorkerID)
		}
		last[s.WorkerID] = s.ContentLength
	}
}

func TestResultSet_Duration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := core.NewFakeClock(start)
	r := NewWithClock(clock)

	clock.Advance(3 * time.Second)
	if r.Duration() != 3*time.Second {
		t.Errorf("expected running duration 3s, got %v", r.Duration())
	}

	r.Close()
	clock.Advance(5 * time.Second)
	if r.Duration() != 3*time.Second {
		t.Errorf("closed duration should be frozen at 3s, got %v", r.Duration())
	}

	r.Close()
	if r.Duration() != 3*time.Second {
		t.Error("second Close should not move the end time")
	}
	if !r.StartTime().Equal(start) {
		t.Errorf("unexpected start time %v", r.StartTime())
	}
}
