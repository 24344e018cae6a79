package catalog

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"loadprobe/internal/core"
)

func TestSelector_WeightedDistribution(t *testing.T) {
	eps := []core.Endpoint{
		{Path: "/rare", Method: "GET", Weight: 1},
		{Path: "/common", Method: "GET", Weight: 99},
	}
	sel, err := NewSelector(eps, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const trials = 100000
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		counts[sel.Select().Path]++
	}

	rare := float64(counts["/rare"]) / trials
	common := float64(counts["/common"]) / trials
	if math.Abs(rare-0.01) > 0.003 {
		t.Errorf("expected ~1%% for /rare, got %.3f%%", rare*100)
	}
	if math.Abs(common-0.99) > 0.003 {
		t.Errorf("expected ~99%% for /common, got %.3f%%", common*100)
	}
}

func TestSelector_DefaultCatalogCoversAllEntries(t *testing.T) {
	sel, err := NewSelector(Default(), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for i := 0; i < 5000; i++ {
		seen[sel.Select().Path] = true
	}
	for _, ep := range Default() {
		if !seen[ep.Path] {
			t.Errorf("endpoint %s never selected", ep.Path)
		}
	}
}

func TestPick(t *testing.T) {
	eps := []core.Endpoint{
		{Path: "/a", Weight: 2},
		{Path: "/b", Weight: 3},
		{Path: "/c", Weight: 5},
	}

	tests := []struct {
		draw float64
		want string
	}{
		{0, "/a"},
		{1.5, "/a"},
		{2, "/a"}, // remainder hits exactly zero
		{2.0001, "/b"},
		{5, "/b"},
		{7.5, "/c"},
		{9.9999, "/c"},
		{10.5, "/a"}, // exhausted draw falls back to first entry
	}

	for _, tt := range tests {
		if got := pick(eps, tt.draw).Path; got != tt.want {
			t.Errorf("pick(%v) = %s, want %s", tt.draw, got, tt.want)
		}
	}
}

func TestNewSelector_RejectsInvalidCatalog(t *testing.T) {
	if _, err := NewSelector(nil, nil); err != ErrEmptyCatalog {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestNewSelector_CopiesCatalog(t *testing.T) {
	eps := []core.Endpoint{{Path: "/", Method: "GET", Weight: 1}}
	sel, err := NewSelector(eps, nil)
	if err != nil {
		t.Fatal(err)
	}
	eps[0].Path = "/mutated"
	if got := sel.Select().Path; got != "/" {
		t.Errorf("selector should not see caller mutations, got %s", got)
	}
}

func TestSelector_ConcurrentSelect(t *testing.T) {
	sel, err := NewSelector(Default(), nil)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				if sel.Select().Path == "" {
					t.Error("empty selection")
					return
				}
			}
		}()
	}
	wg.Wait()
}
