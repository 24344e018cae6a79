package catalog

import (
	"math/rand"
	"sync"
	"time"

	"loadprobe/internal/core"
)

// Selector draws endpoints from a catalog with probability proportional to
// their weight. Safe for concurrent use.
type Selector struct {
	endpoints []core.Endpoint
	total     float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector validates the catalog and returns a Selector over a copy of it.
// A nil rng uses a time-seeded source.
func NewSelector(endpoints []core.Endpoint, rng *rand.Rand) (*Selector, error) {
	if err := Validate(endpoints); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	eps := make([]core.Endpoint, len(endpoints))
	copy(eps, endpoints)
	return &Selector{
		endpoints: eps,
		total:     float64(TotalWeight(eps)),
		rng:       rng,
	}, nil
}

// Select returns an endpoint. It walks the catalog in fixed order,
// subtracting weights from a uniform draw in [0, total) and returning the
// first entry at which the remainder drops to zero or below. If rounding
// exhausts the draw without a hit, the first entry is returned.
func (s *Selector) Select() core.Endpoint {
	s.mu.Lock()
	draw := s.rng.Float64() * s.total
	s.mu.Unlock()
	return pick(s.endpoints, draw)
}

// Endpoints returns a copy of the catalog the selector draws from.
func (s *Selector) Endpoints() []core.Endpoint {
	eps := make([]core.Endpoint, len(s.endpoints))
	copy(eps, s.endpoints)
	return eps
}

func pick(endpoints []core.Endpoint, draw float64) core.Endpoint {
	remaining := draw
	for _, ep := range endpoints {
		remaining -= float64(ep.Weight)
		if remaining <= 0 {
			return ep
		}
	}
	return endpoints[0]
}
