// Package probe issues timed HTTP requests and turns their outcome into samples.
package probe

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"loadprobe/internal/core"
)

const (
	// DefaultUserAgent identifies loadprobe traffic in target access logs.
	DefaultUserAgent = "loadprobe/" + Version
	Version          = "1.0.0"

	acceptHeader = "text/html, application/json, */*"

	dialTimeout         = 5 * time.Second
	tlsHandshakeTimeout = 5 * time.Second
	idleConnTimeout     = 90 * time.Second
)

// Prober executes one timed request per call. It never returns an error:
// transport failures are recorded as samples with a TransportFailure outcome.
type Prober struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
	Debug     *DebugLogger
	Clock     core.Clock
}

// New creates a Prober for baseURL with a pooled client.
func New(baseURL string, timeout time.Duration) *Prober {
	return &Prober{
		BaseURL: baseURL,
		Client:  NewClient(timeout),
	}
}

// NewClient builds the shared HTTP client used by all probes of a run.
func NewClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
		IdleConnTimeout:     idleConnTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func (p *Prober) clock() core.Clock {
	if p.Clock == nil {
		return core.RealClock{}
	}
	return p.Clock
}

func (p *Prober) client() *http.Client {
	if p.Client == nil {
		return http.DefaultClient
	}
	return p.Client
}

// URL joins the base URL and an endpoint path.
func (p *Prober) URL(path string) string {
	base := strings.TrimRight(p.BaseURL, "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// Probe requests ep and times it through full body consumption.
func (p *Prober) Probe(ctx context.Context, ep core.Endpoint) core.Sample {
	clock := p.clock()
	workerID := core.WorkerIDFromContext(ctx)
	start := clock.Now()

	sample := core.Sample{
		WorkerID: workerID,
		Endpoint: ep.Path,
		Method:   ep.Method,
	}

	fail := func(err error) core.Sample {
		sample.ResponseTime = clock.Since(start)
		sample.Outcome = core.TransportFailure(err)
		sample.ContentLength = 0
		sample.Timestamp = clock.Now()
		p.Debug.LogError(workerID, ep, err, sample.ResponseTime)
		return sample
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, p.URL(ep.Path), nil)
	if err != nil {
		return fail(err)
	}

	userAgent := p.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Cache-Control", "no-cache")

	p.Debug.LogRequest(workerID, req)

	resp, err := p.client().Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(err)
	}

	sample.ResponseTime = clock.Since(start)
	sample.Outcome = core.Response(resp.StatusCode)
	sample.ContentLength = int64(len(body))
	sample.Timestamp = clock.Now()

	p.Debug.LogResponse(workerID, ep, resp, body, sample.ResponseTime)
	return sample
}
