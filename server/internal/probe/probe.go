package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultTimeout bounds a single attempt.
const DefaultTimeout = 5 * time.Second

// maxBody caps how much of a response body is read.
const maxBody = 8 << 20

var attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "opsdeck_probe_attempts_total",
	Help: "Endpoint probe attempts by outcome.",
}, []string{"outcome"})

// Attempt records the outcome of trying one candidate.
type Attempt struct {
	Endpoint string
	Status   int
	Err      error
}

// Result is the outcome of a probe. When Found is false, Endpoint, Body and
// Status are zero and Attempts explains why each candidate was rejected.
type Result struct {
	Found    bool
	Endpoint string
	Body     []byte
	Status   int
	Attempts []Attempt
}

// Prober runs probes with a shared HTTP client.
type Prober struct {
	Client  *http.Client
	Timeout time.Duration
}

// New returns a Prober using client, or http.DefaultClient when client is nil.
// A non-positive timeout selects DefaultTimeout.
func New(client *http.Client, timeout time.Duration) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{Client: client, Timeout: timeout}
}

// Probe issues a GET to each endpoint in order with headers set on every
// request, stopping at the first 2xx response whose body could be read.
// A cancelled ctx stops further attempts.
func (p *Prober) Probe(ctx context.Context, endpoints []string, headers map[string]string) Result {
	var res Result
	for _, ep := range endpoints {
		if err := ctx.Err(); err != nil {
			slog.Debug("probe: stopped", "remaining_from", ep, "err", err)
			break
		}

		body, status, err := p.try(ctx, ep, headers)
		res.Attempts = append(res.Attempts, Attempt{Endpoint: ep, Status: status, Err: err})
		if err != nil {
			attemptsTotal.WithLabelValues("failure").Inc()
			slog.Debug("probe: attempt failed", "endpoint", ep, "status", status, "err", err)
			continue
		}

		attemptsTotal.WithLabelValues("success").Inc()
		slog.Debug("probe: endpoint answered", "endpoint", ep, "status", status)
		res.Found = true
		res.Endpoint = ep
		res.Body = body
		res.Status = status
		return res
	}
	return res
}

func (p *Prober) try(ctx context.Context, url string, headers map[string]string) ([]byte, int, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}
