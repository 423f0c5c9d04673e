package source

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Kind tags where a Result's records came from.
type Kind string

const (
	KindReal      Kind = "real"
	KindSynthetic Kind = "synthetic"
)

// Source names reported in responses.
const (
	SourceDocker      = "docker"
	SourceDockerStats = "docker-stats"
	SourceExposition  = "exposition"
	SourceGrafana     = "grafana"
	SourceGitHub      = "github"
	SourceSynthetic   = "synthetic"
)

// Degraded-mode notes shown to the UI.
const (
	NoteMockAlerts    = "Using mock alerts - Grafana API unavailable"
	NoteMockPipelines = "Using mock pipelines - GitHub API unavailable"
)

// Provenance describes the origin of a Result.
type Provenance struct {
	Kind Kind

	// Source is the short collaborator name, e.g. "docker-stats" or "grafana".
	Source string

	// Endpoint is the URL that answered. Empty for synthetic and CLI data.
	Endpoint string

	// Note explains a synthetic substitution.
	Note string
}

// Result is the output of one adapter fetch.
type Result[T any] struct {
	Records    []T
	Provenance Provenance
}

// Adapter is implemented by every source adapter.
type Adapter[T any] interface {
	Fetch(ctx context.Context) (Result[T], error)
}

func realOf[T any](records []T, source, endpoint string) Result[T] {
	return Result[T]{
		Records:    records,
		Provenance: Provenance{Kind: KindReal, Source: source, Endpoint: endpoint},
	}
}

func syntheticOf[T any](records []T, note string) Result[T] {
	return Result[T]{
		Records:    records,
		Provenance: Provenance{Kind: KindSynthetic, Source: SourceSynthetic, Note: note},
	}
}

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdeck_adapter_fetch_total",
		Help: "Adapter fetches by provenance (real, synthetic, error).",
	}, []string{"adapter", "provenance"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "opsdeck_adapter_fetch_duration_seconds",
		Help:    "Adapter fetch latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"adapter"})
)

// observe records one fetch. kind is empty when the fetch returned an error.
func observe(adapter string, start time.Time, kind Kind) {
	label := string(kind)
	if label == "" {
		label = "error"
	}
	fetchTotal.WithLabelValues(adapter, label).Inc()
	fetchDuration.WithLabelValues(adapter).Observe(time.Since(start).Seconds())
}

// authRoundTripper injects the bearer token and User-Agent into every
// outgoing request.
type authRoundTripper struct {
	base      http.RoundTripper
	token     string
	userAgent string
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" || t.userAgent != "" {
		req = req.Clone(req.Context())
		if t.token != "" {
			req.Header.Set("Authorization", "Bearer "+t.token)
		}
		if t.userAgent != "" {
			req.Header.Set("User-Agent", t.userAgent)
		}
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient returns a client that authenticates with token (when set)
// and gives up after timeout.
func buildHTTPClient(token, userAgent string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &authRoundTripper{
			base:      http.DefaultTransport,
			token:     token,
			userAgent: userAgent,
		},
		Timeout: timeout,
	}
}
