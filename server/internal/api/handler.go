package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/opsdeck/opsdeck/pkg/types"
	"github.com/opsdeck/opsdeck/server/internal/envelope"
)

const (
	defaultLogLines = 50
	maxLogLines     = 1000
)

// Dashboard builds every response the API serves. *aggregate.Aggregator
// satisfies it.
type Dashboard interface {
	BuildSummary(ctx context.Context) types.SummaryResponse
	Containers(ctx context.Context) types.ContainersResponse
	Logs(ctx context.Context, name string, lines int) types.LogsResponse
	Metrics(ctx context.Context) types.MetricsResponse
	Alerts(ctx context.Context) types.AlertsResponse
	Pipelines(ctx context.Context) types.PipelinesResponse
	SystemInfo(ctx context.Context) types.SystemResponse
}

// Checker runs one named connectivity check. ok is false for unknown services.
type Checker interface {
	Check(ctx context.Context, service string) (types.CheckResult, bool)
}

// Options carries the static parts of the API.
type Options struct {
	Version   string
	Started   time.Time
	Services  types.ServicePresence
	RateLimit float64
	RateBurst int
	// Stream serves /ws/summary when set.
	Stream http.Handler
}

// Handler is the HTTP handler for every opsdeck route.
type Handler struct {
	dash    Dashboard
	checks  Checker
	opts    Options
	mux     *http.ServeMux
	limiter *rate.Limiter
	root    http.Handler
}

// available is reported by the 404 handler.
var available = []string{
	"/",
	"/api/health",
	"/api/summary",
	"/api/github/pipelines",
	"/api/docker/containers",
	"/api/docker/logs",
	"/api/docker/metrics",
	"/api/docker/alerts",
	"/api/docker/system",
	"/api/debug/prometheus",
	"/api/debug/grafana",
	"/api/debug/github",
	"/metrics",
	"/ws/summary",
}

// New creates a Handler and registers all routes behind the middleware chain.
func New(dash Dashboard, checks Checker, opts Options) http.Handler {
	if opts.Started.IsZero() {
		opts.Started = time.Now()
	}
	limit := rate.Limit(opts.RateLimit)
	if opts.RateLimit <= 0 {
		limit = rate.Inf
	}
	h := &Handler{
		dash:    dash,
		checks:  checks,
		opts:    opts,
		mux:     http.NewServeMux(),
		limiter: rate.NewLimiter(limit, opts.RateBurst),
	}

	h.mux.HandleFunc("/", h.index)
	h.mux.HandleFunc("/api/health", h.health)
	h.mux.HandleFunc("/api/summary", h.summary)
	h.mux.HandleFunc("/api/docker/containers", h.containers)
	h.mux.HandleFunc("/api/docker/logs", h.logs)
	h.mux.HandleFunc("/api/docker/metrics", h.metrics)
	h.mux.HandleFunc("/api/docker/alerts", h.alerts)
	h.mux.HandleFunc("/api/docker/system", h.system)
	h.mux.HandleFunc("/api/github/pipelines", h.pipelines)
	h.mux.HandleFunc("/api/debug/", h.debug)
	h.mux.Handle("/metrics", promhttp.Handler())
	if opts.Stream != nil {
		h.mux.Handle("/ws/summary", opts.Stream)
	}

	h.root = h.chain(h.mux)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// index serves GET / and acts as the catch-all for unknown paths.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.notFound(w, r)
		return
	}
	if !getOnly(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, IndexResponse{
		Message:     "OpsDeck API",
		Version:     h.opts.Version,
		Description: "Centralized monitoring dashboard for DevOps workflows",
		Endpoints: IndexEndpoints{
			Dashboard: "/api/summary",
			GitHub:    "/api/github/pipelines",
			Docker: DockerEndpoints{
				Containers: "/api/docker/containers",
				Logs:       "/api/docker/logs",
				Metrics:    "/api/docker/metrics",
				Alerts:     "/api/docker/alerts",
				System:     "/api/docker/system",
			},
			Debug: DebugEndpoints{
				Prometheus: "/api/debug/prometheus",
				Grafana:    "/api/debug/grafana",
				GitHub:     "/api/debug/github",
			},
			Stream: "/ws/summary",
			Health: "/api/health",
		},
		ConnectedServices: ConnectedServices{
			Docker:          "Connected via Docker CLI",
			ServicePresence: h.opts.Services,
		},
		Timestamp: envelope.Stamp(),
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.opts.Started).Seconds(),
		Version:   h.opts.Version,
		Timestamp: envelope.Stamp(),
	})
}

// summary returns 500 only when composing the summary itself faulted.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	resp := h.dash.BuildSummary(r.Context())
	code := http.StatusOK
	if !resp.Success {
		code = http.StatusInternalServerError
	}
	jsonResp(w, code, resp)
}

func (h *Handler) containers(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, h.dash.Containers(r.Context()))
}

func (h *Handler) logs(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("name"))
	jsonResp(w, http.StatusOK, h.dash.Logs(r.Context(), name, logLines(q.Get("lines"))))
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, h.dash.Metrics(r.Context()))
}

func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, h.dash.Alerts(r.Context()))
}

func (h *Handler) system(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, h.dash.SystemInfo(r.Context()))
}

func (h *Handler) pipelines(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	jsonResp(w, http.StatusOK, h.dash.Pipelines(r.Context()))
}

// debug serves GET /api/debug/{service}.
func (h *Handler) debug(w http.ResponseWriter, r *http.Request) {
	service := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/debug/"), "/")
	if service == "" || strings.Contains(service, "/") {
		h.notFound(w, r)
		return
	}
	if !getOnly(w, r) {
		return
	}
	res, ok := h.checks.Check(r.Context(), service)
	if !ok {
		h.notFound(w, r)
		return
	}
	env := envelope.OK()
	if !res.Reachable {
		env = envelope.Degraded(false, res.Detail)
	}
	jsonResp(w, http.StatusOK, types.CheckResponse{Envelope: env, Check: res})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusNotFound, NotFoundResponse{
		Error:              "Endpoint not found",
		Path:               r.URL.Path,
		Timestamp:          envelope.Stamp(),
		AvailableEndpoints: available,
	})
}

// --- helpers ----------------------------------------------------------------

// logLines parses the lines query parameter. Missing or non-numeric values
// use the default; numbers outside 1..1000 are clamped.
func logLines(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultLogLines
	}
	switch {
	case n < 1:
		return 1
	case n > maxLogLines:
		return maxLogLines
	}
	return n
}

func getOnly(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("api: encode response", "err", err)
	}
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg, Timestamp: envelope.Stamp()})
}
