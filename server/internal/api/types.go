package api

import "github.com/opsdeck/opsdeck/pkg/types"

// IndexResponse is the payload for GET /.
type IndexResponse struct {
	Message           string            `json:"message"`
	Version           string            `json:"version"`
	Description       string            `json:"description"`
	Endpoints         IndexEndpoints    `json:"endpoints"`
	ConnectedServices ConnectedServices `json:"connectedServices"`
	Timestamp         string            `json:"timestamp"`
}

// IndexEndpoints maps dashboard sections to their routes.
type IndexEndpoints struct {
	Dashboard string          `json:"dashboard"`
	GitHub    string          `json:"github"`
	Docker    DockerEndpoints `json:"docker"`
	Debug     DebugEndpoints  `json:"debug"`
	Stream    string          `json:"stream"`
	Health    string          `json:"health"`
}

// DockerEndpoints lists the container runtime routes.
type DockerEndpoints struct {
	Containers string `json:"containers"`
	Logs       string `json:"logs"`
	Metrics    string `json:"metrics"`
	Alerts     string `json:"alerts"`
	System     string `json:"system"`
}

// DebugEndpoints lists the connectivity check routes.
type DebugEndpoints struct {
	Prometheus string `json:"prometheus"`
	Grafana    string `json:"grafana"`
	GitHub     string `json:"github"`
}

// ConnectedServices is the index view of configured collaborators.
type ConnectedServices struct {
	Docker string `json:"docker"`
	types.ServicePresence
}

// HealthResponse is the payload for GET /api/health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"`
	Version   string  `json:"version"`
	Timestamp string  `json:"timestamp"`
}

// NotFoundResponse is returned for unknown paths.
type NotFoundResponse struct {
	Error              string   `json:"error"`
	Path               string   `json:"path"`
	Timestamp          string   `json:"timestamp"`
	AvailableEndpoints []string `json:"availableEndpoints"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}
