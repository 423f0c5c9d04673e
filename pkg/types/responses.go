package types

// Envelope is the uniform success/timestamp wrapper embedded in every response.
// Success is false only when the underlying source was unreachable or an
// unexpected fault occurred while composing the payload.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Summary is the dashboard overview: counts only, never raw records.
type Summary struct {
	Containers ContainerSummary `json:"containers"`
	Alerts     AlertSummary     `json:"alerts"`
	System     SystemSummary    `json:"system"`
	Timestamp  string           `json:"timestamp"`
}

// ContainerSummary counts containers by running state.
type ContainerSummary struct {
	Total   int `json:"total"`
	Running int `json:"running"`
	Stopped int `json:"stopped"`
}

// AlertSummary counts alerts by severity. Source is the provenance kind of
// the alert data ("real" or "synthetic"), empty when the fetch failed.
type AlertSummary struct {
	Total    int    `json:"total"`
	Critical int    `json:"critical"`
	Warning  int    `json:"warning"`
	Source   string `json:"source,omitempty"`
}

// SystemSummary is the subset of SystemInfoRecord shown on the dashboard.
type SystemSummary struct {
	DockerVersion string          `json:"dockerVersion"`
	Hostname      string          `json:"hostname"`
	Services      ServicePresence `json:"services"`
}

// SummaryResponse is the payload for GET /api/summary.
type SummaryResponse struct {
	Envelope
	Summary Summary `json:"summary"`
}

// ContainersResponse is the payload for GET /api/docker/containers.
type ContainersResponse struct {
	Envelope
	Containers []ContainerRecord `json:"containers"`
	Total      int               `json:"total"`
	Running    int               `json:"running"`
}

// LogsResponse is the payload for GET /api/docker/logs.
type LogsResponse struct {
	Envelope
	Logs  []LogRecord `json:"logs"`
	Total int         `json:"total"`
}

// MetricsResponse is the payload for GET /api/docker/metrics.
type MetricsResponse struct {
	Envelope
	Source          string         `json:"source"`
	Metrics         []MetricRecord `json:"metrics"`
	TotalContainers int            `json:"totalContainers"`
}

// AlertsResponse is the payload for GET /api/docker/alerts.
type AlertsResponse struct {
	Envelope
	Alerts   []AlertRecord `json:"alerts"`
	Total    int           `json:"total"`
	Source   string        `json:"source"`
	Endpoint string        `json:"endpoint,omitempty"`
}

// PipelinesResponse is the payload for GET /api/github/pipelines.
type PipelinesResponse struct {
	Envelope
	Pipelines []PipelineRecord `json:"pipelines"`
	Total     int              `json:"total"`
	Source    string           `json:"source"`
}

// SystemResponse is the payload for GET /api/docker/system.
type SystemResponse struct {
	Envelope
	SystemInfoRecord
}

// CheckResponse is the payload for GET /api/debug/{service}.
type CheckResponse struct {
	Envelope
	Check CheckResult `json:"check"`
}
