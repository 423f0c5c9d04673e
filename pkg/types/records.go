package types

// Health values derived from a container's status text.
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
	HealthUnknown   = "unknown"
)

// Alert sources.
const (
	AlertSourceGrafana   = "grafana"
	AlertSourceSynthetic = "synthetic"
)

// ContainerRecord is one line of the runtime's container listing.
type ContainerRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Image     string `json:"image"`
	Ports     string `json:"ports"`
	IsRunning bool   `json:"isRunning"`
	Health    string `json:"health"`
}

// LogRecord is the bounded log tail of one container.
// When Error is true, Logs holds the error text instead of log content.
type LogRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Logs      string `json:"logs"`
	HasMore   bool   `json:"hasMore"`
	Error     bool   `json:"error"`
	Timestamp string `json:"timestamp"`
}

// MetricRecord is the resource usage of one container at one instant.
type MetricRecord struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	CPU           float64 `json:"cpu"`
	Memory        float64 `json:"memory"`
	MemoryUsage   string  `json:"memoryUsage"`
	UsedMemoryMB  float64 `json:"usedMemoryMB"`
	TotalMemoryMB float64 `json:"totalMemoryMB"`
	NetworkIO     string  `json:"networkIO"`
	DiskIO        string  `json:"diskIO"`
	Timestamp     string  `json:"timestamp"`
}

// AlertRecord is one alert from the alerting backend or a synthetic placeholder.
// EndsAt is nil while the alert is ongoing.
type AlertRecord struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Status       string            `json:"status"`
	Severity     string            `json:"severity"`
	Description  string            `json:"description"`
	StartsAt     string            `json:"startsAt"`
	EndsAt       *string           `json:"endsAt"`
	GeneratorURL string            `json:"generatorURL"`
	Labels       map[string]string `json:"labels,omitempty"`
	Source       string            `json:"source"`
	Endpoint     string            `json:"endpoint,omitempty"`
}

// PipelineRecord is one CI workflow run.
// Conclusion is nil until the run has completed.
type PipelineRecord struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Conclusion *string `json:"conclusion"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
	Branch     string  `json:"branch"`
	Commit     string  `json:"commit"`
	Actor      string  `json:"actor"`
	HTMLURL    string  `json:"html_url"`
}

// SystemInfoRecord describes the container runtime and the configured services.
type SystemInfoRecord struct {
	Docker     DockerVersion   `json:"docker"`
	Containers ContainerCounts `json:"containers"`
	System     HostInfo        `json:"system"`
	Services   ServicePresence `json:"services"`
}

// DockerVersion holds the runtime's version strings.
type DockerVersion struct {
	Version       string `json:"version"`
	ServerVersion string `json:"serverVersion"`
	APIVersion    string `json:"apiVersion"`
}

// ContainerCounts holds container counts by state as reported by the runtime.
type ContainerCounts struct {
	Total   int `json:"total"`
	Running int `json:"running"`
	Paused  int `json:"paused"`
	Stopped int `json:"stopped"`
	Active  int `json:"active"`
}

// HostInfo identifies the host the dashboard backend runs on.
type HostInfo struct {
	Hostname  string `json:"hostname"`
	NodeEnv   string `json:"nodeEnv"`
	Timestamp string `json:"timestamp"`
}

// ServicePresence reports, per external service, whether it is configured.
type ServicePresence struct {
	Grafana    string `json:"grafana"`
	Prometheus string `json:"prometheus"`
	GitHub     string `json:"github"`
}

// CheckResult is the outcome of one connectivity check.
type CheckResult struct {
	Service    string `json:"service"`
	Configured bool   `json:"configured"`
	Reachable  bool   `json:"reachable"`
	Endpoint   string `json:"endpoint,omitempty"`
	Detail     string `json:"detail"`
}
