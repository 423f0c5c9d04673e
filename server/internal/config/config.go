package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort       = 5000
	DefaultRateLimit      = 20.0
	DefaultRateBurst      = 40
	DefaultStreamInterval = 10 * time.Second
	DefaultEnvironment    = "development"
	DefaultHostname       = "localhost"

	DefaultRuntimeBinary  = "docker"
	DefaultRuntimeTimeout = 5 * time.Second
	DefaultLogTail        = 50
	DefaultLogMaxChars    = 5000

	DefaultAlertingURL     = "http://localhost:3000"
	DefaultAlertingTimeout = 5 * time.Second

	DefaultCIAPIURL    = "https://api.github.com"
	DefaultCITimeout   = 5 * time.Second
	DefaultCIUserAgent = "opsdeck"

	DefaultMetricsTimeout = 3 * time.Second
)

// DefaultAlertPaths are tried in order against the alerting base URL.
var DefaultAlertPaths = []string{
	"/api/alertmanager/grafana/api/v2/alerts",
	"/api/alerts",
	"/api/v1/alerts",
}

// DefaultPlaceholders are credential values shipped in example env files.
// They are treated as absent.
var DefaultPlaceholders = []string{
	"your_grafana_api_key_here",
	"mock_token_for_testing",
}

// Config is the top-level opsdeck configuration.
type Config struct {
	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	Server   ServerConfig   `yaml:"server"`
	Runtime  RuntimeConfig  `yaml:"runtime"`
	Alerting AlertingConfig `yaml:"alerting"`
	CI       CIConfig       `yaml:"ci"`
	Metrics  MetricsConfig  `yaml:"metrics"`

	// Placeholders lists credential values that count as not configured.
	Placeholders []string `yaml:"placeholders"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket stream listen on.
	HTTPPort int `yaml:"http_port"`

	// RateLimit is the sustained request rate allowed per second across all
	// clients. Zero disables rate limiting.
	RateLimit float64 `yaml:"rate_limit"`

	// RateBurst is the token bucket size.
	RateBurst int `yaml:"rate_burst"`

	// StreamInterval is how often a fresh summary is pushed to WebSocket clients.
	StreamInterval time.Duration `yaml:"stream_interval"`

	// Environment is reported as system.nodeEnv.
	Environment string `yaml:"environment"`

	// Hostname is reported as system.hostname.
	Hostname string `yaml:"hostname"`
}

// RuntimeConfig describes how the container runtime CLI is invoked.
type RuntimeConfig struct {
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"timeout"`

	// LogTail is the default number of log lines requested per container.
	LogTail int `yaml:"log_tail"`

	// LogMaxChars bounds each container's log text, counted in characters.
	LogMaxChars int `yaml:"log_max_chars"`
}

// AlertingConfig points at the alerting backend.
type AlertingConfig struct {
	URL     string        `yaml:"url"`
	Paths   []string      `yaml:"paths"`
	Timeout time.Duration `yaml:"timeout"`
	Auth    AuthConfig    `yaml:"auth"`
}

// Endpoints returns the candidate alert URLs in probe order.
func (a AlertingConfig) Endpoints() []string {
	base := strings.TrimRight(a.URL, "/")
	out := make([]string, 0, len(a.Paths))
	for _, p := range a.Paths {
		out = append(out, base+p)
	}
	return out
}

// CIConfig points at the CI provider.
type CIConfig struct {
	APIURL string `yaml:"api_url"`

	// Repo is "owner/name". Empty means pipelines are synthetic.
	Repo    string        `yaml:"repo"`
	Timeout time.Duration `yaml:"timeout"`

	// AllowAnonymous lets the pipelines adapter call the provider without a
	// token (public repositories, low rate limits).
	AllowAnonymous bool `yaml:"allow_anonymous"`

	UserAgent string     `yaml:"user_agent"`
	Auth      AuthConfig `yaml:"auth"`
}

// RunsURL returns the workflow runs endpoint for Repo.
func (c CIConfig) RunsURL() string {
	return strings.TrimRight(c.APIURL, "/") + "/repos/" + strings.Trim(c.Repo, "/") + "/actions/runs"
}

// MetricsConfig configures the Prometheus connectivity check and the
// exposition fallback used when the runtime cannot report stats.
type MetricsConfig struct {
	PrometheusURL string `yaml:"prometheus_url"`

	// ExpositionURL is a Prometheus text-format endpoint exposing container
	// metrics (cAdvisor). Empty disables the fallback.
	ExpositionURL string        `yaml:"exposition_url"`
	Timeout       time.Duration `yaml:"timeout"`
}

// AuthConfig resolves a bearer token from the environment.
type AuthConfig struct {
	// TokenEnv is the name of the environment variable that holds the token.
	TokenEnv string `yaml:"token_env"`
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// IsPlaceholder reports whether v is one of the configured placeholder
// credentials.
func (c *Config) IsPlaceholder(v string) bool {
	for _, p := range c.Placeholders {
		if p != "" && strings.Contains(v, p) {
			return true
		}
	}
	return false
}

// Credential returns the token held by a, and whether it is usable: set and
// not a placeholder.
func (c *Config) Credential(a AuthConfig) (string, bool) {
	tok := strings.TrimSpace(a.Token())
	if tok == "" || c.IsPlaceholder(tok) {
		return tok, false
	}
	return tok, true
}

// Level returns the slog level for LogLevel. Unknown values map to Info.
func (c *Config) Level() slog.Level {
	name := strings.ToLower(strings.TrimSpace(c.LogLevel))
	if name == "warning" {
		name = "warn"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Load reads the YAML config file at path and overlays the environment.
// An empty path skips the file and yields defaults plus the environment.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := overlayEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			HTTPPort:       DefaultHTTPPort,
			RateLimit:      DefaultRateLimit,
			RateBurst:      DefaultRateBurst,
			StreamInterval: DefaultStreamInterval,
			Environment:    DefaultEnvironment,
			Hostname:       DefaultHostname,
		},
		Runtime: RuntimeConfig{
			Binary:      DefaultRuntimeBinary,
			Timeout:     DefaultRuntimeTimeout,
			LogTail:     DefaultLogTail,
			LogMaxChars: DefaultLogMaxChars,
		},
		Alerting: AlertingConfig{
			URL:     DefaultAlertingURL,
			Paths:   append([]string(nil), DefaultAlertPaths...),
			Timeout: DefaultAlertingTimeout,
			Auth:    AuthConfig{TokenEnv: "GRAFANA_API_KEY"},
		},
		CI: CIConfig{
			APIURL:    DefaultCIAPIURL,
			Timeout:   DefaultCITimeout,
			UserAgent: DefaultCIUserAgent,
			Auth:      AuthConfig{TokenEnv: "GITHUB_TOKEN"},
		},
		Metrics: MetricsConfig{
			Timeout: DefaultMetricsTimeout,
		},
		Placeholders: append([]string(nil), DefaultPlaceholders...),
	}
}

// overlayEnv applies the environment variables the dashboard has always
// honoured. lookup is os.LookupEnv outside tests.
func overlayEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT %q: %w", v, err)
		}
		cfg.Server.HTTPPort = port
	}
	if v, ok := get("GRAFANA_URL"); ok {
		cfg.Alerting.URL = v
	}
	if v, ok := get("PROMETHEUS_URL"); ok {
		cfg.Metrics.PrometheusURL = v
	}
	if v, ok := get("GITHUB_REPO"); ok {
		cfg.CI.Repo = v
	}
	if v, ok := get("NODE_ENV"); ok {
		cfg.Server.Environment = v
	}
	if v, ok := get("HOSTNAME"); ok {
		cfg.Server.Hostname = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	return nil
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst <= 0 {
		return errors.New("server.rate_burst must be positive when rate_limit is set")
	}
	if cfg.Server.StreamInterval <= 0 {
		return errors.New("server.stream_interval must be positive")
	}
	if cfg.Runtime.Binary == "" {
		return errors.New("runtime.binary is required")
	}
	for name, d := range map[string]time.Duration{
		"runtime.timeout":  cfg.Runtime.Timeout,
		"alerting.timeout": cfg.Alerting.Timeout,
		"ci.timeout":       cfg.CI.Timeout,
		"metrics.timeout":  cfg.Metrics.Timeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if cfg.Runtime.LogTail <= 0 {
		return errors.New("runtime.log_tail must be positive")
	}
	if cfg.Runtime.LogMaxChars <= 0 {
		return errors.New("runtime.log_max_chars must be positive")
	}
	if len(cfg.Alerting.Paths) == 0 {
		return errors.New("alerting.paths must not be empty")
	}
	for name, raw := range map[string]string{
		"alerting.url":           cfg.Alerting.URL,
		"ci.api_url":             cfg.CI.APIURL,
		"metrics.prometheus_url": cfg.Metrics.PrometheusURL,
		"metrics.exposition_url": cfg.Metrics.ExpositionURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s %q is not an absolute URL", name, raw)
		}
	}
	if cfg.CI.Repo != "" && strings.Count(strings.Trim(cfg.CI.Repo, "/"), "/") != 1 {
		return fmt.Errorf("ci.repo %q: want owner/name", cfg.CI.Repo)
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return fmt.Errorf("log_level %q unknown: want debug|info|warn|error", cfg.LogLevel)
	}
	return nil
}
