package source

import (
	"testing"

	"github.com/opsdeck/opsdeck/server/internal/config"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	for _, k := range []string{"PORT", "GRAFANA_URL", "PROMETHEUS_URL", "GITHUB_REPO", "NODE_ENV", "HOSTNAME", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestNewSet_Credentials(t *testing.T) {
	t.Setenv("GRAFANA_API_KEY", "your_grafana_api_key_here")
	t.Setenv("GITHUB_TOKEN", "ghp_abc")
	cfg := loadConfig(t)
	cfg.CI.Repo = "octo/hello"
	cfg.Metrics.PrometheusURL = "http://prom:9090"

	s := NewSet(cfg, newFakeRunner())

	if s.Alerts.Configured {
		t.Error("placeholder grafana key treated as configured")
	}
	if s.Checker.GrafanaToken != "" {
		t.Error("placeholder key passed to checker")
	}
	if !s.Pipelines.HasToken || s.Pipelines.Placeholder {
		t.Errorf("pipelines token flags = %v/%v", s.Pipelines.HasToken, s.Pipelines.Placeholder)
	}
	if s.Pipelines.RunsURL != "https://api.github.com/repos/octo/hello/actions/runs" {
		t.Errorf("runs url = %q", s.Pipelines.RunsURL)
	}
	if len(s.Alerts.Endpoints) != 3 {
		t.Errorf("alert endpoints = %v", s.Alerts.Endpoints)
	}
	svc := s.System.Host.Services
	if svc.GitHub != "Connected" || svc.Prometheus != "http://prom:9090" {
		t.Errorf("services = %+v", svc)
	}
	if s.Logs.MaxChars != 5000 || s.Logs.Tail != 50 {
		t.Errorf("logs limits = %d/%d", s.Logs.MaxChars, s.Logs.Tail)
	}
}

func TestNewSet_PlaceholderCIToken(t *testing.T) {
	t.Setenv("GRAFANA_API_KEY", "")
	t.Setenv("GITHUB_TOKEN", "mock_token_for_testing")
	s := NewSet(loadConfig(t), newFakeRunner())

	if s.Pipelines.HasToken || !s.Pipelines.Placeholder {
		t.Errorf("pipelines token flags = %v/%v", s.Pipelines.HasToken, s.Pipelines.Placeholder)
	}
	if s.Checker.GitHubToken != "" {
		t.Error("placeholder token passed to checker")
	}
	if s.System.Host.Services.GitHub != "Not configured" {
		t.Errorf("github presence = %q", s.System.Host.Services.GitHub)
	}
}
