package source

import (
	"github.com/opsdeck/opsdeck/pkg/types"
	"github.com/opsdeck/opsdeck/server/internal/config"
	"github.com/opsdeck/opsdeck/server/internal/probe"
	"github.com/opsdeck/opsdeck/server/internal/runner"
)

// Set holds every adapter built from one configuration.
type Set struct {
	Containers *Containers
	Logs       *Logs
	Metrics    *Metrics
	System     *SystemInfo
	Alerts     *Alerts
	Pipelines  *Pipelines
	Checker    *Checker
}

// NewSet builds the adapters for cfg. Credentials are resolved from the
// environment once, here.
func NewSet(cfg *config.Config, r runner.Runner) *Set {
	rt := Runtime{Runner: r, Binary: cfg.Runtime.Binary}

	alertToken, alertOK := cfg.Credential(cfg.Alerting.Auth)
	ciToken, ciOK := cfg.Credential(cfg.CI.Auth)
	if !ciOK {
		ciToken = ""
	}

	return &Set{
		Containers: &Containers{Runtime: rt},
		Logs: &Logs{
			Runtime:  rt,
			Tail:     cfg.Runtime.LogTail,
			MaxChars: cfg.Runtime.LogMaxChars,
		},
		Metrics: &Metrics{
			Runtime:       rt,
			ExpositionURL: cfg.Metrics.ExpositionURL,
			Client:        buildHTTPClient("", "", cfg.Metrics.Timeout),
		},
		System: &SystemInfo{
			Runtime: rt,
			Host:    hostFor(cfg, ciToken != ""),
		},
		Alerts: &Alerts{
			Prober:     probe.New(buildHTTPClient(tokenIf(alertToken, alertOK), "", 0), cfg.Alerting.Timeout),
			Endpoints:  cfg.Alerting.Endpoints(),
			Configured: alertOK,
		},
		Pipelines: &Pipelines{
			Prober:         probe.New(buildHTTPClient(ciToken, "", 0), cfg.CI.Timeout),
			RunsURL:        cfg.CI.RunsURL(),
			Repo:           cfg.CI.Repo,
			HasToken:       ciOK,
			Placeholder:    ciToken == "" && cfg.IsPlaceholder(cfg.CI.Auth.Token()),
			AllowAnonymous: cfg.CI.AllowAnonymous,
			UserAgent:      cfg.CI.UserAgent,
		},
		Checker: &Checker{
			PrometheusURL: cfg.Metrics.PrometheusURL,
			GrafanaURL:    cfg.Alerting.URL,
			GrafanaToken:  tokenIf(alertToken, alertOK),
			GitHubAPIURL:  cfg.CI.APIURL,
			GitHubToken:   ciToken,
			UserAgent:     cfg.CI.UserAgent,
		},
	}
}

func tokenIf(tok string, ok bool) string {
	if !ok {
		return ""
	}
	return tok
}

func hostFor(cfg *config.Config, ciConnected bool) Host {
	services := types.ServicePresence{
		Grafana:    "Not configured",
		Prometheus: "Not configured",
		GitHub:     "Not configured",
	}
	if cfg.Alerting.URL != "" {
		services.Grafana = cfg.Alerting.URL
	}
	if cfg.Metrics.PrometheusURL != "" {
		services.Prometheus = cfg.Metrics.PrometheusURL
	}
	if ciConnected {
		services.GitHub = "Connected"
	}
	return Host{
		Hostname:    cfg.Server.Hostname,
		Environment: cfg.Server.Environment,
		Services:    services,
	}
}
