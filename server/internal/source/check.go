package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsdeck/opsdeck/pkg/types"
)

// CheckTimeout bounds one connectivity check.
const CheckTimeout = 3 * time.Second

// Service names accepted by Checker.Check.
const (
	ServicePrometheus = "prometheus"
	ServiceGrafana    = "grafana"
	ServiceGitHub     = "github"
)

// Services lists the checkable services in display order.
var Services = []string{ServicePrometheus, ServiceGrafana, ServiceGitHub}

// Checker verifies that the configured external services answer.
type Checker struct {
	PrometheusURL string

	GrafanaURL   string
	GrafanaToken string

	GitHubAPIURL string
	GitHubToken  string
	UserAgent    string

	Client *http.Client
}

// Check runs the named check. ok is false for an unknown service.
func (c *Checker) Check(ctx context.Context, service string) (res types.CheckResult, ok bool) {
	switch service {
	case ServicePrometheus:
		return c.Prometheus(ctx), true
	case ServiceGrafana:
		return c.Grafana(ctx), true
	case ServiceGitHub:
		return c.GitHub(ctx), true
	default:
		return types.CheckResult{}, false
	}
}

// All runs every check concurrently and returns results in Services order.
func (c *Checker) All(ctx context.Context) []types.CheckResult {
	out := make([]types.CheckResult, len(Services))
	var g errgroup.Group
	for i, s := range Services {
		g.Go(func() error {
			out[i], _ = c.Check(ctx, s)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Prometheus queries the `up` series.
func (c *Checker) Prometheus(ctx context.Context) types.CheckResult {
	res := types.CheckResult{Service: ServicePrometheus}
	if c.PrometheusURL == "" {
		res.Detail = "Not configured"
		return res
	}
	res.Configured = true
	res.Endpoint = strings.TrimRight(c.PrometheusURL, "/") + "/api/v1/query?query=up"
	_, err := c.get(ctx, res.Endpoint, "")
	return finish(res, err, "Connected to "+c.PrometheusURL)
}

// Grafana calls the health endpoint with the API key.
func (c *Checker) Grafana(ctx context.Context) types.CheckResult {
	res := types.CheckResult{Service: ServiceGrafana}
	if c.GrafanaURL == "" || c.GrafanaToken == "" {
		res.Detail = "Not configured"
		return res
	}
	res.Configured = true
	res.Endpoint = strings.TrimRight(c.GrafanaURL, "/") + "/api/health"
	_, err := c.get(ctx, res.Endpoint, c.GrafanaToken)
	return finish(res, err, "Connected to "+c.GrafanaURL)
}

// GitHub authenticates with the token and reports the login.
func (c *Checker) GitHub(ctx context.Context) types.CheckResult {
	res := types.CheckResult{Service: ServiceGitHub}
	if c.GitHubToken == "" {
		res.Detail = "Not configured"
		return res
	}
	res.Configured = true
	res.Endpoint = strings.TrimRight(c.GitHubAPIURL, "/") + "/user"
	body, err := c.get(ctx, res.Endpoint, c.GitHubToken)
	if err != nil {
		return finish(res, err, "")
	}
	var user struct {
		Login string `json:"login"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return finish(res, fmt.Errorf("decode user: %w", err), "")
	}
	return finish(res, nil, "Authenticated as "+user.Login)
}

func finish(res types.CheckResult, err error, ok string) types.CheckResult {
	if err != nil {
		res.Detail = err.Error()
		return res
	}
	res.Reachable = true
	res.Detail = ok
	return res
}

func (c *Checker) get(ctx context.Context, url, token string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
