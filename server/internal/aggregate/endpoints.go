package aggregate

import (
	"context"
	"log/slog"

	"github.com/opsdeck/opsdeck/pkg/types"
	"github.com/opsdeck/opsdeck/server/internal/envelope"
	"github.com/opsdeck/opsdeck/server/internal/source"
)

// Error texts for runtime-backed endpoints when the runtime is unreachable.
const (
	errContainers = "Docker not accessible"
	errLogs       = "Failed to fetch logs"
	errMetrics    = "Could not fetch Docker stats"
	errSystem     = "Could not fetch system info"
)

// Containers returns the container listing.
func (a *Aggregator) Containers(ctx context.Context) types.ContainersResponse {
	res, err := runTask(ctx, budget(a.timeouts.Runtime), "containers", a.src.Containers.Fetch)
	if err != nil {
		return types.ContainersResponse{
			Envelope:   envelope.Failed(errContainers),
			Containers: []types.ContainerRecord{},
		}
	}
	out := types.ContainersResponse{
		Envelope:   envelope.OK(),
		Containers: nonNil(res.Records),
		Total:      len(res.Records),
	}
	for _, c := range res.Records {
		if c.IsRunning {
			out.Running++
		}
	}
	return out
}

// Logs returns log tails for the named container, or for every running
// container when name is empty.
func (a *Aggregator) Logs(ctx context.Context, name string, lines int) types.LogsResponse {
	fetch := func(ctx context.Context) (source.Result[types.LogRecord], error) {
		return a.src.Logs.FetchFor(ctx, name, lines)
	}
	res, err := runTask(ctx, budget(a.timeouts.Runtime), "logs", fetch)
	if err != nil {
		return types.LogsResponse{Envelope: envelope.Failed(errLogs), Logs: []types.LogRecord{}}
	}
	return types.LogsResponse{
		Envelope: envelope.OK(),
		Logs:     nonNil(res.Records),
		Total:    len(res.Records),
	}
}

// Metrics returns per-container resource usage.
func (a *Aggregator) Metrics(ctx context.Context) types.MetricsResponse {
	res, err := runTask(ctx, budget(a.timeouts.Metrics), "metrics", a.src.Metrics.Fetch)
	if err != nil {
		return types.MetricsResponse{
			Envelope: envelope.Failed(errMetrics),
			Source:   source.SourceDockerStats,
			Metrics:  []types.MetricRecord{},
		}
	}
	return types.MetricsResponse{
		Envelope:        envelope.OK(),
		Source:          res.Provenance.Source,
		Metrics:         nonNil(res.Records),
		TotalContainers: len(res.Records),
	}
}

// Alerts returns alerts from the backend, or the synthetic placeholders with
// success false.
func (a *Aggregator) Alerts(ctx context.Context) types.AlertsResponse {
	res, err := runTask(ctx, budget(a.timeouts.Alerts), "alerts", a.src.Alerts.Fetch)
	if err != nil {
		slog.Warn("aggregate: alerts adapter failed, serving synthetic alerts", "err", err)
		res = source.Result[types.AlertRecord]{
			Records:    source.SyntheticAlerts(envelope.Now()),
			Provenance: source.Provenance{Kind: source.KindSynthetic, Source: source.SourceSynthetic, Note: source.NoteMockAlerts},
		}
	}

	env := envelope.OK()
	if res.Provenance.Kind == source.KindSynthetic {
		env = envelope.Degraded(false, res.Provenance.Note)
	}
	return types.AlertsResponse{
		Envelope: env,
		Alerts:   nonNil(res.Records),
		Total:    len(res.Records),
		Source:   res.Provenance.Source,
		Endpoint: res.Provenance.Endpoint,
	}
}

// Pipelines returns recent CI runs. Synthetic runs keep success true: the
// CI integration is optional.
func (a *Aggregator) Pipelines(ctx context.Context) types.PipelinesResponse {
	res, err := runTask(ctx, budget(a.timeouts.Pipelines), "pipelines", a.src.Pipelines.Fetch)
	if err != nil {
		slog.Warn("aggregate: pipelines adapter failed, serving synthetic pipelines", "err", err)
		res = source.Result[types.PipelineRecord]{
			Records:    source.SyntheticPipelines(envelope.Now(), nil),
			Provenance: source.Provenance{Kind: source.KindSynthetic, Source: source.SourceSynthetic, Note: source.NoteMockPipelines},
		}
	}

	env := envelope.OK()
	if res.Provenance.Kind == source.KindSynthetic {
		env = envelope.Degraded(true, res.Provenance.Note)
	}
	return types.PipelinesResponse{
		Envelope:  env,
		Pipelines: nonNil(res.Records),
		Total:     len(res.Records),
		Source:    res.Provenance.Source,
	}
}

// SystemInfo describes the runtime and the host. Host identity and service
// presence are filled in even when the runtime is unreachable.
func (a *Aggregator) SystemInfo(ctx context.Context) types.SystemResponse {
	res, err := runTask(ctx, budget(a.timeouts.Runtime), "system", a.src.System.Fetch)
	if err != nil || len(res.Records) == 0 {
		return types.SystemResponse{
			Envelope: envelope.Failed(errSystem),
			SystemInfoRecord: types.SystemInfoRecord{
				System: types.HostInfo{
					Hostname:  a.host.Hostname,
					NodeEnv:   a.host.Environment,
					Timestamp: envelope.Stamp(),
				},
				Services: a.host.Services,
			},
		}
	}
	return types.SystemResponse{Envelope: envelope.OK(), SystemInfoRecord: res.Records[0]}
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
