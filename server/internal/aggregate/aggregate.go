package aggregate

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsdeck/opsdeck/pkg/types"
	"github.com/opsdeck/opsdeck/server/internal/config"
	"github.com/opsdeck/opsdeck/server/internal/envelope"
	"github.com/opsdeck/opsdeck/server/internal/source"
)

// LogSource tails container logs.
type LogSource interface {
	FetchFor(ctx context.Context, name string, lines int) (source.Result[types.LogRecord], error)
}

// Sources are the adapters the Aggregator draws from.
type Sources struct {
	Containers source.Adapter[types.ContainerRecord]
	Logs       LogSource
	Metrics    source.Adapter[types.MetricRecord]
	System     source.Adapter[types.SystemInfoRecord]
	Alerts     source.Adapter[types.AlertRecord]
	Pipelines  source.Adapter[types.PipelineRecord]
}

// Timeouts bound each task. A task that overruns is treated as failed.
type Timeouts struct {
	Runtime   time.Duration
	Metrics   time.Duration
	Alerts    time.Duration
	Pipelines time.Duration
}

const defaultTimeout = 5 * time.Second

// headroom is added to task budgets derived from adapter timeouts so an
// adapter whose own deadlines expire still gets to return its fallback.
const headroom = time.Second

// budget returns d, or defaultTimeout when d is unset.
func budget(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}

// Aggregator builds summaries and endpoint payloads.
type Aggregator struct {
	src      Sources
	host     source.Host
	timeouts Timeouts

	// compose turns gathered inputs into a Summary. Replaced in tests.
	compose func(inputs) types.Summary
}

// New returns an Aggregator over src. host fills the summary's identity
// fields when the runtime cannot be reached.
func New(src Sources, host source.Host, timeouts Timeouts) *Aggregator {
	return &Aggregator{src: src, host: host, timeouts: timeouts, compose: compose}
}

// FromSet wires an Aggregator to the adapters in set with timeouts derived
// from cfg. The alerts budget covers one attempt per candidate path; every
// budget leaves headroom past the adapter's worst case.
func FromSet(set *source.Set, cfg *config.Config) *Aggregator {
	return New(Sources{
		Containers: set.Containers,
		Logs:       set.Logs,
		Metrics:    set.Metrics,
		System:     set.System,
		Alerts:     set.Alerts,
		Pipelines:  set.Pipelines,
	}, set.System.Host, Timeouts{
		Runtime:   cfg.Runtime.Timeout + headroom,
		Metrics:   cfg.Runtime.Timeout + cfg.Metrics.Timeout + headroom,
		Alerts:    cfg.Alerting.Timeout*time.Duration(len(cfg.Alerting.Paths)) + headroom,
		Pipelines: cfg.CI.Timeout + headroom,
	})
}

// inputs are the per-task result slots of one summary build.
type inputs struct {
	containers []types.ContainerRecord
	alerts     source.Result[types.AlertRecord]
	alertsErr  error
	system     *types.SystemInfoRecord
	host       source.Host
}

// BuildSummary gathers the containers, alerts and system inputs
// concurrently and composes the summary. A failed input degrades its part of
// the summary to zeros; only a fault while composing yields success false.
func (a *Aggregator) BuildSummary(ctx context.Context) types.SummaryResponse {
	in := inputs{host: a.host}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := runTask(gctx, budget(a.timeouts.Runtime), "containers", a.src.Containers.Fetch)
		if err == nil {
			in.containers = res.Records
		}
		return nil
	})
	g.Go(func() error {
		in.alerts, in.alertsErr = runTask(gctx, budget(a.timeouts.Alerts), "alerts", a.src.Alerts.Fetch)
		return nil
	})
	g.Go(func() error {
		res, err := runTask(gctx, budget(a.timeouts.Runtime), "system", a.src.System.Fetch)
		if err == nil && len(res.Records) > 0 {
			rec := res.Records[0]
			in.system = &rec
		}
		return nil
	})
	_ = g.Wait()

	summary, err := a.safeCompose(in)
	if err != nil {
		slog.Error("aggregate: summary composition failed", "err", err, "class", envelope.Class(err))
		return types.SummaryResponse{
			Envelope: envelope.Failed("Failed to build summary"),
			Summary:  types.Summary{Timestamp: envelope.Stamp()},
		}
	}
	summary.Timestamp = envelope.Stamp()
	return types.SummaryResponse{Envelope: envelope.OK(), Summary: summary}
}

func (a *Aggregator) safeCompose(in inputs) (s types.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = types.Summary{}, envelope.Fault("compose", r)
		}
	}()
	return a.compose(in), nil
}

// compose derives counts from the gathered inputs. It does not read the clock.
func compose(in inputs) types.Summary {
	var s types.Summary

	for _, c := range in.containers {
		s.Containers.Total++
		if c.IsRunning {
			s.Containers.Running++
		}
	}
	s.Containers.Stopped = s.Containers.Total - s.Containers.Running

	if in.alertsErr == nil {
		s.Alerts.Source = in.alerts.Provenance.Source
		for _, al := range in.alerts.Records {
			s.Alerts.Total++
			switch al.Severity {
			case "critical":
				s.Alerts.Critical++
			case "warning":
				s.Alerts.Warning++
			}
		}
	}

	s.System = types.SystemSummary{
		DockerVersion: "Unknown",
		Hostname:      in.host.Hostname,
		Services:      in.host.Services,
	}
	if in.system != nil {
		s.System.DockerVersion = in.system.Docker.Version
		if in.system.System.Hostname != "" {
			s.System.Hostname = in.system.System.Hostname
		}
	}
	return s
}

type outcome[T any] struct {
	res source.Result[T]
	err error
}

// runTask calls fetch under its own timeout. A panic inside fetch becomes an
// ErrUnexpectedFault and an overrun becomes ErrCollaboratorUnavailable; in
// both cases and on a plain error the result is empty.
func runTask[T any](ctx context.Context, timeout time.Duration, name string,
	fetch func(context.Context) (source.Result[T], error)) (source.Result[T], error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: envelope.Fault(name, r)}
			}
		}()
		res, err := fetch(ctx)
		done <- outcome[T]{res: res, err: err}
	}()

	var o outcome[T]
	select {
	case o = <-done:
	case <-ctx.Done():
		o.err = envelope.Unavailable(name, ctx.Err())
	}
	if o.err != nil {
		slog.Warn("aggregate: source failed, substituting empty result",
			"source", name, "err", o.err, "class", envelope.Class(o.err))
		return source.Result[T]{}, o.err
	}
	return o.res, nil
}
