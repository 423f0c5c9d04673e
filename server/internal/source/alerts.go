package source

import (
	"context"
	"log/slog"
	"time"

	"github.com/opsdeck/opsdeck/pkg/types"
	"github.com/opsdeck/opsdeck/server/internal/envelope"
	"github.com/opsdeck/opsdeck/server/internal/parse"
	"github.com/opsdeck/opsdeck/server/internal/probe"
)

// Alerts reads active alerts from the alerting backend, trying each
// candidate endpoint in order.
type Alerts struct {
	Prober    *probe.Prober
	Endpoints []string

	// Configured is false when the API key is missing or a placeholder.
	// No request is made in that case.
	Configured bool

	// Now is the clock used for synthetic timestamps.
	Now func() time.Time
}

// Fetch returns real alerts, or the synthetic placeholders when the
// backend is not configured, unreachable or answers with something that is
// not an alert payload. It never returns an error.
func (a *Alerts) Fetch(ctx context.Context) (Result[types.AlertRecord], error) {
	start := time.Now()
	res := a.fetch(ctx)
	observe("alerts", start, res.Provenance.Kind)
	return res, nil
}

func (a *Alerts) fetch(ctx context.Context) Result[types.AlertRecord] {
	if !a.Configured {
		slog.Info("source: alerting api key not configured, using synthetic alerts",
			"class", envelope.Class(envelope.ErrConfigurationAbsent))
		return a.synthetic()
	}

	res := a.Prober.Probe(ctx, a.Endpoints, map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	})
	if !res.Found {
		slog.Warn("source: all alerting endpoints failed, using synthetic alerts",
			"attempts", len(res.Attempts),
			"class", envelope.Class(envelope.ErrCollaboratorUnavailable))
		return a.synthetic()
	}

	records, err := parse.Alerts(res.Body, res.Endpoint)
	if err != nil {
		err = envelope.Malformed("alerts", err)
		slog.Warn("source: alert payload rejected, using synthetic alerts",
			"endpoint", res.Endpoint, "err", err, "class", envelope.Class(err))
		return a.synthetic()
	}

	slog.Debug("source: alerts fetched", "endpoint", res.Endpoint, "count", len(records))
	return realOf(records, SourceGrafana, res.Endpoint)
}

func (a *Alerts) synthetic() Result[types.AlertRecord] {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return syntheticOf(SyntheticAlerts(now()), NoteMockAlerts)
}
