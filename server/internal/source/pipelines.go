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

const ciAccept = "application/vnd.github+json"

// Pipelines reads recent workflow runs from the CI provider.
type Pipelines struct {
	Prober  *probe.Prober
	RunsURL string

	// Repo is empty when no repository is configured.
	Repo string

	// HasToken is true when a usable token is configured. Placeholder
	// reports a token that is set to a known placeholder value.
	HasToken    bool
	Placeholder bool

	// AllowAnonymous permits requests without a token.
	AllowAnonymous bool

	UserAgent string

	Now  func() time.Time
	Intn func(n int) int
}

// Fetch returns real runs, or synthetic runs when the provider is not
// configured or does not answer. It never returns an error.
func (p *Pipelines) Fetch(ctx context.Context) (Result[types.PipelineRecord], error) {
	start := time.Now()
	res := p.fetch(ctx)
	observe("pipelines", start, res.Provenance.Kind)
	return res, nil
}

func (p *Pipelines) fetch(ctx context.Context) Result[types.PipelineRecord] {
	if reason := p.unconfigured(); reason != "" {
		slog.Info("source: ci provider not configured, using synthetic pipelines",
			"reason", reason, "class", envelope.Class(envelope.ErrConfigurationAbsent))
		return p.synthetic()
	}

	res := p.Prober.Probe(ctx, []string{p.RunsURL}, map[string]string{
		"Accept":     ciAccept,
		"User-Agent": p.UserAgent,
	})
	if !res.Found {
		slog.Warn("source: ci provider unreachable, using synthetic pipelines",
			"url", p.RunsURL, "class", envelope.Class(envelope.ErrCollaboratorUnavailable))
		return p.synthetic()
	}

	records, err := parse.Pipelines(res.Body)
	if err != nil {
		err = envelope.Malformed("pipelines", err)
		slog.Warn("source: workflow runs payload rejected, using synthetic pipelines",
			"err", err, "class", envelope.Class(err))
		return p.synthetic()
	}
	return realOf(records, SourceGitHub, res.Endpoint)
}

// unconfigured returns why no request should be made, or "".
func (p *Pipelines) unconfigured() string {
	switch {
	case p.Repo == "":
		return "ci.repo not set"
	case p.Placeholder:
		return "placeholder token"
	case !p.HasToken && !p.AllowAnonymous:
		return "no token"
	default:
		return ""
	}
}

func (p *Pipelines) synthetic() Result[types.PipelineRecord] {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return syntheticOf(SyntheticPipelines(now(), p.Intn), NoteMockPipelines)
}
