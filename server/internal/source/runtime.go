package source

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/opsdeck/opsdeck/pkg/types"
	"github.com/opsdeck/opsdeck/server/internal/envelope"
	"github.com/opsdeck/opsdeck/server/internal/parse"
	"github.com/opsdeck/opsdeck/server/internal/runner"
)

// Runtime CLI format templates. Field order must match the parse package.
const (
	listingFormat = "{{.Names}}:::{{.Status}}:::{{.Image}}:::{{.Ports}}"
	namesFormat   = "{{.Names}}"
	statsFormat   = "{{.Name}}::{{.CPUPerc}}::{{.MemPerc}}::{{.MemUsage}}::{{.NetIO}}::{{.BlockIO}}"
	versionFormat = "{{.Server.Version}}::{{.Server.APIVersion}}"
	infoFormat    = "{{.ServerVersion}}::{{.Containers}}::{{.ContainersRunning}}::{{.ContainersPaused}}::{{.ContainersStopped}}"
)

const (
	logErrorPrefix = "Error fetching logs: "
	logErrorMax    = 200
)

// Runtime wraps the container runtime CLI.
type Runtime struct {
	Runner runner.Runner
	Binary string
}

func (rt Runtime) run(ctx context.Context, merge bool, args ...string) (string, error) {
	return rt.Runner.Run(ctx, runner.Command{Name: rt.Binary, Args: args, MergeStderr: merge})
}

// Containers lists containers through the runtime CLI.
type Containers struct {
	Runtime Runtime
}

// Fetch returns one record per listed container.
func (c *Containers) Fetch(ctx context.Context) (Result[types.ContainerRecord], error) {
	start := time.Now()
	out, err := c.Runtime.run(ctx, false, "ps", "--format", listingFormat)
	if err != nil {
		observe("containers", start, "")
		return Result[types.ContainerRecord]{}, envelope.Unavailable("containers", err)
	}

	lines := parse.Lines(out)
	records := make([]types.ContainerRecord, 0, len(lines))
	for _, l := range lines {
		records = append(records, parse.Container(l))
	}
	observe("containers", start, KindReal)
	return realOf(records, SourceDocker, ""), nil
}

// Logs tails container logs through the runtime CLI.
type Logs struct {
	Runtime Runtime

	// Tail is the default number of lines requested per container.
	Tail int

	// MaxChars bounds each record's log text, counted in characters.
	MaxChars int
}

// Fetch tails Tail lines of every running container.
func (l *Logs) Fetch(ctx context.Context) (Result[types.LogRecord], error) {
	return l.FetchFor(ctx, "", l.Tail)
}

// FetchFor tails lines of the named container, or of every running container
// when name is empty. A failure for one container becomes a failed record;
// only a failure to list containers is returned as an error.
func (l *Logs) FetchFor(ctx context.Context, name string, lines int) (Result[types.LogRecord], error) {
	start := time.Now()
	if lines <= 0 {
		lines = l.Tail
	}

	names := []string{name}
	if name == "" {
		out, err := l.Runtime.run(ctx, false, "ps", "--format", namesFormat)
		if err != nil {
			observe("logs", start, "")
			return Result[types.LogRecord]{}, envelope.Unavailable("logs", err)
		}
		names = parse.Lines(out)
	}

	records := make([]types.LogRecord, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range names {
		g.Go(func() error {
			records[i] = l.tail(gctx, n, lines)
			return nil
		})
	}
	_ = g.Wait()

	observe("logs", start, KindReal)
	return realOf(records, SourceDocker, ""), nil
}

func (l *Logs) tail(ctx context.Context, name string, lines int) types.LogRecord {
	rec := types.LogRecord{
		ID:        uuid.NewString(),
		Name:      name,
		Timestamp: envelope.Stamp(),
	}
	out, err := l.Runtime.run(ctx, true, "logs", "--tail", strconv.Itoa(lines), "--", name)
	if err != nil {
		slog.Warn("source: log tail failed", "container", name, "err", err)
		rec.Error = true
		rec.Logs = logErrorPrefix + truncate(err.Error(), logErrorMax)
		return rec
	}
	rec.Logs = truncate(out, l.MaxChars)
	rec.HasMore = rec.Logs != out
	return rec
}

// truncate returns the first limit characters of s.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// Host identifies the machine and the configured external services.
type Host struct {
	Hostname    string
	Environment string
	Services    types.ServicePresence
}

// SystemInfo describes the runtime via three concurrent CLI calls.
type SystemInfo struct {
	Runtime Runtime
	Host    Host
}

// Fetch returns a single record. Any failed call fails the fetch.
func (s *SystemInfo) Fetch(ctx context.Context) (Result[types.SystemInfoRecord], error) {
	start := time.Now()

	var (
		mu                  sync.Mutex
		versionOut, infoOut string
		active              int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.Runtime.run(gctx, false, "version", "--format", versionFormat)
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		mu.Lock()
		versionOut = out
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		out, err := s.Runtime.run(gctx, false, "info", "--format", infoFormat)
		if err != nil {
			return fmt.Errorf("info: %w", err)
		}
		mu.Lock()
		infoOut = out
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		out, err := s.Runtime.run(gctx, false, "ps", "-q")
		if err != nil {
			return fmt.Errorf("ps: %w", err)
		}
		mu.Lock()
		active = len(parse.Lines(out))
		mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		observe("system", start, "")
		return Result[types.SystemInfoRecord]{}, envelope.Unavailable("system", err)
	}

	rec := parse.SystemInfo(infoOut)
	rec.Docker.Version, rec.Docker.APIVersion = parse.Version(versionOut)
	rec.Containers.Active = active
	rec.System = types.HostInfo{
		Hostname:  s.Host.Hostname,
		NodeEnv:   s.Host.Environment,
		Timestamp: envelope.Stamp(),
	}
	rec.Services = s.Host.Services

	observe("system", start, KindReal)
	return realOf([]types.SystemInfoRecord{rec}, SourceDocker, ""), nil
}
