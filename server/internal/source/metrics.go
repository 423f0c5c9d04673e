package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/opsdeck/opsdeck/pkg/types"
	"github.com/opsdeck/opsdeck/server/internal/envelope"
	"github.com/opsdeck/opsdeck/server/internal/parse"
	"github.com/opsdeck/opsdeck/server/internal/units"
)

// cAdvisor metric families read by the exposition fallback. Container
// identity comes from the "name" label.
const (
	cadvisorMemUsage = "container_memory_usage_bytes"
	cadvisorMemLimit = "container_spec_memory_limit_bytes"
	cadvisorNetRx    = "container_network_receive_bytes_total"
	cadvisorNetTx    = "container_network_transmit_bytes_total"
	cadvisorFsRead   = "container_fs_reads_bytes_total"
	cadvisorFsWrite  = "container_fs_writes_bytes_total"

	nameLabel = "name"
)

// Metrics reports per-container resource usage from `stats`, falling back
// to a Prometheus text exposition endpoint when the runtime is unreachable.
type Metrics struct {
	Runtime Runtime

	// ExpositionURL enables the fallback when non-empty.
	ExpositionURL string
	Client        *http.Client
}

// Fetch returns one record per container.
func (m *Metrics) Fetch(ctx context.Context) (Result[types.MetricRecord], error) {
	start := time.Now()
	out, err := m.Runtime.run(ctx, false, "stats", "--no-stream", "--format", statsFormat)
	if err == nil {
		ts := envelope.Stamp()
		lines := parse.Lines(out, "CONTAINER")
		records := make([]types.MetricRecord, 0, len(lines))
		for _, l := range lines {
			records = append(records, parse.Stats(l, ts))
		}
		observe("metrics", start, KindReal)
		return realOf(records, SourceDockerStats, ""), nil
	}

	statsErr := envelope.Unavailable("metrics", err)
	if m.ExpositionURL == "" {
		observe("metrics", start, "")
		return Result[types.MetricRecord]{}, statsErr
	}

	slog.Warn("source: stats unavailable, trying exposition endpoint",
		"url", m.ExpositionURL, "err", err)
	records, xerr := m.fromExposition(ctx)
	if xerr != nil {
		observe("metrics", start, "")
		return Result[types.MetricRecord]{}, errors.Join(statsErr, xerr)
	}
	observe("metrics", start, KindReal)
	return realOf(records, SourceExposition, m.ExpositionURL), nil
}

func (m *Metrics) fromExposition(ctx context.Context) ([]types.MetricRecord, error) {
	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	mfs, err := fetchMetrics(ctx, client, m.ExpositionURL)
	if err != nil {
		return nil, envelope.Unavailable("exposition", err)
	}

	used := sumByName(mfs[cadvisorMemUsage])
	limit := sumByName(mfs[cadvisorMemLimit])
	rx := sumByName(mfs[cadvisorNetRx])
	tx := sumByName(mfs[cadvisorNetTx])
	rd := sumByName(mfs[cadvisorFsRead])
	wr := sumByName(mfs[cadvisorFsWrite])

	names := make([]string, 0, len(used))
	for n := range used {
		names = append(names, n)
	}
	sort.Strings(names)

	ts := envelope.Stamp()
	records := make([]types.MetricRecord, 0, len(names))
	for _, n := range names {
		u, lim := used[n], limit[n]
		var pct float64
		if lim > 0 {
			pct = u / lim * 100
		}
		records = append(records, types.MetricRecord{
			ID:            uuid.NewString(),
			Name:          n,
			Memory:        pct,
			MemoryUsage:   units.FormatBytes(u) + " / " + units.FormatBytes(lim),
			UsedMemoryMB:  u / 1024 / 1024,
			TotalMemoryMB: lim / 1024 / 1024,
			NetworkIO:     units.FormatBytes(rx[n]) + " / " + units.FormatBytes(tx[n]),
			DiskIO:        units.FormatBytes(rd[n]) + " / " + units.FormatBytes(wr[n]),
			Timestamp:     ts,
		})
	}
	return records, nil
}

// fetchMetrics performs an HTTP GET to url and returns parsed metric families.
func fetchMetrics(ctx context.Context, client *http.Client, url string) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseMetrics(resp.Body)
}

// parseMetrics decodes a Prometheus text exposition. A partial parse with
// at least one family is accepted.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// sumByName adds up counter, gauge or untyped values per "name" label.
// Series without a name (cgroup hierarchy, host totals) are skipped.
func sumByName(mf *dto.MetricFamily) map[string]float64 {
	out := make(map[string]float64)
	if mf == nil {
		return out
	}
	for _, m := range mf.GetMetric() {
		name := labelValue(m, nameLabel)
		if name == "" {
			continue
		}
		switch {
		case m.Counter != nil:
			out[name] += m.Counter.GetValue()
		case m.Gauge != nil:
			out[name] += m.Gauge.GetValue()
		case m.Untyped != nil:
			out[name] += m.Untyped.GetValue()
		}
	}
	return out
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
