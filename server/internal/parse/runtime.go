package parse

import (
	"strings"

	"github.com/google/uuid"

	"github.com/opsdeck/opsdeck/pkg/types"
	"github.com/opsdeck/opsdeck/server/internal/units"
)

// Markers the runtime uses inside a container's status text.
const (
	runningMarker   = "Up"
	healthyMarker   = "healthy"
	unhealthyMarker = "unhealthy"
)

// Container parses one `name:::status:::image:::ports` listing line.
func Container(line string) types.ContainerRecord {
	f := Fields(line, ListingSep, 4)
	status := orDefault(f[1], "Unknown")
	return types.ContainerRecord{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(f[0]),
		Status:    status,
		Image:     orDefault(f[2], "Unknown"),
		Ports:     orDefault(f[3], "N/A"),
		IsRunning: strings.Contains(status, runningMarker),
		Health:    health(status),
	}
}

// health derives the health enum from status text. "unhealthy" is checked
// first because it contains "healthy".
func health(status string) string {
	switch {
	case strings.Contains(status, unhealthyMarker):
		return types.HealthUnhealthy
	case strings.Contains(status, healthyMarker):
		return types.HealthHealthy
	default:
		return types.HealthUnknown
	}
}

// Stats parses one `name::cpu%::mem%::used / total::netIO::blockIO` line.
// ts is the record timestamp.
func Stats(line, ts string) types.MetricRecord {
	f := Fields(line, StatsSep, 6)
	usage := strings.TrimSpace(f[3])
	used, total := MemoryUsage(usage)
	return types.MetricRecord{
		ID:            uuid.NewString(),
		Name:          orDefault(f[0], "Unknown"),
		CPU:           percent(f[1]),
		Memory:        percent(f[2]),
		MemoryUsage:   orDefault(usage, "0B"),
		UsedMemoryMB:  used,
		TotalMemoryMB: total,
		NetworkIO:     orDefault(f[4], "0B"),
		DiskIO:        orDefault(f[5], "0B"),
		Timestamp:     ts,
	}
}

// MemoryUsage splits a "used / total" composite and converts both sides to
// megabytes. Either side defaults to 0 when missing or unparseable.
func MemoryUsage(s string) (usedMB, totalMB float64) {
	if s == "" {
		return 0, 0
	}
	used, total, _ := strings.Cut(s, "/")
	return units.ToMegabytes(strings.TrimSpace(used)), units.ToMegabytes(strings.TrimSpace(total))
}

// SystemInfo parses a `serverVersion::total::running::paused::stopped` line.
// Only the ServerVersion and container counts are filled in.
func SystemInfo(line string) types.SystemInfoRecord {
	f := Fields(strings.TrimSpace(line), StatsSep, 5)
	return types.SystemInfoRecord{
		Docker: types.DockerVersion{
			ServerVersion: orDefault(f[0], "Unknown"),
		},
		Containers: types.ContainerCounts{
			Total:   integer(f[1]),
			Running: integer(f[2]),
			Paused:  integer(f[3]),
			Stopped: integer(f[4]),
		},
	}
}

// Version parses a `version::apiVersion` line.
func Version(line string) (version, apiVersion string) {
	f := Fields(strings.TrimSpace(line), StatsSep, 2)
	return orDefault(f[0], "Unknown"), orDefault(f[1], "Unknown")
}
