package source

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/opsdeck/opsdeck/pkg/types"
	"github.com/opsdeck/opsdeck/server/internal/envelope"
)

const syntheticPipelineCount = 5

var (
	pipelineStatuses    = []string{"queued", "in_progress", "completed"}
	pipelineConclusions = []string{"success", "failure", "cancelled"}
	workflowNames       = []string{
		"CI/CD Pipeline",
		"Docker Build",
		"Test Suite",
		"Deploy to Production",
		"Security Scan",
		"Code Quality Check",
	}
)

// SyntheticAlerts returns the three placeholder alerts shown when the
// alerting backend is unavailable. Timestamps are relative to now.
func SyntheticAlerts(now time.Time) []types.AlertRecord {
	at := func(d time.Duration) string { return envelope.Timestamp(now.Add(-d)) }
	resolved := at(30 * time.Minute)

	return []types.AlertRecord{
		{
			ID:           "alert_1",
			Name:         "High CPU Usage",
			Status:       "firing",
			Severity:     "warning",
			Description:  "CPU usage above 80% for container 'devops-backend'",
			StartsAt:     at(5 * time.Minute),
			GeneratorURL: "#",
			Source:       types.AlertSourceSynthetic,
		},
		{
			ID:           "alert_2",
			Name:         "Memory Pressure",
			Status:       "pending",
			Severity:     "critical",
			Description:  "Memory usage above 90% for container 'devops-frontend'",
			StartsAt:     at(time.Minute),
			GeneratorURL: "#",
			Source:       types.AlertSourceSynthetic,
		},
		{
			ID:           "alert_3",
			Name:         "Container Restart",
			Status:       "resolved",
			Severity:     "info",
			Description:  "Container 'cadvisor' restarted 3 times in last hour",
			StartsAt:     at(time.Hour),
			EndsAt:       &resolved,
			GeneratorURL: "#",
			Source:       types.AlertSourceSynthetic,
		},
	}
}

// SyntheticPipelines returns five placeholder workflow runs with ids
// 1001..1005, run i created i hours before now. intn supplies randomness
// and defaults to math/rand.
func SyntheticPipelines(now time.Time, intn func(n int) int) []types.PipelineRecord {
	if intn == nil {
		intn = rand.Intn
	}
	out := make([]types.PipelineRecord, 0, syntheticPipelineCount)
	for i := 1; i <= syntheticPipelineCount; i++ {
		status := pipelineStatuses[intn(len(pipelineStatuses))]
		var conclusion *string
		if status == "completed" {
			c := pipelineConclusions[intn(len(pipelineConclusions))]
			conclusion = &c
		}
		created := now.Add(-time.Duration(i) * time.Hour)
		updated := created.Add(time.Duration(intn(1800)) * time.Second)

		branch, actor := "develop", "developer"
		if i%2 == 0 {
			branch, actor = "main", "github-actions"
		}

		id := int64(1000 + i)
		out = append(out, types.PipelineRecord{
			ID:         id,
			Name:       workflowNames[intn(len(workflowNames))],
			Status:     status,
			Conclusion: conclusion,
			CreatedAt:  envelope.Timestamp(created),
			UpdatedAt:  envelope.Timestamp(updated),
			Branch:     branch,
			Commit:     fmt.Sprintf("abc%ddef", i),
			Actor:      actor,
			HTMLURL:    fmt.Sprintf("https://github.com/octocat/Hello-World/actions/runs/%d", id),
		})
	}
	return out
}
