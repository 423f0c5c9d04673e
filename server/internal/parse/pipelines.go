package parse

import (
	"encoding/json"
	"fmt"

	"github.com/opsdeck/opsdeck/pkg/types"
)

const shortSHALen = 7

type workflowRuns struct {
	WorkflowRuns []workflowRun `json:"workflow_runs"`
}

type workflowRun struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Conclusion *string `json:"conclusion"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
	HeadBranch string  `json:"head_branch"`
	HeadSHA    string  `json:"head_sha"`
	HTMLURL    string  `json:"html_url"`
	Actor      struct {
		Login string `json:"login"`
	} `json:"actor"`
}

// Pipelines decodes a CI provider workflow-runs response body.
// A body without a workflow_runs list yields no records.
func Pipelines(body []byte) ([]types.PipelineRecord, error) {
	var resp workflowRuns
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode workflow runs: %w", err)
	}
	out := make([]types.PipelineRecord, 0, len(resp.WorkflowRuns))
	for _, r := range resp.WorkflowRuns {
		sha := r.HeadSHA
		if len(sha) > shortSHALen {
			sha = sha[:shortSHALen]
		}
		out = append(out, types.PipelineRecord{
			ID:         r.ID,
			Name:       r.Name,
			Status:     r.Status,
			Conclusion: nonEmpty(r.Conclusion),
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
			Branch:     r.HeadBranch,
			Commit:     sha,
			Actor:      r.Actor.Login,
			HTMLURL:    r.HTMLURL,
		})
	}
	return out, nil
}
