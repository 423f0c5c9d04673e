package parse

import "testing"

const runsBody = `{
  "total_count": 2,
  "workflow_runs": [
    {
      "id": 9001,
      "name": "CI",
      "status": "completed",
      "conclusion": "success",
      "created_at": "2026-01-01T10:00:00Z",
      "updated_at": "2026-01-01T10:05:00Z",
      "head_branch": "main",
      "head_sha": "0123456789abcdef",
      "html_url": "https://github.com/o/r/actions/runs/9001",
      "actor": {"login": "octocat"}
    },
    {
      "id": 9002,
      "name": "Deploy",
      "status": "in_progress",
      "conclusion": null,
      "head_sha": "abc"
    }
  ]
}`

func TestPipelines(t *testing.T) {
	got, err := Pipelines([]byte(runsBody))
	if err != nil {
		t.Fatalf("Pipelines() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	p := got[0]
	if p.ID != 9001 || p.Name != "CI" || p.Branch != "main" || p.Actor != "octocat" {
		t.Errorf("pipeline = %+v", p)
	}
	if p.Commit != "0123456" {
		t.Errorf("Commit = %q, want 7-char short sha", p.Commit)
	}
	if p.Conclusion == nil || *p.Conclusion != "success" {
		t.Errorf("Conclusion = %v", p.Conclusion)
	}

	if got[1].Conclusion != nil {
		t.Errorf("in-progress Conclusion = %v, want nil", *got[1].Conclusion)
	}
	if got[1].Commit != "abc" {
		t.Errorf("short sha kept as is: %q", got[1].Commit)
	}
}

func TestPipelines_NoRuns(t *testing.T) {
	got, err := Pipelines([]byte(`{"message": "Not Found"}`))
	if err != nil {
		t.Fatalf("Pipelines() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestPipelines_NotJSON(t *testing.T) {
	if _, err := Pipelines([]byte("oops")); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
}
