package source

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/opsdeck/opsdeck/pkg/types"
	"github.com/opsdeck/opsdeck/server/internal/envelope"
)

func TestContainers_Fetch(t *testing.T) {
	f := newFakeRunner().on(
		"web:::Up 2 hours (healthy):::nginx:1.25:::0.0.0.0:80->80/tcp\n"+
			"db:::Exited (1) 5 minutes ago:::postgres:16:::\n",
		"ps", "--format", listingFormat)

	res, err := (&Containers{Runtime: rt(f)}).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.Provenance.Kind != KindReal || res.Provenance.Source != SourceDocker {
		t.Errorf("provenance = %+v", res.Provenance)
	}
	if len(res.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(res.Records))
	}
	if !res.Records[0].IsRunning || res.Records[1].IsRunning {
		t.Errorf("running flags = %v, %v", res.Records[0].IsRunning, res.Records[1].IsRunning)
	}
	if res.Records[1].Ports != "N/A" {
		t.Errorf("empty ports = %q, want N/A", res.Records[1].Ports)
	}
}

func TestContainers_RuntimeDown(t *testing.T) {
	f := newFakeRunner().fail(errors.New("Cannot connect to the Docker daemon"), "ps", "--format", listingFormat)
	_, err := (&Containers{Runtime: rt(f)}).Fetch(context.Background())
	if !errors.Is(err, envelope.ErrCollaboratorUnavailable) {
		t.Fatalf("err = %v, want ErrCollaboratorUnavailable", err)
	}
}

func TestLogs_AllContainers(t *testing.T) {
	long := strings.Repeat("é", 6000)
	longErr := errors.New(strings.Repeat("x", 500))
	f := newFakeRunner().
		on("web\napi\n", "ps", "--format", namesFormat).
		on(long, "logs", "--tail", "50", "--", "web").
		fail(longErr, "logs", "--tail", "50", "--", "api")

	l := &Logs{Runtime: rt(f), Tail: 50, MaxChars: 5000}
	res, err := l.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(res.Records))
	}

	web := res.Records[0]
	if web.Name != "web" || web.Error {
		t.Errorf("web record = %+v", web)
	}
	if n := utf8.RuneCountInString(web.Logs); n != 5000 {
		t.Errorf("web logs = %d chars, want 5000", n)
	}
	if !utf8.ValidString(web.Logs) {
		t.Error("truncation split a multi-byte character")
	}
	if !web.HasMore {
		t.Error("HasMore = false for truncated logs")
	}

	api := res.Records[1]
	if !api.Error {
		t.Error("api Error = false")
	}
	want := "Error fetching logs: " + strings.Repeat("x", 200)
	if api.Logs != want {
		t.Errorf("api logs = %q (len %d)", api.Logs[:40], len(api.Logs))
	}
}

func TestLogs_ShortLogsNotTruncated(t *testing.T) {
	f := newFakeRunner().on("line 1\nline 2\n", "logs", "--tail", "10", "--", "web")
	res, err := (&Logs{Runtime: rt(f), Tail: 50, MaxChars: 5000}).FetchFor(context.Background(), "web", 10)
	if err != nil {
		t.Fatalf("FetchFor() error = %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %d", len(res.Records))
	}
	if r := res.Records[0]; r.HasMore || r.Logs != "line 1\nline 2\n" {
		t.Errorf("record = %+v", r)
	}
	if f.called("ps", "--format", namesFormat) {
		t.Error("named fetch listed containers")
	}
}

func TestLogs_DashNameIsNotAFlag(t *testing.T) {
	f := newFakeRunner().on("", "logs", "--tail", "50", "--", "-f")
	if _, err := (&Logs{Runtime: rt(f), Tail: 50}).FetchFor(context.Background(), "-f", 0); err != nil {
		t.Fatalf("FetchFor() error = %v", err)
	}
	if !f.called("logs", "--tail", "50", "--", "-f") {
		t.Errorf("calls = %+v, want the name after --", f.calls)
	}
}

func TestLogs_MergesStderr(t *testing.T) {
	f := newFakeRunner().on("x", "logs", "--tail", "50", "--", "web")
	if _, err := (&Logs{Runtime: rt(f), Tail: 50}).FetchFor(context.Background(), "web", 0); err != nil {
		t.Fatalf("FetchFor() error = %v", err)
	}
	if len(f.calls) != 1 || !f.calls[0].MergeStderr {
		t.Errorf("calls = %+v, want one merged-stderr call", f.calls)
	}
}

func TestLogs_ListFails(t *testing.T) {
	f := newFakeRunner().fail(errors.New("daemon down"), "ps", "--format", namesFormat)
	_, err := (&Logs{Runtime: rt(f), Tail: 50}).Fetch(context.Background())
	if !errors.Is(err, envelope.ErrCollaboratorUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestLogs_NoContainers(t *testing.T) {
	f := newFakeRunner().on("\n", "ps", "--format", namesFormat)
	res, err := (&Logs{Runtime: rt(f), Tail: 50}).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(res.Records) != 0 {
		t.Errorf("records = %d, want 0", len(res.Records))
	}
}

func TestSystemInfo_Fetch(t *testing.T) {
	f := newFakeRunner().
		on("27.3.1::1.47\n", "version", "--format", versionFormat).
		on("27.3.1::5::3::0::2\n", "info", "--format", infoFormat).
		on("a1\nb2\nc3\n", "ps", "-q")

	host := Host{
		Hostname:    "box",
		Environment: "production",
		Services:    types.ServicePresence{Grafana: "http://g:3000", Prometheus: "Not configured", GitHub: "Connected"},
	}
	res, err := (&SystemInfo{Runtime: rt(f), Host: host}).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %d", len(res.Records))
	}
	r := res.Records[0]
	if r.Docker != (types.DockerVersion{Version: "27.3.1", ServerVersion: "27.3.1", APIVersion: "1.47"}) {
		t.Errorf("docker = %+v", r.Docker)
	}
	if r.Containers != (types.ContainerCounts{Total: 5, Running: 3, Paused: 0, Stopped: 2, Active: 3}) {
		t.Errorf("containers = %+v", r.Containers)
	}
	if r.System.Hostname != "box" || r.System.NodeEnv != "production" || r.System.Timestamp == "" {
		t.Errorf("system = %+v", r.System)
	}
	if r.Services != host.Services {
		t.Errorf("services = %+v", r.Services)
	}
}

func TestSystemInfo_OneCallFails(t *testing.T) {
	f := newFakeRunner().
		on("27.3.1::1.47\n", "version", "--format", versionFormat).
		fail(errors.New("permission denied"), "info", "--format", infoFormat).
		on("", "ps", "-q")

	_, err := (&SystemInfo{Runtime: rt(f)}).Fetch(context.Background())
	if !errors.Is(err, envelope.ErrCollaboratorUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"hello", 0, "hello"},
	}
	for _, tc := range tests {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}
