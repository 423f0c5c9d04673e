package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/pkg/types"
	"github.com/opsdeck/opsdeck/server/internal/probe"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func alertsServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newAlerts(srv *httptest.Server, configured bool) *Alerts {
	return &Alerts{
		Prober: probe.New(buildHTTPClient("key-123", "", 0), time.Second),
		Endpoints: []string{
			srv.URL + "/api/alertmanager/grafana/api/v2/alerts",
			srv.URL + "/api/alerts",
			srv.URL + "/api/v1/alerts",
		},
		Configured: configured,
		Now:        func() time.Time { return fixedNow },
	}
}

func TestAlerts_NotConfigured(t *testing.T) {
	var hits atomic.Int32
	srv := alertsServer(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })

	res, err := newAlerts(srv, false).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.Provenance.Kind != KindSynthetic || res.Provenance.Note != NoteMockAlerts {
		t.Errorf("provenance = %+v", res.Provenance)
	}
	if len(res.Records) != 3 {
		t.Errorf("records = %d, want 3", len(res.Records))
	}
	if hits.Load() != 0 {
		t.Errorf("backend hit %d times without credentials", hits.Load())
	}
}

func TestAlerts_SecondEndpointAnswers(t *testing.T) {
	srv := alertsServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/api/alerts" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`[{"id": 7, "name": "Disk", "state": "alerting", "labels": {"severity": "critical"}}]`))
	})

	res, err := newAlerts(srv, true).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.Provenance.Kind != KindReal || res.Provenance.Source != SourceGrafana {
		t.Fatalf("provenance = %+v", res.Provenance)
	}
	if res.Provenance.Endpoint != srv.URL+"/api/alerts" {
		t.Errorf("endpoint = %q", res.Provenance.Endpoint)
	}
	if len(res.Records) != 1 || res.Records[0].Severity != "critical" || res.Records[0].Status != "alerting" {
		t.Errorf("records = %+v", res.Records)
	}
	if res.Records[0].Endpoint != srv.URL+"/api/alerts" {
		t.Errorf("record endpoint = %q", res.Records[0].Endpoint)
	}
}

func TestAlerts_AllEndpointsFail(t *testing.T) {
	var hits atomic.Int32
	srv := alertsServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	res, _ := newAlerts(srv, true).Fetch(context.Background())
	if res.Provenance.Kind != KindSynthetic {
		t.Errorf("kind = %q, want synthetic", res.Provenance.Kind)
	}
	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3", hits.Load())
	}
}

func TestAlerts_MalformedPayload(t *testing.T) {
	for _, body := range []string{"<html>Grafana login</html>", "null", `{"message": "ok"}`} {
		t.Run(body, func(t *testing.T) {
			srv := alertsServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			res, _ := newAlerts(srv, true).Fetch(context.Background())
			if res.Provenance.Kind != KindSynthetic || len(res.Records) != 3 {
				t.Errorf("kind = %q records = %d, want 3 synthetic", res.Provenance.Kind, len(res.Records))
			}
		})
	}
}

func TestSyntheticAlerts(t *testing.T) {
	got := SyntheticAlerts(fixedNow)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	wantSeverity := []string{"warning", "critical", "info"}
	for i, a := range got {
		if a.Severity != wantSeverity[i] {
			t.Errorf("alert %d severity = %q, want %q", i, a.Severity, wantSeverity[i])
		}
		if a.Source != types.AlertSourceSynthetic {
			t.Errorf("alert %d source = %q", i, a.Source)
		}
	}
	if got[0].StartsAt != "2026-03-01T11:55:00.000Z" {
		t.Errorf("startsAt = %q", got[0].StartsAt)
	}
	if got[0].EndsAt != nil {
		t.Error("firing alert has endsAt")
	}
	if got[2].EndsAt == nil || *got[2].EndsAt != "2026-03-01T11:30:00.000Z" {
		t.Errorf("resolved endsAt = %v", got[2].EndsAt)
	}
}
