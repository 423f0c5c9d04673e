package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opsdeck/opsdeck/pkg/types"
	wsHub "github.com/opsdeck/opsdeck/server/internal/ws"
)

const testInterval = 20 * time.Millisecond

// fakeBuilder reports a running-container count that the test can change.
type fakeBuilder struct {
	running atomic.Int32
	builds  atomic.Int32
}

func (b *fakeBuilder) BuildSummary(context.Context) types.SummaryResponse {
	b.builds.Add(1)
	n := int(b.running.Load())
	return types.SummaryResponse{
		Envelope: types.Envelope{Success: true, Timestamp: "2026-01-01T00:00:00.000Z"},
		Summary: types.Summary{
			Containers: types.ContainerSummary{Total: n, Running: n},
			Timestamp:  "2026-01-01T00:00:00.000Z",
		},
	}
}

func startHub(t *testing.T, b wsHub.SummaryBuilder) (wsURL string, hub *wsHub.Hub, cancel func()) {
	t.Helper()

	hub = wsHub.New(b, testInterval)
	ctx, cancelFn := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancelFn()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, hub, cancelFn
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsHub.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var m wsHub.Message
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func TestHub_Connect_ReceivesImmediateSummary(t *testing.T) {
	b := &fakeBuilder{}
	b.running.Store(2)
	wsURL, _, _ := startHub(t, b)

	m := readMessage(t, dial(t, wsURL))
	if m.Event != wsHub.EventSummary {
		t.Errorf("event: got %q, want summary", m.Event)
	}
	if !m.Data.Success || m.Data.Summary.Containers.Running != 2 {
		t.Errorf("data: got %+v", m.Data)
	}
}

func TestHub_RawMessageShape(t *testing.T) {
	wsURL, _, _ := startHub(t, &fakeBuilder{})
	conn := dial(t, wsURL)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	data, ok := m["data"].(map[string]interface{})
	if !ok {
		t.Fatal("data: missing or wrong type")
	}
	for _, k := range []string{"success", "summary", "timestamp"} {
		if _, ok := data[k]; !ok {
			t.Errorf("data.%s missing", k)
		}
	}
}

func TestHub_ReceivesFreshSummaryOnTick(t *testing.T) {
	b := &fakeBuilder{}
	wsURL, _, _ := startHub(t, b)

	conn := dial(t, wsURL)
	readMessage(t, conn)

	b.running.Store(5)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m := readMessage(t, conn); m.Data.Summary.Containers.Running == 5 {
			return
		}
	}
	t.Fatal("no tick broadcast reflected the new state")
}

func TestHub_NoBuildsWithoutClients(t *testing.T) {
	b := &fakeBuilder{}
	startHub(t, b)

	time.Sleep(5 * testInterval)
	if n := b.builds.Load(); n != 0 {
		t.Errorf("builds with no clients: got %d, want 0", n)
	}
}

func TestHub_CountClients(t *testing.T) {
	wsURL, hub, _ := startHub(t, &fakeBuilder{})

	for i := 0; i < 3; i++ {
		readMessage(t, dial(t, wsURL))
	}

	time.Sleep(10 * time.Millisecond)
	if n := hub.Count(); n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}
}

func TestHub_CountClients_DecreasesOnDisconnect(t *testing.T) {
	wsURL, hub, _ := startHub(t, &fakeBuilder{})

	conn := dial(t, wsURL)
	readMessage(t, conn)
	time.Sleep(10 * time.Millisecond)

	if n := hub.Count(); n != 1 {
		t.Errorf("Count before disconnect: got %d, want 1", n)
	}

	conn.Close()
	time.Sleep(50 * time.Millisecond)

	if n := hub.Count(); n != 0 {
		t.Errorf("Count after disconnect: got %d, want 0", n)
	}
}

func TestHub_CancelContextClosesConnections(t *testing.T) {
	wsURL, hub, cancel := startHub(t, &fakeBuilder{})

	conn := dial(t, wsURL)
	readMessage(t, conn)
	time.Sleep(10 * time.Millisecond)

	cancel()

	time.Sleep(50 * time.Millisecond)
	if n := hub.Count(); n != 0 {
		t.Errorf("Count after cancel: got %d, want 0", n)
	}
}

func TestHub_NonWebSocketRequest_Returns400(t *testing.T) {
	hub := wsHub.New(&fakeBuilder{}, testInterval)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}
