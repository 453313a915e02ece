package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"urbanpulse/internal/config"
	"urbanpulse/internal/control"
	"urbanpulse/internal/sim"
	"urbanpulse/internal/telemetry"
)

func testServer() (*Server, *httptest.Server) {
	cfg := &config.Config{
		CityID:    "test-city",
		Districts: []config.District{{Name: "Downtown"}},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer(sim.NewGenerator(cfg), log)
	return s, httptest.NewServer(s.Handler())
}

func TestStreamBroadcast(t *testing.T) {
	s, srv := testServer()
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Registration happens just after the handshake; wait for it.
	deadline := time.Now().Add(5 * time.Second)
	for {
		s.mu.Lock()
		n := len(s.clients)
		s.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	snap := &telemetry.Snapshot{Timestamp: 42, Districts: []telemetry.District{{Name: "Downtown"}}}
	if err := s.WriteSnapshot(snap); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	got, err := telemetry.DecodeSnapshot(frame)
	if err != nil {
		t.Fatalf("frame not decodable: %v", err)
	}
	if got.Timestamp != 42 {
		t.Errorf("unexpected frame: %+v", got)
	}
}

func TestControlEndpoint(t *testing.T) {
	_, srv := testServer()
	defer srv.Close()

	body, _ := json.Marshal(control.Request{District: "Downtown", Action: control.OptimizeTraffic})
	resp, err := http.Post(srv.URL+"/api/control", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %s", resp.Status)
	}
	var out control.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if out.Message != "OPTIMIZE_TRAFFIC applied to Downtown" {
		t.Errorf("unexpected message: %q", out.Message)
	}
}

func TestControlEndpointRejectsBadRequests(t *testing.T) {
	_, srv := testServer()
	defer srv.Close()

	cases := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"unknown district", `{"district": "Atlantis", "action": "OPTIMIZE_TRAFFIC"}`},
		{"unknown action", `{"district": "Downtown", "action": "PANIC"}`},
	}
	for _, tc := range cases {
		resp, err := http.Post(srv.URL+"/api/control", "application/json", strings.NewReader(tc.body))
		if err != nil {
			t.Fatalf("%s: post failed: %v", tc.name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %s", tc.name, resp.Status)
		}
	}
}

func TestControlEndpointMethodNotAllowed(t *testing.T) {
	_, srv := testServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/control")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %s", resp.Status)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	_, srv := testServer()
	defer srv.Close()

	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("%s: get failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %s", path, resp.Status)
		}
	}
}
