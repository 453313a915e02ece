package stream

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type recordingEvents struct {
	mu     sync.Mutex
	opens  int
	closes int
	frames [][]byte
	onOpen func()
}

func (r *recordingEvents) HandleOpen() {
	r.mu.Lock()
	r.opens++
	fn := r.onOpen
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (r *recordingEvents) HandleFrame(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, data)
}

func (r *recordingEvents) HandleClose(error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
}

func (r *recordingEvents) counts() (int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens, len(r.frames), r.closes
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClientReceivesFrames(t *testing.T) {
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		for i := 0; i < 3; i++ {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"n":1}`)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	events := &recordingEvents{}
	client := NewClient(wsURL(srv), events, discard(), Backoff{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.runOnce(ctx); err == nil {
		t.Fatalf("expected read error once server closes")
	}
	opens, frames, closes := events.counts()
	if opens != 1 || frames != 3 || closes != 1 {
		t.Errorf("opens=%d frames=%d closes=%d, want 1/3/1", opens, frames, closes)
	}
}

func TestClientDialFailureNoOpen(t *testing.T) {
	events := &recordingEvents{}
	client := NewClient("ws://127.0.0.1:1/ws", events, discard(), Backoff{})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Run(ctx); err == nil {
		t.Fatalf("expected dial error")
	}
	opens, _, closes := events.counts()
	if opens != 0 || closes != 0 {
		t.Errorf("dial failure must not emit lifecycle events: opens=%d closes=%d", opens, closes)
	}
}

func TestClientClosesOnCancel(t *testing.T) {
	var upgrader websocket.Upgrader
	serverSaw := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Block in read; unblocks when the client closes its side.
		conn.ReadMessage()
		close(serverSaw)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events := &recordingEvents{onOpen: cancel}
	client := NewClient(wsURL(srv), events, discard(), Backoff{})

	if err := client.Run(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	select {
	case <-serverSaw:
	case <-time.After(5 * time.Second):
		t.Fatalf("connection not closed on cancel")
	}
}
