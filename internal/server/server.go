// Telemetry peer: websocket broadcast of city frames plus the control and
// observability endpoints.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"urbanpulse/internal/control"
	"urbanpulse/internal/metrics"
	"urbanpulse/internal/sim"
	"urbanpulse/internal/telemetry"
)

// Server broadcasts snapshots to connected websocket clients and applies
// control actions to the generator. It implements sim.SnapshotWriter so the
// simulator can treat it as just another sink.
type Server struct {
	gen      *sim.Generator
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

var _ sim.SnapshotWriter = (*Server)(nil)

// NewServer builds a server for the given generator.
func NewServer(gen *sim.Generator, log *slog.Logger) *Server {
	return &Server{
		gen:     gen,
		log:     log,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleStream)
	mux.HandleFunc("/api/control", s.handleControl)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start serves until the context is cancelled, then shuts down and closes
// every client connection.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
		s.closeAll()
	}()
	return srv.ListenAndServe()
}

// WriteSnapshot implements sim.SnapshotWriter by broadcasting one frame to
// every connected client. Clients that fail to accept the frame are dropped.
func (s *Server) WriteSnapshot(snap *telemetry.Snapshot) error {
	frame, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			s.log.Info("dropping stream client", "err", err)
			conn.Close()
			delete(s.clients, conn)
			metrics.ConnectedClients.Dec()
		}
	}
	metrics.FramesBroadcast.Inc()
	return nil
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("stream upgrade failed", "err", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
	metrics.ConnectedClients.Inc()
	s.log.Info("stream client connected", "remote", conn.RemoteAddr())

	// Reader loop only notices disconnects; clients send nothing.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		s.mu.Lock()
		if _, ok := s.clients[conn]; ok {
			delete(s.clients, conn)
			metrics.ConnectedClients.Dec()
		}
		s.mu.Unlock()
		conn.Close()
	}()
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req control.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ControlRequests.WithLabelValues("invalid", "rejected").Inc()
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := s.gen.Apply(req.District, req.Action)
	if err != nil {
		metrics.ControlRequests.WithLabelValues(string(req.Action), "rejected").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	metrics.ControlRequests.WithLabelValues(string(req.Action), "applied").Inc()
	s.log.Info("intervention applied", "district", req.District, "action", req.Action)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(control.Response{Message: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
		metrics.ConnectedClients.Dec()
	}
}
