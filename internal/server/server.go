package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/upwatch/uplink/internal/hub"
)

const (
	// shutdownTimeout bounds graceful shutdown after context cancellation.
	shutdownTimeout = 5 * time.Second

	// maxIngestBody caps the size of a single ingested event.
	maxIngestBody = 64 * 1024
)

// Event kinds accepted by the ingest endpoint.
const (
	KindStatusUpdate = "status-update"
	KindAlert        = "alert"
)

// IngestRequest is the body of POST /api/events: one event produced by the
// external check scheduler.
type IngestRequest struct {
	// MonitorID is the monitor the event concerns.
	MonitorID string `json:"monitorId"`

	// Kind is "status-update" or "alert".
	Kind string `json:"kind"`

	// Payload is the event body fanned out to subscribers.
	Payload map[string]any `json:"payload"`
}

// IngestResponse reports the monitor-level hand-off count.
type IngestResponse struct {
	Delivered int `json:"delivered"`
}

// Server exposes the gateway over HTTP.
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	hub        *hub.Hub
	port       int
	origins    []string
	httpServer *http.Server
	listener   net.Listener
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server] in front of the given hub.
//
// origins lists the Origin header values allowed to open websocket
// connections; empty means same-origin only (gorilla's default check).
// The server is not started until [Server.Start] is called.
func NewServer(h *hub.Hub, port int, origins []string, logger *slog.Logger) *Server {
	s := &Server{
		hub:     h,
		port:    port,
		origins: origins,
		logger:  logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// checkOrigin allows same-origin requests plus any explicitly configured
// origin. "*" allows everything (useful in tests and demos).
func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.origins) == 0 {
		// fall back to gorilla's same-origin semantics
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
	if slices.Contains(s.origins, "*") {
		return true
	}
	return slices.Contains(s.origins, r.Header.Get("Origin"))
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the
// server is listening. The server runs until the context is cancelled, at
// which point it initiates graceful shutdown.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	mux.HandleFunc("/api/events", s.handleIngest)
	mux.HandleFunc("/healthz", s.handleHealth)

	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler: mux,
		// BaseContext derives all request contexts from the server context
		// so shutdown cancels in-flight handlers
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// Addr returns the address the server is listening on, for callers that
// configured port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// handleWebsocket upgrades the connection and hands it to the hub.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		s.logger.Debug("websocket upgrade rejected", "remote", r.RemoteAddr, "error", err)
		return
	}

	connID := s.hub.HandleConnection(conn)
	s.logger.Debug("websocket connection accepted", "conn", connID, "remote", r.RemoteAddr)
}

// handleIngest accepts one scheduler event and fans it out.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req IngestRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIngestBody))
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "Malformed event", http.StatusBadRequest)
		return
	}
	if req.MonitorID == "" {
		http.Error(w, "monitorId is required", http.StatusBadRequest)
		return
	}

	var delivered int
	switch req.Kind {
	case KindStatusUpdate:
		delivered = s.hub.BroadcastMonitorEvent(req.MonitorID, req.Payload)
	case KindAlert:
		delivered = s.hub.BroadcastAlert(req.MonitorID, req.Payload)
	default:
		http.Error(w, "kind must be status-update or alert", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(IngestResponse{Delivered: delivered}); err != nil {
		s.logger.Error("failed to encode ingest response", "error", err)
	}
}

// handleHealth is a trivial liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","connections":%d}`, s.hub.ConnectionCount())
}
