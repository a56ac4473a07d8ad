// Package api provides the relay's local HTTP status server: health,
// connection status, Prometheus metrics and a WebSocket event feed.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"remotemouse/internal/input"
	"remotemouse/internal/metrics"
	"remotemouse/internal/network"
)

// StatusSource reports the relay's connection state
type StatusSource interface {
	Stats() network.Stats
}

// Status is the body of GET /api/status
type Status struct {
	network.Stats
	Connected     bool    `json:"connected"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	FeedClients   int     `json:"feed_clients"`
}

// Server provides the HTTP status API
type Server struct {
	addr    string
	status  StatusSource
	metrics *metrics.Metrics
	hub     *Hub
	started time.Time
}

// NewServer creates a status server for addr. The event feed hub starts
// immediately so broadcasts never block; Close stops it.
func NewServer(addr string, status StatusSource, m *metrics.Metrics) *Server {
	s := &Server{
		addr:    addr,
		status:  status,
		metrics: m,
		hub:     newHub(),
		started: time.Now(),
	}
	go s.hub.run()
	return s
}

// Handler returns the router serving every endpoint
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/ws", s.hub.handleWebSocket)
	return r
}

// Start serves the API until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		log.Printf("API: failed to listen on %s: %v", s.addr, err)
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves the API on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	})
	defer stop()

	log.Printf("API: Status server on http://%s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("API: server stopped: %v", err)
		return err
	}
	return nil
}

// Close stops the event feed and disconnects its clients
func (s *Server) Close() {
	s.hub.close()
}

// BroadcastInput publishes flushed input events on the feed
func (s *Server) BroadcastInput(events []input.Event) {
	for _, ev := range events {
		s.hub.BroadcastInput(ev)
	}
}

// BroadcastSession publishes a connect or disconnect on the feed
func (s *Server) BroadcastSession(remote string, connected bool, err error) {
	s.hub.BroadcastSession(remote, connected, err)
}

// requestLogger logs every request in the relay's log format
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Printf("API: %s %s from %s -> %d (%s)", r.Method, r.URL.Path, r.RemoteAddr, ww.Status(), time.Since(start).Round(time.Microsecond))
	})
}

// handleHealth handles GET /health (for monitoring)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.status.Stats()
	writeJSON(w, Status{
		Stats:         stats,
		Connected:     stats.Client != "",
		UptimeSeconds: time.Since(s.started).Seconds(),
		FeedClients:   s.hub.clientCount(),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: failed to write response: %v", err)
	}
}
