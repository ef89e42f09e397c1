package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Server hosts the realtime websocket endpoint and a metrics snapshot.
type Server struct {
	httpServer *http.Server
	hub        *Hub
}

// NewServer creates a server exposing the hub on the given address.
func NewServer(hub *Hub, addr string) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", hub.ServeWS)
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(hub.Metrics().Snapshot()); err != nil {
			slog.Error("failed to write metrics snapshot", "error", err)
		}
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: mux,
			// Applies to the upgrade request only; websocket connections are
			// hijacked and keep their own deadlines.
			ReadTimeout: 15 * time.Second,
		},
		hub: hub,
	}
}

// Start begins listening for connections. Blocks until shutdown.
func (s *Server) Start() error {
	slog.Info("realtime server listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown disconnects all clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
