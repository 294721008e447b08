package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"netsentinel/internal/stats"
)

// Server exposes read-only JSON views of the stats store over HTTP. Like the
// dashboard, it is a periodic consumer of snapshots and never writes.
type Server struct {
	store *stats.Store
	srv   *http.Server
}

// NewServer builds the router and the underlying HTTP server.
func NewServer(listenAddr string, store *stats.Store) *Server {
	s := &Server{store: store}

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/stats", s.statsHandler).Methods("GET")
	r.HandleFunc("/api/v1/alerts", s.alertsHandler).Methods("GET")

	s.srv = &http.Server{
		Addr:    listenAddr,
		Handler: r,
	}
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves requests on the configured address in a background goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("API server starting on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("API server stopped: %v", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// statsHandler serves a full snapshot of counters and alerts.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Snapshot())
}

// alertsHandler serves only the ordered alert list.
func (s *Server) alertsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Snapshot().Alerts)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
