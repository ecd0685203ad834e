// Package server exposes the installation supervisor over a small JSON API
// and serves the operator UI.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/initializ/edgard/installer"
	rt "github.com/initializ/edgard/runtime"
	"github.com/initializ/edgard/web"
)

// Controller is the part of the supervisor the API drives.
type Controller interface {
	Start(opts installer.StartOptions) error
	Snapshot() installer.Status
	TogglePause() (bool, error)
}

// HistoryLister returns finished runs, newest first.
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]installer.RunSummary, error)
}

// Config configures the HTTP server.
type Config struct {
	Addr     string
	Version  string
	Defaults installer.StartOptions
	// History may be nil, in which case /api/history returns an empty list.
	History HistoryLister
	Logger  rt.Logger
}

// Server is the control panel HTTP server.
type Server struct {
	addr     string
	version  string
	defaults installer.StartOptions
	ctl      Controller
	history  HistoryLister
	logger   rt.Logger
	now      func() time.Time
	srv      *http.Server
}

// NewServer creates a server driving ctl.
func NewServer(cfg Config, ctl Controller) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = rt.NopLogger{}
	}
	return &Server{
		addr:     cfg.Addr,
		version:  cfg.Version,
		defaults: cfg.Defaults,
		ctl:      ctl,
		history:  cfg.History,
		logger:   logger,
		now:      time.Now,
	}
}

// Handler returns the routed API with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/start", s.handleStart)
	mux.HandleFunc("POST /api/pause", s.handlePause)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.Handle("GET /{$}", web.Handler())
	return corsMiddleware(mux)
}

// Start begins serving HTTP. It blocks until the context is cancelled or
// an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}
	s.logger.Info("control panel listening", map[string]any{"addr": ln.Addr().String()})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("control panel stopped", nil)
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string, details []string) {
	body := errorResponse{Error: msg, Details: details}
	writeJSON(w, status, body)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
