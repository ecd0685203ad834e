package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/initializ/edgard/config"
	"github.com/initializ/edgard/installer"
	"github.com/initializ/edgard/validate"
)

const (
	maxBodyBytes        = 64 * 1024
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// startRequest uses pointers so omitted fields fall back to the defaults.
type startRequest struct {
	InstallPath    *string `json:"installPath"`
	AutoUpdate     *bool   `json:"autoUpdate"`
	InstallAdguard *bool   `json:"installAdguard"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Snapshot())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body failed", []string{err.Error()})
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON", nil)
		return
	}

	violations, err := validate.ValidateStartRequest(body)
	if err != nil {
		s.logger.Error("start request validation failed", map[string]any{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "validating request failed", nil)
		return
	}
	if len(violations) > 0 {
		writeError(w, http.StatusBadRequest, "invalid start request", violations)
		return
	}

	var req startRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start request", []string{err.Error()})
		return
	}

	opts, err := s.startOptions(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid install path", []string{err.Error()})
		return
	}

	if err := s.ctl.Start(opts); err != nil {
		if errors.Is(err, installer.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, "Installation already running", nil)
			return
		}
		s.logger.Error("starting installation failed", map[string]any{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) startOptions(req startRequest) (installer.StartOptions, error) {
	opts := s.defaults
	if req.InstallPath != nil {
		opts.InstallPath = *req.InstallPath
	}
	if req.AutoUpdate != nil {
		opts.AutoUpdate = *req.AutoUpdate
	}
	if req.InstallAdguard != nil {
		opts.InstallAdguard = *req.InstallAdguard
	}
	path, err := config.ExpandHome(opts.InstallPath)
	if err != nil {
		return opts, err
	}
	opts.InstallPath = path
	return opts, nil
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	paused, err := s.ctl.TogglePause()
	if err != nil {
		if errors.Is(err, installer.ErrNotRunning) {
			writeError(w, http.StatusConflict, "No installation running", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": paused})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   s.version,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	runs := []installer.RunSummary{}
	if s.history != nil {
		list, err := s.history.List(r.Context(), limit)
		if err != nil {
			s.logger.Error("listing run history failed", map[string]any{"error": err.Error()})
			writeError(w, http.StatusInternalServerError, "listing run history failed", nil)
			return
		}
		if list != nil {
			runs = list
		}
	}
	writeJSON(w, http.StatusOK, runs)
}
