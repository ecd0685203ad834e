package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/initializ/edgard/history"
	"github.com/initializ/edgard/installer"
)

func TestPrintRuns(t *testing.T) {
	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	runs := []installer.RunSummary{{
		ID:         "run-1",
		Options:    installer.StartOptions{InstallPath: "/opt/edgard"},
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Outcome:    installer.OutcomeFailed,
		ExitCode:   2,
		ErrorCount: 3,
	}}
	var out bytes.Buffer
	if err := printRuns(&out, runs); err != nil {
		t.Fatalf("printRuns: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "STARTED") {
		t.Errorf("header = %q", lines[0])
	}
	for _, want := range []string{"1m30s", "failed", "/opt/edgard", "run-1"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}
}

func TestRunHistory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	store, err := history.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now().UTC()
	if err := store.RecordRun(installer.RunSummary{ID: "abc", StartedAt: now, FinishedAt: now, Outcome: installer.OutcomeSuccess}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	withConfig(t, writeTestEdgardYAML(t, dir, "history:\n  path: runs.db\n"))
	if err := runHistory(nil, nil); err != nil {
		t.Fatalf("runHistory: %v", err)
	}
}

func TestRunHistory_Disabled(t *testing.T) {
	withConfig(t, writeTestEdgardYAML(t, t.TempDir(), "history:\n  path: \"\"\n"))
	if err := runHistory(nil, nil); err == nil {
		t.Fatal("expected error when history is disabled")
	}
}

func withHistoryURL(t *testing.T, url string) {
	t.Helper()
	old := historyURL
	historyURL = url
	t.Cleanup(func() { historyURL = old })
}

func TestRunHistory_RemotePanel(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/history" {
			http.NotFound(w, r)
			return
		}
		gotLimit = r.URL.Query().Get("limit")
		now := time.Now().UTC()
		_ = json.NewEncoder(w).Encode([]installer.RunSummary{{ID: "remote-1", StartedAt: now, FinishedAt: now, Outcome: installer.OutcomeSuccess}})
	}))
	defer srv.Close()

	// the local config is never read in remote mode
	withConfig(t, filepath.Join(t.TempDir(), "missing.yaml"))
	withHistoryURL(t, srv.URL)

	if err := runHistory(nil, nil); err != nil {
		t.Fatalf("runHistory: %v", err)
	}
	if gotLimit != strconv.Itoa(historyLimit) {
		t.Errorf("limit query = %q", gotLimit)
	}
}

func TestRunHistory_RemotePanelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"history store unavailable"}`))
	}))
	defer srv.Close()
	withHistoryURL(t, srv.URL)

	err := runHistory(nil, nil)
	if err == nil || !strings.Contains(err.Error(), "history store unavailable") {
		t.Fatalf("err = %v", err)
	}
}
