package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/initializ/edgard/installer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func summary(id string, started time.Time, outcome installer.Outcome) installer.RunSummary {
	return installer.RunSummary{
		ID:         id,
		Options:    installer.StartOptions{InstallPath: "/opt/" + id, AutoUpdate: true},
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Outcome:    outcome,
		ExitCode:   0,
		LogCount:   12,
		ErrorCount: 1,
	}
}

func TestStore_RecordAndList(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"first", "second", "third"} {
		if err := s.RecordRun(summary(id, base.Add(time.Duration(i)*time.Hour), installer.OutcomeSuccess)); err != nil {
			t.Fatalf("RecordRun(%s): %v", id, err)
		}
	}

	runs, err := s.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	if runs[0].ID != "third" || runs[2].ID != "first" {
		t.Errorf("order = %s, %s, %s; want newest first", runs[0].ID, runs[1].ID, runs[2].ID)
	}

	got := runs[2]
	want := summary("first", base, installer.OutcomeSuccess)
	if got != want {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, want)
	}
}

func TestStore_ListLimit(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().UTC()
	for i := range 5 {
		id := string(rune('a' + i))
		if err := s.RecordRun(summary(id, base.Add(time.Duration(i)*time.Second), installer.OutcomeFailed)); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := s.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "e" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestStore_RecordReplaces(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()
	if err := s.RecordRun(summary("x", now, installer.OutcomeFailed)); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordRun(summary("x", now, installer.OutcomeCrashed)); err != nil {
		t.Fatal(err)
	}
	runs, err := s.List(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Outcome != installer.OutcomeCrashed {
		t.Errorf("runs = %+v", runs)
	}
}

func TestStore_Empty(t *testing.T) {
	runs, err := openTestStore(t).List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if runs == nil || len(runs) != 0 {
		t.Errorf("runs = %#v, want empty slice", runs)
	}
}

func TestStore_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RecordRun(summary("kept", time.Now().UTC(), installer.OutcomeDegraded)); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	runs, err := s.List(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != "kept" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestStore_RecordsSupervisorRuns(t *testing.T) {
	s := openTestStore(t)
	sup := installer.New(installer.Config{
		ScriptPath: filepath.Join(t.TempDir(), "missing.sh"),
		Recorder:   s,
	})
	if err := sup.Start(installer.StartOptions{InstallPath: "/opt/edgard"}); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sup.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	runs, err := s.List(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Outcome != installer.OutcomeDegraded || runs[0].Options.InstallPath != "/opt/edgard" {
		t.Errorf("runs = %+v", runs)
	}
}
