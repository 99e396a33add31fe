package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func TestPendingRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if got := s.ReadPending(); len(got.Branches) != 0 {
		t.Fatalf("fresh store should be empty, got %+v", got)
	}

	if err := s.AppendPending("feature/x", []PendingCommit{
		{SHA: "abc123", CreatedAtMs: 1000, Reason: "staged: timeout"},
	}); err != nil {
		t.Fatalf("AppendPending: %v", err)
	}
	if err := s.AppendPending("feature/x", []PendingCommit{
		{SHA: "def456", CreatedAtMs: 2000},
	}); err != nil {
		t.Fatalf("AppendPending: %v", err)
	}

	got := s.ReadPending()
	commits := got.Branches["feature/x"]
	if len(commits) != 2 {
		t.Fatalf("expected 2 pending commits, got %d", len(commits))
	}
	if commits[0].SHA != "abc123" || commits[1].SHA != "def456" {
		t.Errorf("insertion order not preserved: %+v", commits)
	}

	if err := s.ClearBranch("feature/x"); err != nil {
		t.Fatalf("ClearBranch: %v", err)
	}
	if got := s.ReadPending(); len(got.Branches["feature/x"]) != 0 {
		t.Error("branch backlog should be cleared")
	}
}

func TestReadPendingCorruptFile(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "pending.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := s.ReadPending()
	if got.Branches == nil || len(got.Branches) != 0 {
		t.Errorf("corrupt state should degrade to empty, got %+v", got)
	}
}

func TestSkipNextLifecycle(t *testing.T) {
	s := newTestStore(t)

	if m := s.ReadSkipNext(); m != nil {
		t.Fatalf("fresh store should have no marker, got %+v", m)
	}

	if err := s.WriteSkipNext(SkipNextMarker{CreatedAtMs: 42, Reason: "demo"}); err != nil {
		t.Fatalf("WriteSkipNext: %v", err)
	}
	m := s.ReadSkipNext()
	if m == nil || m.Reason != "demo" {
		t.Fatalf("unexpected marker: %+v", m)
	}

	if err := s.ClearSkipNext(); err != nil {
		t.Fatalf("ClearSkipNext: %v", err)
	}
	if m := s.ReadSkipNext(); m != nil {
		t.Error("marker should be gone after clear")
	}
	// Clearing twice is fine.
	if err := s.ClearSkipNext(); err != nil {
		t.Errorf("second clear should not error: %v", err)
	}
}

func TestPendingNextCommitLifecycle(t *testing.T) {
	s := newTestStore(t)

	if m := s.ReadPendingNextCommit(); m != nil {
		t.Fatalf("fresh store should have no marker, got %+v", m)
	}

	if err := s.WritePendingNextCommit(PendingNextCommitMarker{
		Branch: "feature/x", CreatedAtMs: 42, Reason: "staged: timeout",
	}); err != nil {
		t.Fatalf("WritePendingNextCommit: %v", err)
	}
	m := s.ReadPendingNextCommit()
	if m == nil || m.Branch != "feature/x" || m.Reason != "staged: timeout" {
		t.Fatalf("unexpected marker: %+v", m)
	}

	// A second staged UNCHECKED before the commit lands overwrites.
	if err := s.WritePendingNextCommit(PendingNextCommitMarker{
		Branch: "feature/x", CreatedAtMs: 43, Reason: "staged: server error (502)",
	}); err != nil {
		t.Fatalf("WritePendingNextCommit: %v", err)
	}
	if m := s.ReadPendingNextCommit(); m == nil || m.CreatedAtMs != 43 {
		t.Fatalf("expected overwritten marker, got %+v", m)
	}

	if err := s.ClearPendingNextCommit(); err != nil {
		t.Fatalf("ClearPendingNextCommit: %v", err)
	}
	if m := s.ReadPendingNextCommit(); m != nil {
		t.Error("marker should be gone after clear")
	}
	if err := s.ClearPendingNextCommit(); err != nil {
		t.Errorf("second clear should not error: %v", err)
	}
}

func TestReadPendingNextCommitMalformed(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "pending-next-commit"), []byte(`{"branch":""}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if m := s.ReadPendingNextCommit(); m != nil {
		t.Errorf("malformed marker should read as nil, got %+v", m)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	if err := s.WritePending(PendingState{Branches: map[string][]PendingCommit{
		"main": {{SHA: "abc", CreatedAtMs: 1}},
	}}); err != nil {
		t.Fatalf("WritePending: %v", err)
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp.") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
