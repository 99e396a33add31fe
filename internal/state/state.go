// Package state persists advisory review state under the repository's
// private git directory. The state never blocks an honest commit on
// corruption: reads degrade to empty values, and all writes go through
// an atomic temp-then-rename so a torn file is never observable.
package state

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

const (
	stateDirName        = "preflight"
	pendingFileName     = "pending.json"
	skipNextFileName    = "skip-next"
	pendingNextFileName = "pending-next-commit"
)

// PendingCommit is a commit or push range accepted without a completed
// review.
type PendingCommit struct {
	SHA         string `json:"sha"`
	CreatedAtMs int64  `json:"createdAtMs"`
	Reason      string `json:"reason,omitempty"`
}

// PendingState is the per-repository unchecked backlog, keyed by
// branch, ordered by insertion.
type PendingState struct {
	Branches map[string][]PendingCommit `json:"branches"`
}

// SkipNextMarker is a one-shot marker consumed by the next review.
type SkipNextMarker struct {
	CreatedAtMs int64  `json:"createdAtMs"`
	Reason      string `json:"reason"`
}

// PendingNextCommitMarker bridges a staged review that went UNCHECKED
// to the commit it allowed. At pre-commit time the commit's SHA does
// not exist yet, so the gate leaves this marker and the post-commit
// hook converts it into a PendingCommit naming the new HEAD.
type PendingNextCommitMarker struct {
	Branch      string `json:"branch"`
	CreatedAtMs int64  `json:"createdAtMs"`
	Reason      string `json:"reason"`
}

// Store reads and writes preflight state files for one repository.
type Store struct {
	dir string
}

// NewStore roots a Store at <gitDir>/preflight. The directory is
// created lazily on first write.
func NewStore(gitDir string) *Store {
	return &Store{dir: filepath.Join(gitDir, stateDirName)}
}

// Dir returns the state directory path.
func (s *Store) Dir() string { return s.dir }

// ReadPending returns the backlog, or an empty state when the file is
// missing or malformed.
func (s *Store) ReadPending() PendingState {
	empty := PendingState{Branches: map[string][]PendingCommit{}}
	data, err := os.ReadFile(filepath.Join(s.dir, pendingFileName))
	if err != nil {
		return empty
	}
	var st PendingState
	if err := json.Unmarshal(data, &st); err != nil || st.Branches == nil {
		return empty
	}
	return st
}

// WritePending persists the backlog atomically.
func (s *Store) WritePending(st PendingState) error {
	if st.Branches == nil {
		st.Branches = map[string][]PendingCommit{}
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling pending state: %w", err)
	}
	return s.writeAtomic(pendingFileName, append(data, '\n'))
}

// AppendPending adds commits to a branch's backlog and persists it.
func (s *Store) AppendPending(branch string, commits []PendingCommit) error {
	st := s.ReadPending()
	st.Branches[branch] = append(st.Branches[branch], commits...)
	return s.WritePending(st)
}

// ClearBranch drops a branch's backlog after a completed review.
func (s *Store) ClearBranch(branch string) error {
	st := s.ReadPending()
	if _, ok := st.Branches[branch]; !ok {
		return nil
	}
	delete(st.Branches, branch)
	return s.WritePending(st)
}

// ReadSkipNext returns the marker, or nil when absent or malformed.
func (s *Store) ReadSkipNext() *SkipNextMarker {
	data, err := os.ReadFile(filepath.Join(s.dir, skipNextFileName))
	if err != nil {
		return nil
	}
	var m SkipNextMarker
	if err := json.Unmarshal(data, &m); err != nil || m.CreatedAtMs == 0 {
		return nil
	}
	return &m
}

// WriteSkipNext persists the one-shot marker atomically.
func (s *Store) WriteSkipNext(m SkipNextMarker) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling skip marker: %w", err)
	}
	return s.writeAtomic(skipNextFileName, append(data, '\n'))
}

// ClearSkipNext removes the marker. Missing files are not an error.
func (s *Store) ClearSkipNext() error {
	err := os.Remove(filepath.Join(s.dir, skipNextFileName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ReadPendingNextCommit returns the marker, or nil when absent or
// malformed.
func (s *Store) ReadPendingNextCommit() *PendingNextCommitMarker {
	data, err := os.ReadFile(filepath.Join(s.dir, pendingNextFileName))
	if err != nil {
		return nil
	}
	var m PendingNextCommitMarker
	if err := json.Unmarshal(data, &m); err != nil || m.Branch == "" || m.CreatedAtMs == 0 {
		return nil
	}
	return &m
}

// WritePendingNextCommit persists the marker atomically. A second
// staged UNCHECKED before the commit lands overwrites the first.
func (s *Store) WritePendingNextCommit(m PendingNextCommitMarker) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling pending-next-commit marker: %w", err)
	}
	return s.writeAtomic(pendingNextFileName, append(data, '\n'))
}

// ClearPendingNextCommit removes the marker. Missing files are not an
// error.
func (s *Store) ClearPendingNextCommit() error {
	err := os.Remove(filepath.Join(s.dir, pendingNextFileName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// writeAtomic writes to a uniquely-named temp file in the state
// directory and renames it over the target, so readers observe either
// the old or the new contents, never a partial write.
func (s *Store) writeAtomic(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	target := filepath.Join(s.dir, name)
	tmp := fmt.Sprintf("%s.tmp.%d.%x", target, os.Getpid(), rand.Int63())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
