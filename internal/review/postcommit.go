package review

import (
	"fmt"

	"github.com/sprite-ai/preflight/internal/gitx"
	"github.com/sprite-ai/preflight/internal/state"
)

// RecordCommitted converts a pending-next-commit marker into a backlog
// entry for the commit that just landed. The post-commit hook calls
// this after every commit; with no marker present it is a no-op, so
// the common case costs one stat.
func RecordCommitted(g *gitx.Repo, store *state.Store) error {
	marker := store.ReadPendingNextCommit()
	if marker == nil {
		return nil
	}

	sha := g.Head()
	if sha == "" {
		return fmt.Errorf("resolve committed SHA: HEAD did not resolve")
	}

	err := store.AppendPending(marker.Branch, []state.PendingCommit{{
		SHA:         sha,
		CreatedAtMs: marker.CreatedAtMs,
		Reason:      marker.Reason,
	}})
	if err != nil {
		return fmt.Errorf("record committed backlog entry: %w", err)
	}
	return store.ClearPendingNextCommit()
}
