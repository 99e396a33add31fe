package gitx

import (
	"fmt"
	"strings"
)

// PushUpdate is one ref update line supplied on stdin by git's
// pre-push hook: <local-ref> <local-sha> <remote-ref> <remote-sha>.
type PushUpdate struct {
	LocalRef  string
	LocalSHA  string
	RemoteRef string
	RemoteSHA string
}

// PushResult aggregates the change set a push would transmit across
// all updated branches.
type PushResult struct {
	Patch          string
	Files          []ChangeEntry
	CommitSHAs     []string
	InferredBranch string // set only when exactly one branch is pushed
}

// ParsePushUpdates parses pre-push hook stdin. Malformed lines are
// skipped rather than failing the whole resolution.
func ParsePushUpdates(stdin string) []PushUpdate {
	var updates []PushUpdate
	for _, line := range strings.Split(stdin, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 4 {
			continue
		}
		updates = append(updates, PushUpdate{
			LocalRef:  fields[0],
			LocalSHA:  fields[1],
			RemoteRef: fields[2],
			RemoteSHA: fields[3],
		})
	}
	return updates
}

// IsZeroSHA reports whether s is git's all-zero hash, which denotes
// ref creation or deletion depending on position.
func IsZeroSHA(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, c := range s {
		if c != '0' {
			return false
		}
	}
	return true
}

const headsPrefix = "refs/heads/"

// ResolvePush reconstructs the commit range each update would
// transmit and aggregates patches, files, and commits. Branch
// deletions (zero local SHA) and non-branch refs are excluded. Updates
// for which no base can be established are skipped. When no update
// yields a range (non-hook invocation, shallow history), resolution
// falls back to the upstream tracking ref and then to the merge-base
// against the remote's default branch.
func (g *Repo) ResolvePush(remote string, updates []PushUpdate, headSHA string) (*PushResult, error) {
	if remote == "" {
		remote = "origin"
	}

	kept := updates[:0:0]
	for _, u := range updates {
		if IsZeroSHA(u.LocalSHA) || !strings.HasPrefix(u.LocalRef, headsPrefix) {
			continue
		}
		kept = append(kept, u)
	}

	res := &PushResult{}
	if len(kept) == 1 {
		res.InferredBranch = strings.TrimPrefix(kept[0].LocalRef, headsPrefix)
	}

	var patchParts []string
	fileIndex := make(map[string]int)
	commitSeen := make(map[string]bool)
	processed := false

	addRange := func(base, head string) error {
		patch, files, commits, err := g.collectRange(base, head)
		if err != nil {
			return err
		}
		if strings.TrimSpace(patch) != "" {
			patchParts = append(patchParts, patch)
		}
		for _, f := range files {
			if f.Path == "" {
				continue
			}
			// Last write wins when branches disagree about a path.
			if i, ok := fileIndex[f.Path]; ok {
				res.Files[i] = f
				continue
			}
			fileIndex[f.Path] = len(res.Files)
			res.Files = append(res.Files, f)
		}
		for _, sha := range commits {
			if !commitSeen[sha] {
				commitSeen[sha] = true
				res.CommitSHAs = append(res.CommitSHAs, sha)
			}
		}
		return nil
	}

	for _, u := range kept {
		base := g.resolvePushBase(remote, u)
		if base == "" {
			continue
		}
		processed = true
		if err := addRange(base, u.LocalSHA); err != nil {
			return nil, err
		}
	}

	if !processed {
		base := g.fallbackBase(remote, headSHA)
		if base != "" {
			if err := addRange(base, headSHA); err != nil {
				return nil, err
			}
		}
	}

	res.Patch = strings.Join(patchParts, "\n")
	return res, nil
}

// resolvePushBase picks the base commit for one update: the remote SHA
// when it resolves locally, else the remote-tracking ref of the remote
// branch, else the merge-base against the remote's default branch.
func (g *Repo) resolvePushBase(remote string, u PushUpdate) string {
	if !IsZeroSHA(u.RemoteSHA) {
		if sha, ok := g.RevParse(u.RemoteSHA); ok {
			return sha
		}
	}

	if branch, ok := strings.CutPrefix(u.RemoteRef, headsPrefix); ok {
		if sha, ok := g.RevParse(remote + "/" + branch); ok {
			return sha
		}
	}

	remoteHead, ok := g.RemoteHeadRef(remote)
	if !ok {
		return ""
	}
	// No merge-base means no shared history; skip the update rather
	// than diff against an unrelated tip.
	sha, _ := g.MergeBase(u.LocalSHA, remoteHead)
	return sha
}

func (g *Repo) fallbackBase(remote, headSHA string) string {
	if sha, ok := g.RevParse("@{u}"); ok {
		return sha
	}
	remoteHead, ok := g.RemoteHeadRef(remote)
	if !ok {
		return ""
	}
	sha, _ := g.MergeBase(headSHA, remoteHead)
	return sha
}

func (g *Repo) collectRange(base, head string) (patch string, files []ChangeEntry, commits []string, err error) {
	numstat, err := g.run("diff", "--numstat", "--find-renames", base, head)
	if err != nil {
		return "", nil, nil, fmt.Errorf("collecting numstat for %s..%s: %w", base, head, err)
	}
	binary := parseBinaryPaths(numstat)

	nameStatus, err := g.run("diff", "--name-status", "-z", "--find-renames", base, head)
	if err != nil {
		return "", nil, nil, fmt.Errorf("collecting files for %s..%s: %w", base, head, err)
	}
	files = changeEntries(parseNameStatusZ(nameStatus), binary)

	patch, err = g.run("diff", "--patch", "--no-color", "--no-ext-diff", "--unified=3", "--find-renames", base, head)
	if err != nil {
		return "", nil, nil, fmt.Errorf("collecting patch for %s..%s: %w", base, head, err)
	}

	return patch, files, g.ListCommits(base, head), nil
}
