package gitx

import "fmt"

// StagedResult is the change set about to be committed: the unified
// patch of the index against HEAD plus one entry per changed file.
type StagedResult struct {
	Patch string
	Files []ChangeEntry
}

// ResolveStaged diffs the index against HEAD with rename detection.
func (g *Repo) ResolveStaged() (*StagedResult, error) {
	numstat, err := g.run("diff", "--cached", "--numstat", "--find-renames")
	if err != nil {
		return nil, fmt.Errorf("collecting staged numstat: %w", err)
	}
	binary := parseBinaryPaths(numstat)

	nameStatus, err := g.run("diff", "--cached", "--name-status", "-z", "--find-renames")
	if err != nil {
		return nil, fmt.Errorf("collecting staged files: %w", err)
	}
	files := changeEntries(parseNameStatusZ(nameStatus), binary)

	patch, err := g.run("diff", "--cached", "--patch", "--no-color", "--no-ext-diff", "--unified=3", "--find-renames")
	if err != nil {
		return nil, fmt.Errorf("collecting staged patch: %w", err)
	}

	return &StagedResult{Patch: patch, Files: files}, nil
}
