package gitx

import "strings"

// ChangeType classifies a file's role in a change set.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
	ChangeRenamed  ChangeType = "renamed"
	ChangeCopied   ChangeType = "copied"
	ChangeUnknown  ChangeType = "unknown"
)

// ChangeEntry describes one changed file. Path is the final path;
// renames and copies carry OldPath.
type ChangeEntry struct {
	ChangeType ChangeType `json:"changeType"`
	Path       string     `json:"path"`
	OldPath    string     `json:"oldPath,omitempty"`
	IsBinary   bool       `json:"isBinary"`
}

type nameStatusEntry struct {
	status string
	paths  []string
}

// parseNameStatusZ splits NUL-delimited `git diff --name-status -z`
// output. Renames and copies consume two path fields.
func parseNameStatusZ(out string) []nameStatusEntry {
	var entries []nameStatusEntry
	parts := make([]string, 0)
	for _, p := range strings.Split(out, "\x00") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	for i := 0; i < len(parts); {
		status := parts[i]
		i++
		kind := byte(0)
		if len(status) > 0 {
			kind = status[0]
		}
		if kind == 'R' || kind == 'C' {
			var oldPath, newPath string
			if i < len(parts) {
				oldPath = parts[i]
				i++
			}
			if i < len(parts) {
				newPath = parts[i]
				i++
			}
			entries = append(entries, nameStatusEntry{status: status, paths: []string{oldPath, newPath}})
			continue
		}
		var path string
		if i < len(parts) {
			path = parts[i]
			i++
		}
		entries = append(entries, nameStatusEntry{status: status, paths: []string{path}})
	}

	return entries
}

// NormalizeRenamePath collapses the short-form rename notation of
// numstat output into the final path. Handles both "old.go => new.go"
// and "src/{old => new}/file.go".
func NormalizeRenamePath(path string) string {
	if !strings.Contains(path, "=>") {
		return path
	}

	if open := strings.Index(path, "{"); open != -1 {
		if end := strings.Index(path, "}"); end > open {
			inside := path[open+1 : end]
			if _, after, ok := strings.Cut(inside, "=>"); ok {
				return path[:open] + strings.TrimSpace(after) + path[end+1:]
			}
		}
	}

	parts := strings.Split(path, "=>")
	return strings.TrimSpace(parts[len(parts)-1])
}

// parseBinaryPaths extracts the set of binary paths from
// `git diff --numstat` output: binary files report "-" for both the
// insertion and deletion columns. This set is authoritative over any
// content sniffing.
func parseBinaryPaths(out string) map[string]bool {
	set := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, " \r")
		if line == "" {
			continue
		}
		cols := strings.SplitN(line, "\t", 3)
		if len(cols) < 3 || cols[2] == "" {
			continue
		}
		if cols[0] == "-" && cols[1] == "-" {
			set[NormalizeRenamePath(cols[2])] = true
		}
	}
	return set
}

// changeEntries combines name-status entries with the binary path set
// into ChangeEntry values.
func changeEntries(entries []nameStatusEntry, binary map[string]bool) []ChangeEntry {
	out := make([]ChangeEntry, 0, len(entries))
	for _, e := range entries {
		kind := byte(0)
		if len(e.status) > 0 {
			kind = e.status[0]
		}

		var ce ChangeEntry
		switch kind {
		case 'A':
			ce = ChangeEntry{ChangeType: ChangeAdded, Path: e.paths[0]}
		case 'M':
			ce = ChangeEntry{ChangeType: ChangeModified, Path: e.paths[0]}
		case 'D':
			ce = ChangeEntry{ChangeType: ChangeDeleted, Path: e.paths[0]}
		case 'R':
			ce = ChangeEntry{ChangeType: ChangeRenamed, OldPath: e.paths[0], Path: e.paths[1]}
		case 'C':
			ce = ChangeEntry{ChangeType: ChangeCopied, OldPath: e.paths[0], Path: e.paths[1]}
		default:
			ce = ChangeEntry{ChangeType: ChangeUnknown, Path: e.paths[0]}
		}
		ce.IsBinary = binary[ce.Path]
		out = append(out, ce)
	}
	return out
}
