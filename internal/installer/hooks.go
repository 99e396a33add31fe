package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const hookMarker = "# preflight"

const (
	preCommitLine  = `PREFLIGHT_HOOK=1 PREFLIGHT_UI=plain preflight review --staged`
	prePushLine    = `PREFLIGHT_HOOK=1 PREFLIGHT_UI=plain preflight review --push "$@"`
	postCommitLine = `PREFLIGHT_HOOK=1 PREFLIGHT_UI=plain preflight internal post-commit`
)

// installHooks writes the review lines for the chosen mode into the
// hooks directory. Existing hook files keep their content; the line is
// appended only when absent. The pre-commit gate needs the post-commit
// hook too, so an UNCHECKED verdict can be pinned to the commit SHA it
// let through.
func installHooks(hooksDir string, mode HookMode) error {
	if mode == HookPreCommit || mode == HookBoth {
		if err := ensureHookLine(hooksDir, "pre-commit", preCommitLine); err != nil {
			return err
		}
		if err := ensureHookLine(hooksDir, "post-commit", postCommitLine); err != nil {
			return err
		}
	}
	if mode == HookPrePush || mode == HookBoth {
		if err := ensureHookLine(hooksDir, "pre-push", prePushLine); err != nil {
			return err
		}
	}
	return nil
}

// ensureHookLine creates the hook file with a shebang and marker when
// it does not exist, otherwise appends the line unless the file
// already contains it verbatim. Re-running is a no-op.
func ensureHookLine(hooksDir, name, line string) error {
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(hooksDir, name)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		contents := fmt.Sprintf("#!/usr/bin/env sh\n%s\n%s\n", hookMarker, line)
		if err := os.WriteFile(path, []byte(contents), 0o755); err != nil {
			return err
		}
		return os.Chmod(path, 0o755)
	}
	if err != nil {
		return err
	}

	existing := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.Contains(existing, line) {
		return nil
	}
	next := strings.TrimRight(existing, " \t\n") + "\n\n" + hookMarker + "\n" + line + "\n"
	if err := os.WriteFile(path, []byte(next), 0o755); err != nil {
		return err
	}
	return os.Chmod(path, 0o755)
}

// hookContains reports whether a hook file mentions the given
// invocation fragment.
func hookContains(hooksDir, name, fragment string) bool {
	data, err := os.ReadFile(filepath.Join(hooksDir, name))
	if err != nil {
		return false
	}
	return strings.Contains(string(data), fragment)
}
