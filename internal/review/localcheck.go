package review

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sprite-ai/preflight/internal/config"
	"github.com/sprite-ai/preflight/internal/diff"
	"github.com/sprite-ai/preflight/internal/model"
)

// perCheckTimeout caps each configured check command so one slow
// linter cannot eat the whole review budget.
const perCheckTimeout = 2 * time.Minute

// RunLocalChecks produces blocking findings from purely local
// inspection of the change set: committed conflict markers, configured
// check commands, and an optional local review agent. These run before
// any network call.
func RunLocalChecks(ctx context.Context, repoRoot string, m config.Manifest, set *diff.Set) []model.Finding {
	findings := conflictMarkerFindings(set)
	findings = append(findings, checkCommandFindings(ctx, repoRoot, m)...)
	findings = append(findings, localAgentFindings(ctx, repoRoot, m, set)...)
	return findings
}

// conflictMarkerFindings flags merge conflict markers introduced by
// the change.
func conflictMarkerFindings(set *diff.Set) []model.Finding {
	if set == nil {
		return nil
	}
	var findings []model.Finding
	for _, al := range set.AddedLines() {
		if !strings.HasPrefix(al.Text, "<<<<<<< ") && !strings.HasPrefix(al.Text, ">>>>>>> ") {
			continue
		}
		findings = append(findings, model.Finding{
			Path:     al.Path,
			Severity: model.SeverityMajor,
			Title:    "Merge conflict marker",
			Message:  fmt.Sprintf("The change introduces an unresolved merge conflict marker: `%s`", al.Text),
			Line:     al.Line,
		})
	}
	return findings
}

// checkCommandFindings runs the manifest's check commands and turns
// non-zero exits into findings. Checks are skipped entirely when the
// repository already wires its own pre-commit linting and the manifest
// opts into that detection.
func checkCommandFindings(ctx context.Context, repoRoot string, m config.Manifest) []model.Finding {
	if !m.ChecksEnabled() || len(m.Checks.Commands) == 0 {
		return nil
	}
	if m.SkipChecksIfRepoHasPrecommit() && repoHasPrecommitLinting(repoRoot) {
		return nil
	}

	timeout := perCheckTimeout
	if t := m.Timeout(); t < timeout {
		timeout = t
	}

	var findings []model.Finding
	for _, check := range m.Checks.Commands {
		name := check.Name
		if name == "" {
			name = check.Run
		}
		output, err := runShell(ctx, repoRoot, check.Run, "", timeout)
		if err == nil {
			continue
		}
		msg := fmt.Sprintf("Command:\n`%s`\n", check.Run)
		if strings.TrimSpace(output) != "" {
			msg += fmt.Sprintf("\nOutput:\n\n```\n%s\n```\n", strings.TrimRight(output, "\n"))
		} else {
			msg += "\nNo output.\n"
		}
		if ctx.Err() != nil || strings.Contains(err.Error(), "deadline") {
			msg += "\nThe check timed out."
		}
		findings = append(findings, model.Finding{
			Path:     config.ManifestName,
			Severity: model.SeverityMinor,
			Title:    fmt.Sprintf("%s check failed", name),
			Message:  msg,
		})
	}
	return findings
}

// precommitMarkers are strong signals that the repo already lints at
// commit time. Weak signals do not skip checks.
var precommitMarkers = []string{
	"lint-staged",
	"biome",
	"eslint",
	"prettier",
	"lefthook",
	"golangci-lint",
}

func repoHasPrecommitLinting(repoRoot string) bool {
	candidates := []string{
		filepath.Join(repoRoot, ".husky", "pre-commit"),
		filepath.Join(repoRoot, "lefthook.yml"),
		filepath.Join(repoRoot, "lefthook.yaml"),
		filepath.Join(repoRoot, ".pre-commit-config.yaml"),
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		text := string(data)
		for _, marker := range precommitMarkers {
			if strings.Contains(text, marker) {
				return true
			}
		}
	}
	return false
}

// localAgentFindings runs the manifest's local agent command, when
// configured, feeding it the patch on stdin. The agent must emit a
// report following the same Markdown contract as the remote reviewer;
// anything else is a blocking configuration problem.
func localAgentFindings(ctx context.Context, repoRoot string, m config.Manifest, set *diff.Set) []model.Finding {
	if m.LocalAgent == nil {
		return nil
	}
	cmd := strings.TrimSpace(m.LocalAgent.Command)
	if cmd == "" {
		return nil
	}

	input := ""
	if set != nil {
		input = set.Raw
	}
	output, err := runShell(ctx, repoRoot, cmd, input, m.Timeout())
	if err != nil {
		return []model.Finding{{
			Path:     config.ManifestName,
			Severity: model.SeverityMajor,
			Title:    "Local agent failed",
			Message:  fmt.Sprintf("The configured local agent command could not complete: %v", err),
		}}
	}

	summary, ok := ParseSummary(output)
	if !ok || !strings.Contains(output, ReportTitle) || !strings.Contains(output, "## Findings") {
		return []model.Finding{{
			Path:     config.ManifestName,
			Severity: model.SeverityMajor,
			Title:    "Local agent output invalid",
			Message:  "The local agent's output does not follow the review report format (missing title, Result, Counts, or Findings sections).",
		}}
	}

	if summary.Status == model.StatusFail {
		return []model.Finding{{
			Path:     config.ManifestName,
			Severity: model.SeverityMajor,
			Title:    "Local agent review failed",
			Message:  "The local agent reviewed the change and reported FAIL:\n\n" + strings.TrimRight(output, "\n"),
		}}
	}
	return nil
}

func runShell(ctx context.Context, dir, command, stdin string, timeout time.Duration) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Dir = dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}
