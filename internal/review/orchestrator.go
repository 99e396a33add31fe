// Package review runs the review gate: it resolves what changed,
// consults local checks and the remote reviewer, keeps the unchecked
// backlog, and renders the report.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sprite-ai/preflight/internal/api"
	"github.com/sprite-ai/preflight/internal/config"
	"github.com/sprite-ai/preflight/internal/diff"
	"github.com/sprite-ai/preflight/internal/gitx"
	"github.com/sprite-ai/preflight/internal/model"
	"github.com/sprite-ai/preflight/internal/policy"
	"github.com/sprite-ai/preflight/internal/state"
)

// Kind selects what change set one invocation reviews.
type Kind string

const (
	KindStaged Kind = "staged"
	KindPush   Kind = "push"
)

// Request describes one review invocation.
type Request struct {
	Kind    Kind
	Remote  string
	Updates []gitx.PushUpdate
}

// Outcome is what the CLI renders and exits on.
type Outcome struct {
	Result   model.ReviewResult
	Markdown string
	ExitCode int
}

// Client is the slice of the review service the orchestrator needs.
type Client interface {
	Review(ctx context.Context, req api.ReviewRequest) (*api.ReviewResponse, error)
}

// Orchestrator drives one review from policy check to rendered
// report.
type Orchestrator struct {
	Repo     *gitx.Repo
	Store    *state.Store
	Manifest config.Manifest
	User     config.User
	Client   Client
	Token    string
	Now      func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Run executes the review gate. A returned error is a configuration
// or internal problem (exit 2 territory); review verdicts, including
// FAIL, come back as an Outcome.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Outcome, error) {
	res := policy.Resolve(o.Repo, o.Manifest.Policy)
	if res.Effective.Policy == policy.Disabled {
		return o.finish(model.ReviewResult{Status: model.StatusPass}), nil
	}

	if marker := o.Store.ReadSkipNext(); marker != nil {
		if err := o.Store.ClearSkipNext(); err != nil {
			return nil, fmt.Errorf("consume skip marker: %w", err)
		}
		return o.finish(model.ReviewResult{
			Status: model.StatusPass,
			Findings: []model.Finding{{
				Severity: model.SeverityNote,
				Title:    "Review skipped",
				Message:  skipMessage(marker),
			}},
		}), nil
	}

	branch, err := o.Repo.Branch()
	if err != nil {
		return nil, fmt.Errorf("resolve branch: %w", err)
	}

	// An unresolved backlog never grows silently: when the branch has
	// pending entries, this invocation must end in either a completed
	// remote review (which clears them) or a blocking FAIL listing them.
	backlog := o.Store.ReadPending().Branches[branch]

	patch, files, commits, inferred, err := o.collect(req)
	if err != nil {
		return nil, err
	}
	if inferred != "" && branch == "HEAD" {
		branch = inferred
	}
	if len(files) == 0 && strings.TrimSpace(patch) == "" {
		if len(backlog) > 0 {
			return o.backlogBlocked(branch, backlog), nil
		}
		return o.finish(model.ReviewResult{Status: model.StatusPass}), nil
	}

	set, err := diff.Parse(patch)
	if err != nil {
		// An unparseable patch still goes to the reviewer verbatim.
		set = &diff.Set{Raw: patch}
	}
	if local := RunLocalChecks(ctx, o.Repo.Root(), o.Manifest, set); anyBlocking(local) {
		return o.finish(model.ReviewResult{
			Status:   model.StatusFail,
			Findings: local,
		}), nil
	}

	if o.Token == "" {
		if res.Effective.Policy == policy.Required {
			return nil, errors.New("not authenticated: run `preflight auth login` (policy is required)")
		}
		return o.allowUnchecked(req, branch, backlog, commits, "not authenticated")
	}

	hashed, _ := HashInstructionFiles(o.Repo.Root(), o.Manifest.InstructionFileNames())
	resp, err := o.Client.Review(ctx, api.ReviewRequest{
		Branch:           branch,
		PlanTier:         o.User.PlanTier,
		StagedPatch:      patch,
		StagedFiles:      fileEntries(files),
		InstructionFiles: hashed,
	})

	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return o.finish(model.ReviewResult{
			Status: model.StatusFail,
			Findings: []model.Finding{{
				Path:     config.ManifestName,
				Severity: model.SeverityMajor,
				Title:    "Authentication failed",
				Message:  "The review service rejected the stored token. Run `preflight auth login` to re-authenticate.",
			}},
		}), nil
	case api.IsConnectivity(err):
		return o.allowUnchecked(req, branch, backlog, commits, connectivityReason(err))
	case err != nil:
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return o.finish(model.ReviewResult{
				Status: model.StatusFail,
				Findings: []model.Finding{{
					Path:     config.ManifestName,
					Severity: model.SeverityMajor,
					Title:    "Review request rejected",
					Message:  fmt.Sprintf("The review service rejected the request (%d):\n\n```\n%s\n```", apiErr.StatusCode, apiErr.Body),
				}},
			}), nil
		}
		return nil, fmt.Errorf("review request: %w", err)
	}

	findings := resp.Findings
	if len(resp.PerModel) > 0 {
		findings = MergeFindings(resp.PerModel)
	}
	if resp.Status == model.StatusUnchecked {
		return o.allowUnchecked(req, branch, backlog, commits, "reviewer returned unchecked")
	}

	// A completed review settles the branch, including any marker a
	// previously aborted commit left behind.
	if err := o.Store.ClearBranch(branch); err != nil {
		return nil, fmt.Errorf("clear backlog: %w", err)
	}
	if m := o.Store.ReadPendingNextCommit(); m != nil && m.Branch == branch {
		if err := o.Store.ClearPendingNextCommit(); err != nil {
			return nil, fmt.Errorf("clear pending commit marker: %w", err)
		}
	}
	return o.finish(model.ReviewResult{
		Status:   model.StatusFromFindings(findings),
		Findings: findings,
	}), nil
}

// collect resolves the change set for the request.
func (o *Orchestrator) collect(req Request) (patch string, files []gitx.ChangeEntry, commits []string, inferredBranch string, err error) {
	switch req.Kind {
	case KindStaged:
		staged, err := o.Repo.ResolveStaged()
		if err != nil {
			return "", nil, nil, "", fmt.Errorf("resolve staged changes: %w", err)
		}
		return staged.Patch, staged.Files, nil, "", nil
	case KindPush:
		push, err := o.Repo.ResolvePush(req.Remote, req.Updates, o.Repo.Head())
		if err != nil {
			return "", nil, nil, "", fmt.Errorf("resolve push range: %w", err)
		}
		return push.Patch, push.Files, push.CommitSHAs, push.InferredBranch, nil
	default:
		return "", nil, nil, "", fmt.Errorf("unknown review kind %q", req.Kind)
	}
}

// backlogBlocked emits the blocking FAIL for a branch whose earlier
// unchecked entries are still unresolved.
func (o *Orchestrator) backlogBlocked(branch string, pending []state.PendingCommit) *Outcome {
	return o.finish(model.ReviewResult{
		Status:   model.StatusFail,
		Findings: []model.Finding{backlogFinding(branch, pending)},
	})
}

// allowUnchecked handles a review that could not complete. On a clean
// branch the affected commits join the backlog and the operation is
// allowed; on a branch that already carries unresolved entries the
// invocation blocks instead of letting more unchecked work through.
func (o *Orchestrator) allowUnchecked(req Request, branch string, backlog []state.PendingCommit, commits []string, reason string) (*Outcome, error) {
	if len(backlog) > 0 {
		return o.backlogBlocked(branch, backlog), nil
	}
	return o.recordUnchecked(req, branch, commits, reason)
}

// recordUnchecked remembers the affected commits as review debt and
// emits UNCHECKED. For a push the range's commits go straight onto the
// branch backlog. For a staged review the gated commit has no SHA yet
// (HEAD is still its parent), so a pending-next-commit marker is left
// for the post-commit hook to convert once the commit exists.
func (o *Orchestrator) recordUnchecked(req Request, branch string, commits []string, reason string) (*Outcome, error) {
	now := o.now().UnixMilli()
	fullReason := fmt.Sprintf("%s: %s", req.Kind, reason)

	if req.Kind == KindStaged {
		err := o.Store.WritePendingNextCommit(state.PendingNextCommitMarker{
			Branch:      branch,
			CreatedAtMs: now,
			Reason:      fullReason,
		})
		if err != nil {
			return nil, fmt.Errorf("record pending commit marker: %w", err)
		}
	} else {
		pending := make([]state.PendingCommit, 0, len(commits))
		for _, sha := range commits {
			pending = append(pending, state.PendingCommit{SHA: sha, CreatedAtMs: now, Reason: fullReason})
		}
		if err := o.Store.AppendPending(branch, pending); err != nil {
			return nil, fmt.Errorf("record backlog: %w", err)
		}
	}

	return o.finish(model.ReviewResult{
		Status: model.StatusUnchecked,
		Findings: []model.Finding{{
			Severity: model.SeverityNote,
			Title:    "Review not completed",
			Message:  fmt.Sprintf("The change was allowed without a completed review (%s). It stays on the backlog for branch %s until a review succeeds.", fullReason, branch),
		}},
	}), nil
}

func (o *Orchestrator) finish(result model.ReviewResult) *Outcome {
	exit := 0
	if result.Status == model.StatusFail {
		exit = 1
	}
	return &Outcome{
		Result:   result,
		Markdown: RenderMarkdown(result),
		ExitCode: exit,
	}
}

func anyBlocking(findings []model.Finding) bool {
	for _, f := range findings {
		if f.Blocking() {
			return true
		}
	}
	return false
}

func fileEntries(files []gitx.ChangeEntry) []api.FileEntry {
	out := make([]api.FileEntry, 0, len(files))
	for _, f := range files {
		out = append(out, api.FileEntry{
			Path:       f.Path,
			ChangeType: string(f.ChangeType),
			IsBinary:   f.IsBinary,
		})
	}
	return out
}

func backlogFinding(branch string, pending []state.PendingCommit) model.Finding {
	var b strings.Builder
	fmt.Fprintf(&b, "Branch %s has %d change(s) that were allowed without a completed review:\n", branch, len(pending))
	for _, p := range pending {
		fmt.Fprintf(&b, "\n- %s", p.SHA)
		if p.Reason != "" {
			fmt.Fprintf(&b, " (%s)", p.Reason)
		}
	}
	b.WriteString("\n\nResolve the backlog by completing a review, or use `preflight skip-next --reason \"...\"` to pass once.")
	return model.Finding{
		Path:     branch,
		Severity: model.SeverityMajor,
		Title:    "Unresolved review backlog",
		Message:  b.String(),
	}
}

func skipMessage(m *state.SkipNextMarker) string {
	when := time.UnixMilli(m.CreatedAtMs).UTC().Format(time.RFC3339)
	if m.Reason != "" {
		return fmt.Sprintf("A one-shot skip marker from %s was consumed: %s", when, m.Reason)
	}
	return fmt.Sprintf("A one-shot skip marker from %s was consumed.", when)
}

// connectivityReason folds transient errors into a short stable label
// for backlog records.
func connectivityReason(err error) string {
	var srv *api.ServerError
	if errors.As(err, &srv) {
		return fmt.Sprintf("server error (%d)", srv.StatusCode)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") {
		return "timeout"
	}
	return "network unreachable"
}
