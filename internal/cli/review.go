package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sprite-ai/preflight/internal/api"
	"github.com/sprite-ai/preflight/internal/config"
	"github.com/sprite-ai/preflight/internal/gitx"
	"github.com/sprite-ai/preflight/internal/review"
	"github.com/sprite-ai/preflight/internal/state"
	"github.com/sprite-ai/preflight/internal/tui"
)

var (
	flagStaged bool
	flagPush   bool
	flagTUI    bool
	flagPlain  bool
)

var reviewCmd = &cobra.Command{
	Use:   "review (--staged | --push) [remote] [url]",
	Short: "Review the changes about to land",
	Long: `Run the review gate against the staged changes (pre-commit) or the
commits about to be pushed (pre-push). The pre-push form reads the ref
update lines git supplies on stdin and takes the remote name as its
first argument, so the hook can pass "$@" straight through.

Exit codes:
  0 — PASS or UNCHECKED
  1 — FAIL (blocking findings)
  2 — configuration or internal error`,
	Args: cobra.MaximumNArgs(2),
	RunE: runReviewGate,
}

func init() {
	reviewCmd.Flags().BoolVar(&flagStaged, "staged", false, "review the staged changes (pre-commit)")
	reviewCmd.Flags().BoolVar(&flagPush, "push", false, "review the commits about to be pushed (pre-push)")
	reviewCmd.Flags().BoolVar(&flagTUI, "tui", false, "open the interactive report viewer")
	reviewCmd.Flags().BoolVar(&flagPlain, "plain", false, "print the plain Markdown report")
}

func runReviewGate(cmd *cobra.Command, args []string) error {
	if flagStaged == flagPush {
		return fmt.Errorf("exactly one of --staged or --push is required")
	}

	g, err := gitx.Open(".")
	if err != nil {
		return fmt.Errorf("not in a git repository: %w", err)
	}
	gitDir, err := g.GitDir()
	if err != nil {
		return err
	}

	manifest, err := config.LoadManifest(g.Root())
	if err != nil {
		return err
	}
	user, err := config.LoadUser()
	if err != nil {
		return err
	}
	token, err := config.LoadToken()
	if err != nil && !errors.Is(err, config.ErrNoToken) {
		return err
	}

	req := review.Request{Kind: review.KindStaged}
	if flagPush {
		req.Kind = review.KindPush
		req.Remote = "origin"
		if len(args) > 0 {
			req.Remote = args[0]
		}
		// Ref update lines only arrive when git runs the pre-push
		// hook; a manual invocation on a terminal has none, and the
		// resolver falls back to the upstream range.
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			stdin, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading pre-push input: %w", err)
			}
			req.Updates = gitx.ParsePushUpdates(string(stdin))
		}
	}

	orch := &review.Orchestrator{
		Repo:     g,
		Store:    state.NewStore(gitDir),
		Manifest: manifest,
		User:     user,
		Client:   api.NewClient(user.APIBaseURL, token, user.Timeout()),
		Token:    token,
	}

	outcome, err := orch.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	if useTUI(user) {
		if err := tui.Run(outcome.Markdown); err != nil {
			// Terminal trouble should never eat the report.
			fmt.Print(outcome.Markdown)
		}
	} else {
		fmt.Print(outcome.Markdown)
	}

	exitCode = outcome.ExitCode
	return nil
}

// useTUI decides the output surface. Hooks, CI, and non-terminals are
// always plain; everything else follows PREFLIGHT_UI, then the flags,
// then the user config.
func useTUI(user config.User) bool {
	if os.Getenv("PREFLIGHT_HOOK") != "" || os.Getenv("CI") != "" {
		return false
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	switch os.Getenv("PREFLIGHT_UI") {
	case "plain":
		return false
	case "tui":
		return true
	}
	if flagPlain {
		return false
	}
	if flagTUI {
		return true
	}
	return user.UI == "tui"
}
