package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Exit codes. Review verdicts map onto them: PASS and UNCHECKED exit
// 0, FAIL exits 1, configuration and usage problems exit 2.
const (
	ExitOK    = 0
	ExitFail  = 1
	ExitError = 2
)

var rootCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Commit-time code review gate",
	Long: `Preflight reviews changes at commit and push time. It collects the
pending diff, runs local checks, asks the review service for findings,
and renders a Markdown report. A FAIL verdict blocks the commit or
push.

Install the git hooks once with "preflight install"; after that the
gate runs automatically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(skipNextCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(internalCmd)
	rootCmd.AddCommand(versionCmd)
}

// exitCode is set by command handlers to control the process exit
// code. Handlers that finish without touching it exit 0; a returned
// error always exits 2.
var exitCode = ExitOK

// Run executes the root command and returns the process exit code.
func Run() int {
	// .env is a developer convenience for PREFLIGHT_* overrides.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return exitCode
}
