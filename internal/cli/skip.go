package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/preflight/internal/gitx"
	"github.com/sprite-ai/preflight/internal/state"
)

var skipReason string

var skipNextCmd = &cobra.Command{
	Use:   "skip-next --reason \"<text>\"",
	Short: "Skip the next review once",
	Long: `Record a one-shot marker so the next review in this repository passes
without consulting the review service. The skip reason appears in the
rendered report and the marker is consumed by that run.`,
	Args: cobra.NoArgs,
	RunE: runSkipNext,
}

func init() {
	skipNextCmd.Flags().StringVar(&skipReason, "reason", "", "why the next review is skipped (required)")
}

func runSkipNext(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(skipReason) == "" {
		return fmt.Errorf("--reason is required")
	}

	g, err := gitx.Open(".")
	if err != nil {
		return fmt.Errorf("not in a git repository: %w", err)
	}
	gitDir, err := g.GitDir()
	if err != nil {
		return err
	}

	store := state.NewStore(gitDir)
	if err := store.WriteSkipNext(state.SkipNextMarker{
		CreatedAtMs: time.Now().UnixMilli(),
		Reason:      strings.TrimSpace(skipReason),
	}); err != nil {
		return err
	}

	fmt.Println("The next review in this repository will be skipped.")
	return nil
}
