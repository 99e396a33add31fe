package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/preflight/internal/gitx"
	"github.com/sprite-ai/preflight/internal/review"
	"github.com/sprite-ai/preflight/internal/state"
)

// internalCmd hosts helpers the hooks call; they are not part of the
// user-facing surface.
var internalCmd = &cobra.Command{
	Use:    "internal",
	Short:  "Hook helper commands",
	Hidden: true,
}

var internalPostCommitCmd = &cobra.Command{
	Use:   "post-commit",
	Short: "Pin a pending-next-commit marker to the commit that just landed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := gitx.Open(".")
		if err != nil {
			return fmt.Errorf("not in a git repository: %w", err)
		}
		gitDir, err := g.GitDir()
		if err != nil {
			return err
		}
		return review.RecordCommitted(g, state.NewStore(gitDir))
	},
}

func init() {
	internalCmd.AddCommand(internalPostCommitCmd)
}
