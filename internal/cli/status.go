package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sprite-ai/preflight/internal/config"
	"github.com/sprite-ai/preflight/internal/gitx"
	"github.com/sprite-ai/preflight/internal/installer"
	"github.com/sprite-ai/preflight/internal/policy"
)

var statusVerbose bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show hook installation and policy state",
	Long: `Report where the hooks are installed, which enforcement policy is in
effect and where it came from, and whether a reviewer token is stored.
With --verbose, print the full per-scope hook wiring.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusVerbose, "verbose", false, "show per-scope hook wiring")
}

func runStatus(cmd *cobra.Command, args []string) error {
	in, err := installer.New()
	if err != nil {
		return err
	}

	// Outside a repository only the global scope and policy apply.
	g, _ := gitx.Open(".")

	st := in.Status(g)

	var res policy.Resolution
	if g != nil {
		manifest, err := config.LoadManifest(g.Root())
		if err != nil {
			return err
		}
		res = policy.Resolve(g, manifest.Policy)
	} else {
		res = policy.ResolveOutsideRepo(gitx.ExecRunner{})
	}

	if st.EffectiveScope == "" {
		color.Yellow("hooks:  not installed")
	} else {
		color.Green("hooks:  installed (%s scope)", st.EffectiveScope)
	}

	fmt.Printf("policy: %s (from %s)\n", res.Effective.Policy, res.Effective.Source)
	if res.IgnoredLocal {
		fmt.Printf("        local git config sets %q but is shadowed\n", res.Configured.Local)
	}
	if res.IgnoredGlobal {
		fmt.Printf("        global git config sets %q but is shadowed\n", res.Configured.Global)
	}

	if _, err := config.LoadToken(); err == nil {
		fmt.Println("auth:   token stored")
	} else {
		color.Yellow("auth:   not logged in")
	}

	if !statusVerbose {
		return nil
	}

	fmt.Println()
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Scope", "Installed", "Hooks Path", "Managed Path"})

	rows := [][]string{
		scopeRow("global", st.Global),
		scopeRow("local", st.Local),
		scopeRow("repo", st.Repo),
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func scopeRow(name string, st installer.ScopeStatus) []string {
	installed := "no"
	if st.Installed {
		installed = "yes"
	}
	return []string{name, installed, st.HooksPath, st.ManagedPath}
}
