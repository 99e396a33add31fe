package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sprite-ai/preflight/internal/gitx"
	"github.com/sprite-ai/preflight/internal/installer"
)

var (
	flagScope          string
	flagHook           string
	flagYes            bool
	flagUninstallScope string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the git hooks",
	Long: `Wire the review gate into git hooks.

Scopes:
  global — core.hooksPath in the global git config, hooks under the
           preflight config directory; covers every repository.
  local  — core.hooksPath in this repository's local git config, hooks
           under the git dir; covers this clone only.
  repo   — committed hook files under .preflight/hooks plus a
           .preflight.yml manifest; shared with everyone who clones.

A scope that already routes hooks somewhere else is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall --scope (global|local)",
	Short: "Remove the git hook wiring",
	Long: `Unset the core.hooksPath this tool manages. Only removes wiring that
points at a managed path; repo-scope hooks are committed files and are
removed like any other file.`,
	Args: cobra.NoArgs,
	RunE: runUninstall,
}

func init() {
	installCmd.Flags().StringVar(&flagScope, "scope", "", "install scope: global, local, or repo")
	installCmd.Flags().StringVar(&flagHook, "hook", "", "hooks to install: pre-commit, pre-push, or both")
	installCmd.Flags().BoolVar(&flagYes, "yes", false, "skip the confirmation prompt")

	uninstallCmd.Flags().StringVar(&flagUninstallScope, "scope", "", "scope to uninstall: global or local")
}

func runInstall(cmd *cobra.Command, args []string) error {
	interactive := isatty.IsTerminal(os.Stdin.Fd())

	scopeRaw := flagScope
	if scopeRaw == "" {
		if !interactive {
			return fmt.Errorf("--scope is required when not running interactively")
		}
		var err error
		scopeRaw, err = promptChoice("Install scope", []string{"global", "local", "repo"})
		if err != nil {
			return err
		}
	}
	scope, err := installer.ParseScope(scopeRaw)
	if err != nil {
		return err
	}

	hookRaw := flagHook
	if hookRaw == "" {
		if !interactive {
			return fmt.Errorf("--hook is required when not running interactively")
		}
		hookRaw, err = promptChoice("Hooks", []string{"both", "pre-commit", "pre-push"})
		if err != nil {
			return err
		}
	}
	mode, err := installer.ParseHookMode(hookRaw)
	if err != nil {
		return err
	}

	if interactive && !flagYes {
		ok, err := promptYesNo(fmt.Sprintf("Install %s hooks at %s scope?", mode, scope))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	in, err := installer.New()
	if err != nil {
		return err
	}

	switch scope {
	case installer.ScopeGlobal:
		err = in.InstallGlobal(mode)
	case installer.ScopeLocal, installer.ScopeRepo:
		g, openErr := gitx.Open(".")
		if openErr != nil {
			return fmt.Errorf("%s scope needs a git repository: %w", scope, openErr)
		}
		if scope == installer.ScopeLocal {
			err = in.InstallLocal(g, mode)
		} else {
			err = in.InstallRepo(g, mode)
		}
	}
	if err != nil {
		return err
	}

	color.Green("Installed %s hooks (%s scope).", mode, scope)
	if scope == installer.ScopeRepo {
		fmt.Println("Commit .preflight/ to share the hooks with the rest of the team.")
	}
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	scope, err := installer.ParseScope(flagUninstallScope)
	if err != nil {
		return err
	}

	in, err := installer.New()
	if err != nil {
		return err
	}

	switch scope {
	case installer.ScopeGlobal:
		err = in.UninstallGlobal()
	case installer.ScopeLocal:
		g, openErr := gitx.Open(".")
		if openErr != nil {
			return fmt.Errorf("local scope needs a git repository: %w", openErr)
		}
		err = in.UninstallLocal(g)
	case installer.ScopeRepo:
		return fmt.Errorf("repo-scope hooks are committed files; remove .preflight/hooks from the repository instead")
	}
	if err != nil {
		return err
	}

	color.Green("Uninstalled %s hook wiring.", scope)
	return nil
}

func promptChoice(label string, options []string) (string, error) {
	fmt.Printf("%s [%s]: ", label, strings.Join(options, "/"))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		answer = options[0]
	}
	return answer, nil
}

func promptYesNo(label string) (bool, error) {
	fmt.Printf("%s [Y/n]: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "" || answer == "y" || answer == "yes", nil
}
