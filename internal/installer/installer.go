// Package installer wires the preflight review hooks into git at one
// of three scopes: the machine's global hooks path, a single
// repository's local hooks path, or hook scripts committed into the
// repository itself.
package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sprite-ai/preflight/internal/config"
	"github.com/sprite-ai/preflight/internal/gitx"
)

// Scope selects where hook wiring lives.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeLocal  Scope = "local"
	ScopeRepo   Scope = "repo"
)

// ParseScope validates a scope flag value.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeGlobal, ScopeLocal, ScopeRepo:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("invalid scope %q (want global, local, or repo)", s)
	}
}

// HookMode selects which git hooks get the review line.
type HookMode string

const (
	HookPreCommit HookMode = "pre-commit"
	HookPrePush   HookMode = "pre-push"
	HookBoth      HookMode = "both"
)

// ParseHookMode validates a hook flag value.
func ParseHookMode(s string) (HookMode, error) {
	switch HookMode(s) {
	case HookPreCommit, HookPrePush, HookBoth:
		return HookMode(s), nil
	default:
		return "", fmt.Errorf("invalid hook %q (want pre-commit, pre-push, or both)", s)
	}
}

// ErrConflict marks a refusal to overwrite a hooks path the tool does
// not manage. Wrapped errors carry the offending value.
var ErrConflict = errors.New("hooks path conflict")

const gitHooksPathKey = "core.hooksPath"

// Installer performs scoped hook installation. The runner and managed
// global hooks directory are injectable for tests.
type Installer struct {
	runner      gitx.Runner
	globalHooks string
	home        string
}

// New builds an Installer against the real git binary and the user's
// config directory.
func New() (*Installer, error) {
	hooks, err := config.HooksDir()
	if err != nil {
		return nil, err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Installer{runner: gitx.ExecRunner{}, globalHooks: hooks, home: home}, nil
}

// NewWith builds an Installer with explicit collaborators. Intended
// for tests.
func NewWith(r gitx.Runner, globalHooks, home string) *Installer {
	return &Installer{runner: r, globalHooks: globalHooks, home: home}
}

// InstallGlobal points the global hooks path at the tool-managed
// directory after writing the hook scripts there. It refuses when the
// setting already points somewhere else.
func (in *Installer) InstallGlobal(mode HookMode) error {
	if current, ok := gitx.ConfigGetGlobal(in.runner, gitHooksPathKey); ok {
		if in.absGlobal(current) != in.globalHooks {
			return fmt.Errorf("%w: global core.hooksPath is already set to %q; unset it first or use a different install scope", ErrConflict, current)
		}
	}
	if err := installHooks(in.globalHooks, mode); err != nil {
		return err
	}
	return gitx.ConfigSetGlobal(in.runner, gitHooksPathKey, in.globalHooks)
}

// UninstallGlobal removes the global hooks-path setting, but only when
// it points at the tool-managed directory.
func (in *Installer) UninstallGlobal() error {
	current, ok := gitx.ConfigGetGlobal(in.runner, gitHooksPathKey)
	if !ok || in.absGlobal(current) != in.globalHooks {
		return nil
	}
	return gitx.ConfigUnsetGlobal(in.runner, gitHooksPathKey)
}

// InstallLocal wires one repository's local hooks path at
// <git-dir>/preflight/hooks, with the same conflict refusal as the
// global scope.
func (in *Installer) InstallLocal(g *gitx.Repo, mode HookMode) error {
	managed, err := localManagedHooks(g)
	if err != nil {
		return err
	}
	if current, ok := g.ConfigGet("--local", gitHooksPathKey); ok {
		if absAgainst(g.Root(), current) != managed {
			return fmt.Errorf("%w: local core.hooksPath is already set to %q; unset it first or use repo scope", ErrConflict, current)
		}
	}
	if err := installHooks(managed, mode); err != nil {
		return err
	}
	return g.ConfigSet("--local", gitHooksPathKey, managed)
}

// UninstallLocal removes the repository's local hooks-path setting
// when it points at the managed directory.
func (in *Installer) UninstallLocal(g *gitx.Repo) error {
	managed, err := localManagedHooks(g)
	if err != nil {
		return err
	}
	current, ok := g.ConfigGet("--local", gitHooksPathKey)
	if !ok || absAgainst(g.Root(), current) != managed {
		return nil
	}
	return g.ConfigUnset("--local", gitHooksPathKey)
}

// InstallRepo writes hook scripts under .preflight/hooks inside the
// working tree and ensures the project manifest exists, so the wiring
// can be committed and shared.
func (in *Installer) InstallRepo(g *gitx.Repo, mode HookMode) error {
	hooksDir := repoHooksDir(g.Root())
	if err := installHooks(hooksDir, mode); err != nil {
		return err
	}
	manifestPath := filepath.Join(g.Root(), config.ManifestName)
	if _, err := os.Stat(manifestPath); errors.Is(err, os.ErrNotExist) {
		m, _ := config.LoadManifest(g.Root())
		if err := config.SaveManifest(g.Root(), m); err != nil {
			return err
		}
	}
	return nil
}

func (in *Installer) absGlobal(hooksPath string) string {
	return absAgainst(in.home, hooksPath)
}

func absAgainst(base, hooksPath string) string {
	if filepath.IsAbs(hooksPath) {
		return filepath.Clean(hooksPath)
	}
	return filepath.Join(base, hooksPath)
}

func localManagedHooks(g *gitx.Repo) (string, error) {
	gitDir, err := g.GitDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(gitDir, "preflight", "hooks"), nil
}

func repoHooksDir(root string) string {
	return filepath.Join(root, ".preflight", "hooks")
}
