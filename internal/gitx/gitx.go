// Package gitx wraps the git binary for repository queries and diff
// range resolution.
package gitx

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner executes git with the given arguments in dir and returns
// stdout. Implementations must include stderr in returned errors.
type Runner interface {
	Run(dir string, args ...string) (string, error)
}

// ExecRunner runs the real git binary.
type ExecRunner struct{}

// Run executes git and returns its stdout.
func (ExecRunner) Run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return string(out), fmt.Errorf("git %s: %s", strings.Join(args, " "), stderr)
	}
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// Repo is a handle to one git repository.
type Repo struct {
	root   string
	runner Runner
}

// Open locates the repository containing dir.
func Open(dir string) (*Repo, error) {
	return OpenWith(dir, ExecRunner{})
}

// OpenWith locates the repository containing dir using a custom runner.
func OpenWith(dir string, r Runner) (*Repo, error) {
	out, err := r.Run(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	root := strings.TrimSpace(out)
	if root == "" {
		return nil, errors.New("not a git repository: empty root")
	}
	return &Repo{root: root, runner: r}, nil
}

// NewRepo wires a Repo directly to a root and runner. Intended for
// tests that inject a fake runner.
func NewRepo(root string, r Runner) *Repo {
	return &Repo{root: root, runner: r}
}

// Root returns the working-tree root.
func (g *Repo) Root() string { return g.root }

// Runner returns the runner backing this repository handle.
func (g *Repo) Runner() Runner { return g.runner }

func (g *Repo) run(args ...string) (string, error) {
	return g.runner.Run(g.root, args...)
}

// GitDir returns the absolute path of the repository's private
// metadata directory (usually <root>/.git, but may live elsewhere for
// worktrees).
func (g *Repo) GitDir() (string, error) {
	out, err := g.run("rev-parse", "--git-dir")
	if err != nil {
		return "", err
	}
	dir := strings.TrimSpace(out)
	if dir == "" {
		dir = ".git"
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(g.root, dir)
	}
	return dir, nil
}

// Branch returns the current branch name, or "HEAD" when detached.
func (g *Repo) Branch() (string, error) {
	out, err := g.run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Head returns the commit SHA of HEAD, or "" in an empty repository.
func (g *Repo) Head() string {
	out, err := g.run("rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// RemoteURL returns the fetch URL of the named remote.
func (g *Repo) RemoteURL(name string) (string, error) {
	out, err := g.run("remote", "get-url", name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RevParse resolves ref to a commit SHA. The second return is false
// when the ref does not resolve locally.
func (g *Repo) RevParse(ref string) (string, bool) {
	out, err := g.run("rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		return "", false
	}
	sha := strings.TrimSpace(out)
	return sha, sha != ""
}

// MergeBase returns the merge base of a and b, if any.
func (g *Repo) MergeBase(a, b string) (string, bool) {
	out, err := g.run("merge-base", a, b)
	if err != nil {
		return "", false
	}
	sha := strings.TrimSpace(out)
	return sha, sha != ""
}

// RemoteHeadRef resolves the default branch ref of a remote: the
// remote's symbolic HEAD when configured, else <remote>/main, else
// <remote>/master.
func (g *Repo) RemoteHeadRef(remote string) (string, bool) {
	out, err := g.run("symbolic-ref", "--quiet", "--short", "refs/remotes/"+remote+"/HEAD")
	if err == nil {
		if ref := strings.TrimSpace(out); ref != "" {
			return ref, true
		}
	}
	for _, name := range []string{"main", "master"} {
		ref := remote + "/" + name
		if _, ok := g.RevParse(ref); ok {
			return ref, true
		}
	}
	return "", false
}

// ConfigGet reads a git config value at the given scope ("--local" or
// "--global"). Returns false when the key is unset.
func (g *Repo) ConfigGet(scope, key string) (string, bool) {
	out, err := g.run("config", scope, "--get", key)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(out)
	return v, v != ""
}

// ConfigSet writes a git config value at the given scope.
func (g *Repo) ConfigSet(scope, key, value string) error {
	_, err := g.run("config", scope, key, value)
	return err
}

// ConfigUnset removes a git config value at the given scope.
func (g *Repo) ConfigUnset(scope, key string) error {
	_, err := g.run("config", scope, "--unset", key)
	return err
}

// ConfigGetGlobal reads a global git config value without requiring a
// repository.
func ConfigGetGlobal(r Runner, key string) (string, bool) {
	out, err := r.Run("", "config", "--global", "--get", key)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(out)
	return v, v != ""
}

// ConfigSetGlobal writes a global git config value without requiring a
// repository.
func ConfigSetGlobal(r Runner, key, value string) error {
	_, err := r.Run("", "config", "--global", key, value)
	return err
}

// ConfigUnsetGlobal removes a global git config value.
func ConfigUnsetGlobal(r Runner, key string) error {
	_, err := r.Run("", "config", "--global", "--unset", key)
	return err
}

// ListCommits returns the SHAs in base..head, newest first.
func (g *Repo) ListCommits(base, head string) []string {
	out, err := g.run("rev-list", base+".."+head)
	if err != nil {
		return nil
	}
	var shas []string
	for _, line := range strings.Split(out, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			shas = append(shas, s)
		}
	}
	return shas
}
