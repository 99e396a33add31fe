package installer

import "github.com/sprite-ai/preflight/internal/gitx"

// ScopeStatus describes one scope's wiring: the configured hooks path
// (when any), the path the tool would manage at that scope, and
// whether the two agree.
type ScopeStatus struct {
	Installed   bool
	HooksPath   string
	ManagedPath string
}

// Status is the per-scope picture plus the scope that actually wins.
// EffectiveScope is empty when nothing is installed; repo beats local
// beats global because committed wiring is explicit and shared.
type Status struct {
	Global         ScopeStatus
	Local          ScopeStatus
	Repo           ScopeStatus
	EffectiveScope Scope
}

// Status recomputes installation state. g may be nil when the current
// directory is not inside a repository; local and repo scopes then
// read as not installed.
func (in *Installer) Status(g *gitx.Repo) Status {
	var st Status

	st.Global.ManagedPath = in.globalHooks
	if current, ok := gitx.ConfigGetGlobal(in.runner, gitHooksPathKey); ok {
		st.Global.HooksPath = current
		st.Global.Installed = in.absGlobal(current) == in.globalHooks
	}

	if g != nil {
		if managed, err := localManagedHooks(g); err == nil {
			st.Local.ManagedPath = managed
			if current, ok := g.ConfigGet("--local", gitHooksPathKey); ok {
				st.Local.HooksPath = current
				st.Local.Installed = absAgainst(g.Root(), current) == managed
			}
		}

		hooksDir := repoHooksDir(g.Root())
		st.Repo.ManagedPath = hooksDir
		st.Repo.Installed = hookContains(hooksDir, "pre-commit", "preflight review --staged") ||
			hookContains(hooksDir, "pre-push", "preflight review --push")
		if st.Repo.Installed {
			st.Repo.HooksPath = hooksDir
		}
	}

	switch {
	case st.Repo.Installed:
		st.EffectiveScope = ScopeRepo
	case st.Local.Installed:
		st.EffectiveScope = ScopeLocal
	case st.Global.Installed:
		st.EffectiveScope = ScopeGlobal
	}
	return st
}
