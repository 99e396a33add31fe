// Package policy computes the effective enforcement policy from
// layered configuration sources. Precedence, highest to lowest: the
// committed repository manifest, repository-local git config,
// machine-wide git config, then the built-in default.
package policy

import (
	"strings"

	"github.com/sprite-ai/preflight/internal/gitx"
)

// Policy is an enforcement level. The zero value means "not
// configured".
type Policy string

const (
	Required Policy = "required"
	Optional Policy = "optional"
	Disabled Policy = "disabled"
)

// Parse normalizes a raw config value; unknown values read as unset.
func Parse(raw string) Policy {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case Required:
		return Required
	case Optional:
		return Optional
	case Disabled:
		return Disabled
	default:
		return ""
	}
}

// Source identifies which layer supplied the effective policy.
type Source string

const (
	SourceRepo    Source = "repo"
	SourceLocal   Source = "local"
	SourceGlobal  Source = "global"
	SourceDefault Source = "default"
)

// Effective is the resolved policy and where it came from.
type Effective struct {
	Policy Policy
	Source Source
}

// Configured records the raw value found at each layer ("" = unset).
type Configured struct {
	Repo   Policy
	Local  Policy
	Global Policy
}

// Resolution is the full outcome: the effective policy plus which
// configured lower-precedence sources were shadowed. Shadowed values
// are reported for diagnostics but never applied.
type Resolution struct {
	Effective     Effective
	Configured    Configured
	IgnoredLocal  bool
	IgnoredGlobal bool
}

// gitConfigKey is the key consulted at the local and global layers.
const gitConfigKey = "preflight.policy"

// ResolveValues folds the three optional layers into one resolution.
func ResolveValues(c Configured) Resolution {
	eff := Effective{Policy: Optional, Source: SourceDefault}
	switch {
	case c.Repo != "":
		eff = Effective{Policy: c.Repo, Source: SourceRepo}
	case c.Local != "":
		eff = Effective{Policy: c.Local, Source: SourceLocal}
	case c.Global != "":
		eff = Effective{Policy: c.Global, Source: SourceGlobal}
	}

	return Resolution{
		Effective:     eff,
		Configured:    c,
		IgnoredLocal:  eff.Source == SourceRepo && c.Local != "",
		IgnoredGlobal: (eff.Source == SourceRepo || eff.Source == SourceLocal) && c.Global != "",
	}
}

// Resolve reads the git config layers for a repository and combines
// them with the manifest's policy field.
func Resolve(g *gitx.Repo, manifestPolicy string) Resolution {
	var c Configured
	c.Repo = Parse(manifestPolicy)
	if v, ok := g.ConfigGet("--local", gitConfigKey); ok {
		c.Local = Parse(v)
	}
	if v, ok := gitx.ConfigGetGlobal(g.Runner(), gitConfigKey); ok {
		c.Global = Parse(v)
	}
	return ResolveValues(c)
}

// ResolveOutsideRepo resolves policy when no repository is available:
// only the global layer and the default apply.
func ResolveOutsideRepo(r gitx.Runner) Resolution {
	var c Configured
	if v, ok := gitx.ConfigGetGlobal(r, gitConfigKey); ok {
		c.Global = Parse(v)
	}
	return ResolveValues(c)
}
