package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestName is the committed repository manifest file.
const ManifestName = ".preflight.yml"

// DefaultInstructionFiles are the agent-instruction files hashed into
// review requests when the manifest does not name its own.
var DefaultInstructionFiles = []string{
	"AGENTS.md",
	"agents.md",
	"codex.md",
	"claude.md",
	".cursorrules",
}

const defaultTimeout = 5 * time.Minute

// CheckCommand is one locally-enforced check that must pass before any
// network call is made.
type CheckCommand struct {
	Name string `yaml:"name"`
	Run  string `yaml:"run"`
}

// ChecksConfig controls the local check phase.
type ChecksConfig struct {
	Enabled                *bool          `yaml:"enabled"`
	SkipIfRepoHasPrecommit *bool          `yaml:"skip_if_repo_has_precommit"`
	Commands               []CheckCommand `yaml:"commands"`
}

// LocalAgent is an optional local command that emits a review in the
// preflight Markdown contract.
type LocalAgent struct {
	Command string `yaml:"command"`
}

// Manifest is the committed per-repository configuration. Its policy
// field is the highest-precedence enforcement source.
type Manifest struct {
	Policy           string       `yaml:"policy"`
	InstructionFiles []string     `yaml:"instruction_files"`
	TimeoutSeconds   int          `yaml:"timeout_seconds"`
	Checks           ChecksConfig `yaml:"checks"`
	LocalAgent       *LocalAgent  `yaml:"local_agent"`
}

// InstructionFileNames returns the manifest's instruction-file list,
// falling back to the defaults.
func (m Manifest) InstructionFileNames() []string {
	if len(m.InstructionFiles) > 0 {
		return m.InstructionFiles
	}
	return DefaultInstructionFiles
}

// Timeout returns the reviewer deadline configured for this repo, or
// the default.
func (m Manifest) Timeout() time.Duration {
	if m.TimeoutSeconds > 0 {
		return time.Duration(m.TimeoutSeconds) * time.Second
	}
	return defaultTimeout
}

// ChecksEnabled reports whether local checks run (default true).
func (m Manifest) ChecksEnabled() bool {
	return m.Checks.Enabled == nil || *m.Checks.Enabled
}

// SkipChecksIfRepoHasPrecommit reports whether local checks are skipped
// when the repo already wires its own pre-commit linting (default true).
func (m Manifest) SkipChecksIfRepoHasPrecommit() bool {
	return m.Checks.SkipIfRepoHasPrecommit == nil || *m.Checks.SkipIfRepoHasPrecommit
}

// LoadManifest reads <repoRoot>/.preflight.yml. A missing file yields
// the zero manifest; a malformed one is a configuration error.
func LoadManifest(repoRoot string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(repoRoot, ManifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, nil
		}
		return Manifest{}, fmt.Errorf("reading %s: %w", ManifestName, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("invalid %s: %w", ManifestName, err)
	}
	return m, nil
}

// SaveManifest writes the manifest back to the repo root. Used by the
// repo-scope installer.
func SaveManifest(repoRoot string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", ManifestName, err)
	}
	return os.WriteFile(filepath.Join(repoRoot, ManifestName), data, 0o644)
}
