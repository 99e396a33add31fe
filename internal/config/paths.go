// Package config loads preflight's user-level configuration, the
// committed repository manifest, and the stored API token.
package config

import (
	"os"
	"path/filepath"
)

// ConfigDir returns the per-user configuration directory, honoring
// XDG_CONFIG_HOME.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "preflight"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "preflight"), nil
}

// HooksDir returns the tool-managed global hooks directory that
// `install --scope global` points core.hooksPath at.
func HooksDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hooks"), nil
}
