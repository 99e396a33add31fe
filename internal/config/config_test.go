package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "preflight") {
		t.Errorf("unexpected config dir: %s", dir)
	}
}

func TestLoadManifestMissing(t *testing.T) {
	m, err := LoadManifest(t.TempDir())
	if err != nil {
		t.Fatalf("missing manifest should not error: %v", err)
	}
	if m.Policy != "" {
		t.Errorf("zero manifest expected, got %+v", m)
	}
	if m.Timeout() != defaultTimeout {
		t.Errorf("default timeout expected, got %v", m.Timeout())
	}
	if !m.ChecksEnabled() {
		t.Error("checks should default to enabled")
	}
}

func TestLoadManifestMalformed(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ManifestName), []byte("policy: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(root); err == nil {
		t.Error("malformed manifest should be a configuration error")
	}
}

func TestLoadManifestFields(t *testing.T) {
	root := t.TempDir()
	doc := `policy: required
instruction_files:
  - AGENTS.md
timeout_seconds: 60
checks:
  enabled: true
  commands:
    - name: vet
      run: go vet ./...
`
	if err := os.WriteFile(filepath.Join(root, ManifestName), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(root)
	if err != nil {
		t.Fatal(err)
	}
	if m.Policy != "required" {
		t.Errorf("policy = %q", m.Policy)
	}
	if got := m.InstructionFileNames(); len(got) != 1 || got[0] != "AGENTS.md" {
		t.Errorf("instruction files = %v", got)
	}
	if m.Timeout().Seconds() != 60 {
		t.Errorf("timeout = %v", m.Timeout())
	}
	if len(m.Checks.Commands) != 1 || m.Checks.Commands[0].Name != "vet" {
		t.Errorf("checks = %+v", m.Checks)
	}
}

func TestInstructionFileDefaults(t *testing.T) {
	var m Manifest
	got := m.InstructionFileNames()
	if len(got) != len(DefaultInstructionFiles) {
		t.Errorf("expected defaults, got %v", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := LoadToken(); err != ErrNoToken {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if err := SaveToken("tok_123"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	tok, err := LoadToken()
	if err != nil || tok != "tok_123" {
		t.Fatalf("LoadToken = %q, %v", tok, err)
	}
	if err := ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if _, err := LoadToken(); err != ErrNoToken {
		t.Error("token should be gone after clear")
	}
}
