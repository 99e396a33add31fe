package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const tokenFileName = "token.json"

// ErrNoToken is returned when no API token has been stored.
var ErrNoToken = errors.New("no preflight token found; run `preflight auth login` first")

type storedToken struct {
	Token       string `json:"token"`
	CreatedAtMs int64  `json:"createdAtMs"`
}

func tokenPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tokenFileName), nil
}

// SaveToken stores the API token with owner-only permissions.
func SaveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(storedToken{
		Token:       token,
		CreatedAtMs: time.Now().UnixMilli(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// LoadToken returns the stored token, or ErrNoToken.
func LoadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ErrNoToken
	}
	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil || st.Token == "" {
		return "", ErrNoToken
	}
	return st.Token, nil
}

// ClearToken removes the stored token. Missing files are not an error.
func ClearToken() error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
