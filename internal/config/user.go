package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// User is the machine-level configuration: where the reviewer service
// lives and how long to wait for it. Values come from
// <config-dir>/config.yaml, overridable via PREFLIGHT_* environment
// variables.
type User struct {
	APIBaseURL     string `mapstructure:"api_base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UI             string `mapstructure:"ui"` // "", "plain", or "tui"
	PlanTier       string `mapstructure:"plan_tier"`
}

// Timeout returns the reviewer call deadline.
func (u User) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// LoadUser builds the effective user config: defaults <- file <- env.
func LoadUser() (User, error) {
	v := viper.New()
	v.SetDefault("api_base_url", "https://api.preflight.sprite.ai")
	v.SetDefault("timeout_seconds", 300)
	v.SetDefault("ui", "")
	v.SetDefault("plan_tier", "free")

	v.SetEnvPrefix("PREFLIGHT")
	v.AutomaticEnv()

	dir, err := ConfigDir()
	if err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return User{}, err
			}
		}
	}

	var u User
	if err := v.Unmarshal(&u); err != nil {
		return User{}, err
	}
	return u, nil
}
