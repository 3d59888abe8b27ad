package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HomePath     string
	DBPath       string
	SettingsPath string
	SessionsPath string
}

type overrides struct {
	Home string `env:"NADI_HOME"`
}

// New resolves application paths from the given home directory. The
// NADI_HOME environment variable takes precedence over the argument.
func New(homePath string) (Config, error) {
	var o overrides
	if err := env.Parse(&o); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if o.Home != "" {
		homePath = o.Home
	}
	if homePath == "" {
		return Config{}, fmt.Errorf("home path is required")
	}
	root := filepath.Join(homePath, ".nadi")
	return Config{
		HomePath:     homePath,
		DBPath:       filepath.Join(root, "nadi.db"),
		SettingsPath: filepath.Join(root, "settings.yaml"),
		SessionsPath: filepath.Join(root, "sessions"),
	}, nil
}
