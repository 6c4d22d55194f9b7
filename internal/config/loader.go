package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"accbridge/pkg/logging"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// LoadConfig loads configuration from the specified directory.
// The directory should contain config.yaml; when the file is absent,
// built-in defaults are used. Credentials are always read from the
// environment, with a .env file in the working directory loaded first
// (best-effort, matching local development setups).
func LoadConfig(configPath string) (Config, error) {
	// Missing .env is the normal case in deployed environments.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("ConfigLoader", "Could not load .env file: %v", err)
	}

	cfg := GetDefaultConfig()

	if configPath == "" {
		configPath = "."
	}
	configFilePath := filepath.Join(configPath, configFileName)

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	if err := env.Parse(&cfg.Credentials); err != nil {
		return Config{}, fmt.Errorf("error parsing environment credentials: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
