package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	envConfigPath     = "CONFIG_PATH"
	defaultConfigPath = "./config.yaml"
)

// Load builds the configuration from the file named by CONFIG_PATH, or
// ./config.yaml when that is unset, with ENV taking priority over the file
// and env-default tags filling the rest. A missing ./config.yaml is not an
// error; a missing CONFIG_PATH file is.
func Load() (*Config, error) {
	if path := os.Getenv(envConfigPath); path != "" {
		return LoadFile(path)
	}
	return load(defaultConfigPath, false)
}

// LoadFile is Load with an explicit file that must exist.
func LoadFile(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, required bool) (*Config, error) {
	var cfg Config

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case required || !errors.Is(statErr, fs.ErrNotExist):
		return nil, fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}
