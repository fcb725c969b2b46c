package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = ".careledger.yaml"

// Config holds the CLI settings read from .careledger.yaml.
type Config struct {
	DataDir string `yaml:"data_dir"`
	Store   string `yaml:"store"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{DataDir: ".", Store: "flatfile"}
}

// LoadConfig reads .careledger.yaml from dir. A missing file returns
// DefaultConfig; fields left empty in the file fall back to their
// defaults.
func LoadConfig(dir string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", configFileName, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.Store == "" {
		cfg.Store = "flatfile"
	}
	return cfg, nil
}
