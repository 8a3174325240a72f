package app

import (
	"fmt"
	"os"
	"path/filepath"

	"exifizer/internal/config"

	"github.com/caarlos0/env/v11"
)

// environment holds the variables that relocate exifizer's files.
type environment struct {
	ConfigPath     string `env:"EXIFIZER_CONFIG_PATH"`
	Home           string `env:"EXIFIZER_HOME"`
	ExifToolConfig string `env:"EXIFIZER_EXIFTOOL_CONFIG"`
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - EXIFIZER_CONFIG_PATH: config file location (default: ~/.config/exifizer.toml)
//   - EXIFIZER_HOME: base directory for exifizer data (default: ~/.local/share/exifizer)
//   - EXIFIZER_EXIFTOOL_CONFIG: exiftool config file (default: ~/.ExifTool_config)
func GetDefaults() (map[string]string, error) {
	var e environment
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil && (e.ConfigPath == "" || e.Home == "" || e.ExifToolConfig == "") {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	configPath := e.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(homeDir, ".config", "exifizer.toml")
	}
	baseDir := e.Home
	if baseDir == "" {
		baseDir = filepath.Join(homeDir, ".local", "share", "exifizer")
	}
	exiftoolConfig := e.ExifToolConfig
	if exiftoolConfig == "" {
		exiftoolConfig = filepath.Join(homeDir, ".ExifTool_config")
	}

	return map[string]string{
		"config_path":     configPath,
		"base_dir":        baseDir,
		"log_dir":         filepath.Join(baseDir, "log"),
		"exiftool_config": exiftoolConfig,
	}, nil
}

// DefaultConfig builds the configuration used when no config file exists.
func DefaultConfig(defaults map[string]string) *config.Config {
	cfg := config.NewConfig(defaults["base_dir"])
	cfg.ExifTool.ConfigPath = defaults["exiftool_config"]
	return cfg
}

// LoadConfig reads the config file named by the defaults, layered over
// DefaultConfig. It returns the config and the path it was read from.
func LoadConfig() (*config.Config, string, error) {
	defaults, err := GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}
	path := defaults["config_path"]
	cfg, err := config.LoadOrDefault(path, DefaultConfig(defaults))
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, path, nil
}
