package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for exifizer.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	ExifTool   ExifToolConfig   `toml:"exiftool"`
	Batch      BatchConfig      `toml:"batch"`
	Filesystem FilesystemConfig `toml:"filesystem"`
	Database   DatabaseConfig   `toml:"database"`
	Archive    ArchiveConfig    `toml:"archive"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// ExifToolConfig locates the metadata tool and bounds how it is retried.
type ExifToolConfig struct {
	Path            string `toml:"path"`        // executable, looked up on PATH when bare
	ConfigPath      string `toml:"config_path"` // defines the XMP-AnalogueData namespace
	MaxAttempts     int    `toml:"max_attempts"`
	RetryIntervalMS int    `toml:"retry_interval_ms"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// BatchConfig controls how rolls are processed.
type BatchConfig struct {
	Extensions       []string `toml:"extensions"`
	Workers          int      `toml:"workers"`
	Overflow         string   `toml:"overflow"`   // "reject" (default) or "carry"
	Convention       string   `toml:"convention"` // "auto" (default), "numeric" or "roll-prefix"
	RemoveThumbnails bool     `toml:"remove_thumbnails"`
	WriteSidecar     bool     `toml:"write_sidecar"`
	Artist           string   `toml:"artist"`    // empty disables the tag
	Copyright        string   `toml:"copyright"` // empty disables the tag
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

// DatabaseConfig represents configuration for the run history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ArchiveConfig represents where originals are kept before they are rewritten.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ArchiveConfig struct {
	Type    string `toml:"type"` // "none", "memory", "filesystem" or "s3"
	Encrypt bool   `toml:"encrypt"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket       string `toml:"s3_bucket,omitempty"`
	S3Prefix       string `toml:"s3_prefix,omitempty"`
	S3Region       string `toml:"s3_region,omitempty"`
	S3Endpoint     string `toml:"s3_endpoint,omitempty"` // for S3-compatible stores
	S3UsePathStyle bool   `toml:"s3_use_path_style,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for archive encryption.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig creates a Config rooted at baseDir with default settings.
// The exiftool config path is left to the caller since it lives in the home directory.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		ExifTool: ExifToolConfig{
			Path:            "exiftool",
			MaxAttempts:     3,
			RetryIntervalMS: 500,
			TimeoutSeconds:  60,
		},
		Batch: BatchConfig{
			Extensions:       []string{".jpg", ".jpeg", ".tif", ".tiff"},
			Workers:          2,
			Overflow:         "reject",
			Convention:       "auto",
			RemoveThumbnails: true,
			WriteSidecar:     true,
			Artist:           "Film Photographer",
			Copyright:        "© Film Photography Collection",
		},
		Filesystem: FilesystemConfig{
			Ignore: []string{".*"},
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Archive: ArchiveConfig{
			Type: "none",
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "exifizer.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "exifizer.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault reads the config at path. A missing file yields defaults;
// a file that exists is layered over the defaults so omitted settings keep them.
func LoadOrDefault(path string, defaults *Config) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := *defaults
	if _, err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return &cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
