package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("EXIFIZER_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("EXIFIZER_HOME", "/custom/exifizer")
		t.Setenv("EXIFIZER_EXIFTOOL_CONFIG", "/custom/.ExifTool_config")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		want := map[string]string{
			"config_path":     "/custom/config.toml",
			"base_dir":        "/custom/exifizer",
			"log_dir":         "/custom/exifizer/log",
			"exiftool_config": "/custom/.ExifTool_config",
		}
		for key, w := range want {
			if defaults[key] != w {
				t.Errorf("%s = %q, want %q", key, defaults[key], w)
			}
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("EXIFIZER_CONFIG_PATH", "")
		t.Setenv("EXIFIZER_HOME", "")
		t.Setenv("EXIFIZER_EXIFTOOL_CONFIG", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()
		wantBase := filepath.Join(homeDir, ".local", "share", "exifizer")
		want := map[string]string{
			"config_path":     filepath.Join(homeDir, ".config", "exifizer.toml"),
			"base_dir":        wantBase,
			"log_dir":         filepath.Join(wantBase, "log"),
			"exiftool_config": filepath.Join(homeDir, ".ExifTool_config"),
		}
		for key, w := range want {
			if defaults[key] != w {
				t.Errorf("%s = %q, want %q", key, defaults[key], w)
			}
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("EXIFIZER_CONFIG_PATH", filepath.Join(dir, "absent.toml"))
		t.Setenv("EXIFIZER_HOME", filepath.Join(dir, "home"))
		t.Setenv("EXIFIZER_EXIFTOOL_CONFIG", filepath.Join(dir, ".ExifTool_config"))

		cfg, path, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if path != filepath.Join(dir, "absent.toml") {
			t.Errorf("path = %q", path)
		}
		if cfg.BaseDir != filepath.Join(dir, "home") {
			t.Errorf("BaseDir = %q", cfg.BaseDir)
		}
		if cfg.ExifTool.ConfigPath != filepath.Join(dir, ".ExifTool_config") {
			t.Errorf("ExifTool.ConfigPath = %q", cfg.ExifTool.ConfigPath)
		}
	})

	t.Run("file settings override defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "exifizer.toml")
		content := "[batch]\nworkers = 8\noverflow = \"carry\"\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		t.Setenv("EXIFIZER_CONFIG_PATH", path)
		t.Setenv("EXIFIZER_HOME", filepath.Join(dir, "home"))

		cfg, _, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Batch.Workers != 8 || cfg.Batch.Overflow != "carry" {
			t.Errorf("Batch = %+v, want workers 8 and carry", cfg.Batch)
		}
		if cfg.ExifTool.MaxAttempts != 3 {
			t.Errorf("ExifTool.MaxAttempts = %d, want default 3", cfg.ExifTool.MaxAttempts)
		}
	})
}
