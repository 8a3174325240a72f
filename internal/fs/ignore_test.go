package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewIgnoreMatcher(t *testing.T) {
	t.Run("skips blank lines and comments", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"", "  ", "# contact sheets", "*_contact.jpg"})
		if m.Len() != 1 {
			t.Fatalf("Len() = %d, want 1", m.Len())
		}
	})

	t.Run("splits basename and relative patterns", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"*.thm", "rejects/*.jpg"})
		if len(m.basename) != 1 || m.basename[0] != "*.thm" {
			t.Errorf("basename = %v, want [*.thm]", m.basename)
		}
		if len(m.relative) != 1 || m.relative[0] != "rejects/*.jpg" {
			t.Errorf("relative = %v, want [rejects/*.jpg]", m.relative)
		}
	})
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name         string
		patterns     []string
		relativePath string
		want         bool
	}{
		{"hidden files are ignored by the default pattern", []string{".*"}, "._000044230001.jpg", true},
		{"basename glob matches in a subdirectory", []string{"*_contact.jpg"}, filepath.Join("roll_12", "12_contact.jpg"), true},
		{"basename glob does not match a scan", []string{"*_contact.jpg"}, "12_01.jpg", false},
		{"relative pattern matches its path", []string{"rejects/*.jpg"}, filepath.Join("rejects", "12_04.jpg"), true},
		{"relative pattern ignores other directories", []string{"rejects/*.jpg"}, filepath.Join("keepers", "12_04.jpg"), false},
		{"character class", []string{"*.[tT][iI][fF]"}, "12_01.TIF", true},
		{"malformed pattern never matches", []string{"[", "*.tmp"}, "a.tmp", true},
		{"no patterns match nothing", nil, "12_01.jpg", false},
		{"empty path never matches", []string{"*"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NewIgnoreMatcher(tt.patterns).Match(tt.relativePath)
			if got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.relativePath, got, tt.want)
			}
		})
	}
}

func TestLoadIgnoreMatcher(t *testing.T) {
	t.Run("merges configured and file patterns", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		content := "*_contact.jpg\n# rescans\nrescan_*\n"
		if err := os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte(content), 0644); err != nil {
			t.Fatalf("writing ignore file: %v", err)
		}

		m, err := LoadIgnoreMatcher(dir, []string{".*"})
		if err != nil {
			t.Fatalf("LoadIgnoreMatcher() error = %v", err)
		}
		if m.Len() != 3 {
			t.Errorf("Len() = %d, want 3", m.Len())
		}
		if !m.Match("rescan_03.jpg") {
			t.Error("Match(rescan_03.jpg) = false, want true")
		}
	})

	t.Run("missing ignore file keeps configured patterns", func(t *testing.T) {
		t.Parallel()
		m, err := LoadIgnoreMatcher(t.TempDir(), []string{".*"})
		if err != nil {
			t.Fatalf("LoadIgnoreMatcher() error = %v", err)
		}
		if m.Len() != 1 {
			t.Errorf("Len() = %d, want 1", m.Len())
		}
	})
}

func TestParseIgnoreFile(t *testing.T) {
	t.Run("returns raw lines", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), IgnoreFileName)
		if err := os.WriteFile(path, []byte("*.log\n# comment\n\n*.tmp\n"), 0644); err != nil {
			t.Fatalf("writing test file: %v", err)
		}

		lines, err := ParseIgnoreFile(path)
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if len(lines) != 4 {
			t.Fatalf("len(lines) = %d, want 4", len(lines))
		}
	})

	t.Run("returns nil for missing file", func(t *testing.T) {
		t.Parallel()
		lines, err := ParseIgnoreFile("/nonexistent/" + IgnoreFileName)
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if lines != nil {
			t.Errorf("lines = %v, want nil", lines)
		}
	})
}
