package fs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-directory file listing extra ignore patterns.
const IgnoreFileName = ".exifizerignore"

// IgnoreMatcher decides which scans are left out of a roll and which
// directories are skipped when rolls are discovered.
// Patterns without '/' match the file's basename; patterns with '/' match
// the slash-separated path relative to the directory being scanned.
// A directory's ignore file applies to the images and subdirectories
// directly inside it.
type IgnoreMatcher struct {
	basename []string
	relative []string
}

// NewIgnoreMatcher compiles raw patterns. Blank lines and '#' comments are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if strings.Contains(raw, "/") {
			m.relative = append(m.relative, raw)
		} else {
			m.basename = append(m.basename, raw)
		}
	}
	return m
}

// Len returns the number of compiled patterns.
func (m *IgnoreMatcher) Len() int {
	return len(m.basename) + len(m.relative)
}

// Match reports whether relativePath is ignored. Malformed patterns never match.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	if relativePath == "" {
		return false
	}
	base := filepath.Base(relativePath)
	for _, p := range m.basename {
		if ok, err := filepath.Match(p, base); err == nil && ok {
			return true
		}
	}
	slashed := filepath.ToSlash(relativePath)
	for _, p := range m.relative {
		if ok, err := filepath.Match(p, slashed); err == nil && ok {
			return true
		}
	}
	return false
}

// LoadIgnoreMatcher combines the configured patterns with those in dir's
// ignore file, if it has one.
func LoadIgnoreMatcher(dir string, configured []string) (*IgnoreMatcher, error) {
	extra, err := ParseIgnoreFile(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	patterns := make([]string, 0, len(configured)+len(extra))
	patterns = append(patterns, configured...)
	patterns = append(patterns, extra...)
	return NewIgnoreMatcher(patterns), nil
}

// ParseIgnoreFile returns the raw lines of an ignore file.
// A missing file yields nil and no error.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return lines, nil
}
