package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"exifizer/internal/film"
)

// thumbnailExt is the extension of the camera and scanner thumbnail sidecars.
const thumbnailExt = ".thm"

// OSFilesystemManager is the real filesystem implementation of film.FilesystemManager.
type OSFilesystemManager struct {
	extensions map[string]bool
	ignore     []string
}

// NewOSFilesystemManager creates a filesystem manager that enumerates files with
// one of extensions (case-insensitive, with or without the leading dot) and skips
// files matching the ignore patterns or a directory's .exifizerignore.
func NewOSFilesystemManager(extensions, ignore []string) *OSFilesystemManager {
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return &OSFilesystemManager{extensions: exts, ignore: ignore}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*film.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if !mode.IsRegular() && !mode.IsDir() {
		return nil, fmt.Errorf("unsupported file type %s: %s", mode.Type(), absPath)
	}

	return film.NewPath(absPath, info.IsDir()), nil
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path *film.Path) (io.ReadCloser, error) {
	if path.IsDir() {
		return nil, fmt.Errorf("cannot open directory as file: %s", path.String())
	}
	return os.Open(path.String())
}

// FindImages returns the images directly inside dir in name order.
func (m *OSFilesystemManager) FindImages(dir *film.Path) ([]*film.Path, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}

	matcher, err := LoadIgnoreMatcher(dir.String(), m.ignore)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir.String())
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var paths []*film.Path
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !m.extensions[strings.ToLower(filepath.Ext(name))] || matcher.Match(name) {
			continue
		}
		paths = append(paths, film.NewPath(filepath.Join(dir.String(), name), false))
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i].Name() < paths[j].Name() })
	return paths, nil
}

// FindDirectories returns base and every directory below it in walk order.
// A directory is pruned when it matches the configured ignore patterns
// (relative to base) or its parent's ignore file (relative to the parent).
func (m *OSFilesystemManager) FindDirectories(base *film.Path) ([]*film.Path, error) {
	if !base.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", base.String())
	}

	matcher := NewIgnoreMatcher(m.ignore)
	local := map[string]*IgnoreMatcher{}
	var dirs []*film.Path
	err := filepath.WalkDir(base.String(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != base.String() {
			rel, err := filepath.Rel(base.String(), p)
			if err != nil {
				return err
			}
			if matcher.Match(rel) {
				return filepath.SkipDir
			}
			parent := filepath.Dir(p)
			pm, ok := local[parent]
			if !ok {
				if pm, err = LoadIgnoreMatcher(parent, nil); err != nil {
					return err
				}
				local[parent] = pm
			}
			if pm.Match(filepath.Base(p)) {
				return filepath.SkipDir
			}
		}
		dirs = append(dirs, film.NewPath(p, true))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	return dirs, nil
}

// RemoveThumbnails deletes .thm files directly inside dir.
func (m *OSFilesystemManager) RemoveThumbnails(dir *film.Path) (int, error) {
	entries, err := os.ReadDir(dir.String())
	if err != nil {
		return 0, fmt.Errorf("reading directory: %w", err)
	}
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.ToLower(filepath.Ext(entry.Name())) != thumbnailExt {
			continue
		}
		if err := os.Remove(filepath.Join(dir.String(), entry.Name())); err != nil {
			return removed, fmt.Errorf("removing thumbnail: %w", err)
		}
		removed++
	}
	return removed, nil
}

// WriteFile replaces path with data using a temp file and rename in the same
// directory. An existing file keeps its permissions.
func (m *OSFilesystemManager) WriteFile(path string, data []byte) error {
	perm := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that OSFilesystemManager implements film.FilesystemManager
var _ film.FilesystemManager = (*OSFilesystemManager)(nil)
