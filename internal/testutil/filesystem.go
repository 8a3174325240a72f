package testutil

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"exifizer/internal/film"
)

// imageExts mirrors the default batch.extensions.
var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true}

// mockEntry is a file, or a directory when content is nil and dir is set.
type mockEntry struct {
	content []byte
	dir     bool
}

// MockFilesystemManager is an in-memory scan tree keyed by absolute path.
// Safe for concurrent use by parallel rolls.
type MockFilesystemManager struct {
	mu      sync.RWMutex
	entries map[string]*mockEntry
}

func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{entries: make(map[string]*mockEntry)}
}

// AddFile adds a file and creates its parent directories.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(filepath.Dir(path))
	m.entries[path] = &mockEntry{content: content}
}

// AddDirectory adds an empty directory and its parents.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(path)
}

func (m *MockFilesystemManager) mkdirAll(dir string) {
	for {
		if _, ok := m.entries[dir]; !ok {
			m.entries[dir] = &mockEntry{dir: true}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// Content returns the current content of a file.
func (m *MockFilesystemManager) Content(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[path]
	if !ok || e.dir {
		return nil, false
	}
	return e.content, true
}

// Exists reports whether a file or directory is present at path.
func (m *MockFilesystemManager) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[path]
	return ok
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*film.Path, error) {
	abs, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[abs]
	if !ok {
		return nil, fmt.Errorf("stat path: %s: no such file or directory", abs)
	}
	return film.NewPath(abs, e.dir), nil
}

func (m *MockFilesystemManager) Open(path *film.Path) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[path.String()]
	switch {
	case !ok:
		return nil, fmt.Errorf("open %s: no such file", path.String())
	case e.dir:
		return nil, fmt.Errorf("cannot open directory as file: %s", path.String())
	}
	return io.NopCloser(bytes.NewReader(e.content)), nil
}

// FindImages returns the non-hidden images directly inside dir in name order.
func (m *MockFilesystemManager) FindImages(dir *film.Path) ([]*film.Path, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*film.Path
	for p, e := range m.entries {
		name := filepath.Base(p)
		if e.dir || filepath.Dir(p) != dir.String() || strings.HasPrefix(name, ".") {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(name))] {
			out = append(out, film.NewPath(p, false))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// FindDirectories returns base and every directory below it in path order.
func (m *MockFilesystemManager) FindDirectories(base *film.Path) ([]*film.Path, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := strings.TrimSuffix(base.String(), string(filepath.Separator)) + string(filepath.Separator)
	var out []*film.Path
	for p, e := range m.entries {
		if e.dir && (p == base.String() || strings.HasPrefix(p, prefix)) {
			out = append(out, film.NewPath(p, true))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (m *MockFilesystemManager) RemoveThumbnails(dir *film.Path) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for p, e := range m.entries {
		if !e.dir && filepath.Dir(p) == dir.String() && strings.EqualFold(filepath.Ext(p), ".thm") {
			delete(m.entries, p)
			removed++
		}
	}
	return removed, nil
}

func (m *MockFilesystemManager) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[path]; ok && e.dir {
		return fmt.Errorf("cannot write directory: %s", path)
	}
	m.mkdirAll(filepath.Dir(path))
	m.entries[path] = &mockEntry{content: bytes.Clone(data)}
	return nil
}

var _ film.FilesystemManager = (*MockFilesystemManager)(nil)
