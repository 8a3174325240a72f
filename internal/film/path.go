package film

import "path/filepath"

// Path is an absolute path that a FilesystemManager has checked to exist.
// Rolls and scans are only handled through Paths so tests can substitute an
// in-memory filesystem.
type Path struct {
	abs   string
	isDir bool
}

// NewPath wraps an absolute path. Only FilesystemManager implementations
// should call it.
func NewPath(abs string, isDir bool) *Path {
	return &Path{abs: abs, isDir: isDir}
}

func (p *Path) String() string { return p.abs }

// Name returns the base name, which is what naming conventions inspect.
func (p *Path) Name() string { return filepath.Base(p.abs) }

func (p *Path) IsDir() bool { return p.isDir }
