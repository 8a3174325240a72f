package vault

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"exifizer/internal/film"
)

// FileSystemVault stores archived originals as files sharded by checksum prefix:
//
//	<root>/
//	  originals/
//	    <checksum[:2]>/
//	      <checksum>
type FileSystemVault struct {
	name        string
	root        string
	originalDir string
}

// NewFileSystemVault creates a filesystem vault rooted at root.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	originalDir := filepath.Join(root, "originals")
	if err := os.MkdirAll(originalDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create originals directory: %w", err)
	}
	return &FileSystemVault{name: name, root: root, originalDir: originalDir}, nil
}

func (v *FileSystemVault) contentPath(checksum string) string {
	shard := checksum
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return filepath.Join(v.originalDir, shard, checksum)
}

// PutContent stores content identified by its checksum.
// Existing content is left alone; r is still drained and its size checked.
func (v *FileSystemVault) PutContent(checksum string, r io.Reader, size int64) error {
	if checksum == "" {
		return fmt.Errorf("empty checksum")
	}
	destPath := v.contentPath(checksum)

	if _, err := os.Stat(destPath); err == nil {
		written, err := io.Copy(io.Discard, r)
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}
		if written != size {
			return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create shard directory: %w", err)
	}
	return writeAtomic(destPath, r, size)
}

// GetContent retrieves content by checksum and writes it to w.
func (v *FileSystemVault) GetContent(checksum string, w io.Writer) error {
	f, err := os.Open(v.contentPath(checksum))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("content not found: %s", checksum)
		}
		return fmt.Errorf("failed to open content: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the vault directories exist.
func (v *FileSystemVault) ValidateSetup() error {
	for _, dir := range []string{v.root, v.originalDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeAtomic copies r into destPath through a temp file in the same directory.
func writeAtomic(destPath string, r io.Reader, expectedSize int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemVault implements film.Vault
var _ film.Vault = (*FileSystemVault)(nil)
