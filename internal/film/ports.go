package film

import (
	"context"
	"io"
)

// FilesystemManager is everything the Service reads from or writes to disk.
type FilesystemManager interface {
	// Resolve makes rawPath absolute and fails unless it is an existing
	// regular file or directory.
	Resolve(rawPath string) (*Path, error)

	Open(path *Path) (io.ReadCloser, error)

	// FindImages lists the scans directly inside dir in name order, leaving
	// out ignored files and unknown extensions.
	FindImages(dir *Path) ([]*Path, error)

	// FindDirectories lists base and every directory below it.
	FindDirectories(base *Path) ([]*Path, error)

	// RemoveThumbnails deletes the .thm files directly inside dir.
	RemoveThumbnails(dir *Path) (int, error)

	// WriteFile replaces path with data so readers never see a partial file.
	WriteFile(path string, data []byte) error
}

// MetadataTool reads and writes image metadata.
type MetadataTool interface {
	// ReadScanner returns the make and model the scanner recorded.
	ReadScanner(ctx context.Context, path *Path) (ScannerInfo, error)

	// Apply writes every tag of plan into the image in place.
	Apply(ctx context.Context, plan *MetadataPlan) error
}

// Vault keeps originals before they are rewritten, keyed by the SHA-256 of
// the plaintext. Content is streamed; TIFF scans can be large.
type Vault interface {
	// PutContent stores size bytes read from r. Storing a key twice is not an error.
	PutContent(checksum string, r io.Reader, size int64) error

	GetContent(checksum string, w io.Writer) error

	// ValidateSetup checks the vault can be reached before a batch starts.
	ValidateSetup() error
}

// Encryptor seals archived originals to a public key.
type Encryptor interface {
	// Setup creates the key pair, sealing the private key with passphrase.
	Setup(passphrase string) error

	// Encrypt needs only the public key.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock opens the private key. A wrong passphrase is an error.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether both key files exist.
	IsConfigured() bool
}

// DecryptionContext is an unlocked private key, held for one restore.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
