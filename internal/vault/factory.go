package vault

import (
	"context"
	"fmt"

	"exifizer/internal/config"
	"exifizer/internal/film"
)

// NewVaultFromConfig creates a Vault implementation based on the archive config type.
// Type "none" disables archiving and returns a nil Vault.
func NewVaultFromConfig(ctx context.Context, cfg config.ArchiveConfig) (film.Vault, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryVault("memory"), nil
	case "s3":
		v, err := NewS3VaultFromConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return v, nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem archive requires fs_root to be set")
		}
		v, err := NewFileSystemVault("filesystem", cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}
