package testutil

import (
	"crypto/sha256"
	"encoding/hex"

	"exifizer/internal/encryption"
	"exifizer/internal/vault"
)

// NewTestVault returns an empty in-memory archive.
func NewTestVault() *vault.MemoryVault {
	return vault.NewMemoryVault("test-archive")
}

// NewTestEncryptor returns the header-only encryptor, which needs no key files.
func NewTestEncryptor() *encryption.TestEncryptor {
	return encryption.NewTestEncryptor()
}

// ArchiveKey is the key an original with content data is archived under.
func ArchiveKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
