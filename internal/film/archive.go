package film

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
)

type archiveResult struct {
	checksum  string
	encrypted bool
}

// archiveOriginal stores the untouched image in the vault, keyed by the SHA-256
// of its content. Without a vault it does nothing.
func (s *Service) archiveOriginal(f *Path) (archiveResult, error) {
	if s.vault == nil {
		return archiveResult{}, nil
	}

	checksum, size, err := s.checksum(f)
	if err != nil {
		return archiveResult{}, err
	}

	r, err := s.fsmgr.Open(f)
	if err != nil {
		return archiveResult{}, fmt.Errorf("opening original: %w", err)
	}
	defer r.Close()

	if !s.opts.Encrypt {
		if err := s.vault.PutContent(checksum, r, size); err != nil {
			return archiveResult{}, fmt.Errorf("uploading original: %w", err)
		}
		s.logger.Debug("original archived", "path", f.String(), "checksum", checksum)
		return archiveResult{checksum: checksum}, nil
	}

	if s.encryptor == nil {
		return archiveResult{}, fmt.Errorf("archive encryption is enabled but no encryptor is configured")
	}
	var ciphertext bytes.Buffer
	if err := s.encryptor.Encrypt(r, &ciphertext); err != nil {
		return archiveResult{}, fmt.Errorf("encrypting original: %w", err)
	}
	n := int64(ciphertext.Len())
	if err := s.vault.PutContent(checksum, &ciphertext, n); err != nil {
		return archiveResult{}, fmt.Errorf("uploading original: %w", err)
	}
	s.logger.Debug("original archived", "path", f.String(), "checksum", checksum, "encrypted", true)
	return archiveResult{checksum: checksum, encrypted: true}, nil
}

func (s *Service) checksum(f *Path) (string, int64, error) {
	r, err := s.fsmgr.Open(f)
	if err != nil {
		return "", 0, fmt.Errorf("opening original: %w", err)
	}
	defer r.Close()

	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", 0, fmt.Errorf("hashing original: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// RestoreOriginal fetches the most recently archived original of path.
// With inPlace the image itself is replaced; otherwise the original is written
// next to it as {name}.{checksum[:12]}.original. decryptCtx is required when the
// archived copy is encrypted. Returns the path written.
func (s *Service) RestoreOriginal(path string, inPlace bool, decryptCtx DecryptionContext) (string, error) {
	if s.vault == nil {
		return "", fmt.Errorf("no archive is configured")
	}
	if s.database == nil {
		return "", fmt.Errorf("no history database is configured")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	result, err := s.database.FindLatestArchive(absPath)
	if err != nil {
		return "", fmt.Errorf("finding archived original: %w", err)
	}
	if result == nil {
		return "", fmt.Errorf("no archived original for %s", absPath)
	}
	s.logger.Info("restore started", "path", absPath, "checksum", result.ArchiveChecksum)

	var content bytes.Buffer
	if result.ArchiveEncrypted {
		if decryptCtx == nil {
			return "", fmt.Errorf("archived original is encrypted but no passphrase was provided")
		}
		var ciphertext bytes.Buffer
		if err := s.vault.GetContent(result.ArchiveChecksum, &ciphertext); err != nil {
			return "", fmt.Errorf("retrieving original from archive: %w", err)
		}
		if err := decryptCtx.Decrypt(&ciphertext, &content); err != nil {
			return "", fmt.Errorf("decrypting original: %w", err)
		}
	} else if err := s.vault.GetContent(result.ArchiveChecksum, &content); err != nil {
		return "", fmt.Errorf("retrieving original from archive: %w", err)
	}

	sum := sha256.Sum256(content.Bytes())
	if got := hex.EncodeToString(sum[:]); got != result.ArchiveChecksum {
		return "", fmt.Errorf("archived original is corrupt: checksum %s, want %s", got, result.ArchiveChecksum)
	}

	outPath := absPath
	if !inPlace {
		outPath = buildRestorePath(absPath, result.ArchiveChecksum)
		if _, err := s.fsmgr.Resolve(outPath); err == nil {
			return "", fmt.Errorf("output file already exists: %s", outPath)
		}
	}
	if err := s.fsmgr.WriteFile(outPath, content.Bytes()); err != nil {
		return "", fmt.Errorf("writing restored original: %w", err)
	}

	s.logger.Info("file restored", "path", outPath)
	return outPath, nil
}

// buildRestorePath constructs the output path for a restored original.
// Format: {dir}/{basename}.{checksum[:12]}.original
func buildRestorePath(absPath, checksum string) string {
	short := checksum
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("%s.%s.original", absPath, short)
}
