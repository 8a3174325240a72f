package encryption

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"

	"exifizer/internal/film"
)

// testHeader marks data "encrypted" by TestEncryptor.
var testHeader = []byte("EXIFENC\x00")

// TestEncryptor is a deterministic stand-in for age. It prepends a fixed
// header so ciphertext differs from the original scan and strips it again on
// decrypt.
type TestEncryptor struct {
	encrypted atomic.Int64
}

var _ film.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	e.encrypted.Add(1)
	return nil
}

// Encrypted reports how many payloads were encrypted.
func (e *TestEncryptor) Encrypted() int {
	return int(e.encrypted.Load())
}

func (e *TestEncryptor) Unlock(passphrase string) (film.DecryptionContext, error) {
	return &TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return true
}

// TestDecryptionContext strips the header added by TestEncryptor.
type TestDecryptionContext struct{}

var _ film.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
