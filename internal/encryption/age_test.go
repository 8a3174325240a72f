package encryption

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"exifizer/internal/config"
)

func newTestAgeEncryptor(t *testing.T) *AgeEncryptor {
	t.Helper()
	dir := t.TempDir()
	cfg := config.EncryptionConfig{
		PublicKeyPath:  filepath.Join(dir, "keys", "exifizer.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "exifizer.key"),
	}
	return NewAgeEncryptor(cfg)
}

func TestAgeEncryptor_BeforeSetup(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)

	if e.IsConfigured() {
		t.Error("IsConfigured() = true before Setup")
	}
	if err := e.Encrypt(bytes.NewReader([]byte("scan")), io.Discard); err == nil {
		t.Error("Encrypt() before Setup should return error")
	}
	if _, err := e.Unlock("passphrase"); err == nil {
		t.Error("Unlock() before Setup should return error")
	}
}

// TestAgeEncryptor_Originals seals several scan-like payloads with one key
// pair, since each Setup runs scrypt.
func TestAgeEncryptor_Originals(t *testing.T) {
	t.Parallel()

	const passphrase = "darkroom"
	e := newTestAgeEncryptor(t)
	if err := e.Setup(passphrase); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.IsConfigured() {
		t.Fatal("IsConfigured() = false after Setup")
	}
	if _, err := e.Unlock("wrong passphrase"); err == nil {
		t.Error("Unlock() with wrong passphrase should return error")
	}
	dc, err := e.Unlock(passphrase)
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	tests := []struct {
		name     string
		original []byte
	}{
		{name: "jpeg header", original: []byte{0xff, 0xd8, 0xff, 0xe1, 0x00, 0x18, 'E', 'x', 'i', 'f'}},
		{name: "tiff header", original: []byte{'I', 'I', 0x2a, 0x00, 0x08, 0x00, 0x00, 0x00}},
		{name: "empty", original: []byte{}},
		{name: "multi chunk scan", original: bytes.Repeat([]byte{0x10, 0x80, 0xff}, 40000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sealed bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.original), &sealed); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if len(tt.original) > 0 && bytes.Contains(sealed.Bytes(), tt.original) {
				t.Error("ciphertext contains the original")
			}

			var opened bytes.Buffer
			if err := dc.Decrypt(&sealed, &opened); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(opened.Bytes(), tt.original) {
				t.Errorf("Decrypt() = %d bytes, want %d", opened.Len(), len(tt.original))
			}
		})
	}
}

func TestAgeEncryptor_SetupRefusesExistingKeys(t *testing.T) {
	t.Parallel()

	e := newTestAgeEncryptor(t)
	if err := e.Setup("first"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	pub, err := os.ReadFile(e.publicKeyPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if err := e.Setup("second"); err == nil {
		t.Fatal("second Setup() should return error")
	}

	after, err := os.ReadFile(e.publicKeyPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(pub, after) {
		t.Error("public key was replaced by a second Setup")
	}
	if _, err := e.Unlock("first"); err != nil {
		t.Errorf("Unlock() with original passphrase error = %v", err)
	}
}

func TestAgeEncryptor_SetupEmptyPassphrase(t *testing.T) {
	t.Parallel()

	e := newTestAgeEncryptor(t)
	if err := e.Setup(""); err == nil {
		t.Error("Setup() with empty passphrase should return error")
	}
	if e.IsConfigured() {
		t.Error("IsConfigured() = true after failed Setup")
	}
}

func TestAgeEncryptor_PrivateKeyPermissions(t *testing.T) {
	t.Parallel()

	e := newTestAgeEncryptor(t)
	if err := e.Setup("passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	info, err := os.Stat(e.privateKeyPath)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("private key permissions = %v, want 0600", info.Mode().Perm())
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		want    string
		wantErr bool
	}{
		{name: "default is age", typ: "", want: "*encryption.AgeEncryptor"},
		{name: "age", typ: "age", want: "*encryption.AgeEncryptor"},
		{name: "test", typ: "test", want: "*encryption.TestEncryptor"},
		{name: "unknown", typ: "rot13", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: tt.typ})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEncryptorFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if gotType := fmt.Sprintf("%T", got); gotType != tt.want {
				t.Errorf("NewEncryptorFromConfig() type = %s, want %s", gotType, tt.want)
			}
		})
	}
}
