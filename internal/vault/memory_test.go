package vault

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryVault_PutAndGetContent(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	tests := []struct {
		name     string
		checksum string
		content  string
	}{
		{name: "store and retrieve a scan", checksum: "abc123", content: "\xff\xd8\xff\xe0 jpeg"},
		{name: "store empty content", checksum: "empty", content: ""},
		{name: "store large content", checksum: "large", content: strings.Repeat("x", 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := vault.PutContent(tt.checksum, strings.NewReader(tt.content), int64(len(tt.content))); err != nil {
				t.Fatalf("PutContent() error = %v", err)
			}

			var buf bytes.Buffer
			if err := vault.GetContent(tt.checksum, &buf); err != nil {
				t.Fatalf("GetContent() error = %v", err)
			}
			if got := buf.String(); got != tt.content {
				t.Errorf("GetContent() = %q, want %q", got, tt.content)
			}
		})
	}

	if vault.Len() != len(tests) {
		t.Errorf("Len() = %d, want %d", vault.Len(), len(tests))
	}
}

func TestMemoryVault_PutContentIdempotent(t *testing.T) {
	vault := NewMemoryVault("test-vault")
	content := "test content"

	for i := 0; i < 2; i++ {
		if err := vault.PutContent("sum", strings.NewReader(content), int64(len(content))); err != nil {
			t.Fatalf("PutContent() iteration %d error: %v", i+1, err)
		}
	}
	if vault.Len() != 1 {
		t.Errorf("Len() = %d, want 1", vault.Len())
	}
}

func TestMemoryVault_GetContentNotFound(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	var buf bytes.Buffer
	if err := vault.GetContent("nonexistent", &buf); err == nil {
		t.Error("GetContent() expected error for nonexistent checksum, got nil")
	}
}

func TestMemoryVault_PutContentSizeMismatch(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	if err := vault.PutContent("checksum", strings.NewReader("test"), 14); err == nil {
		t.Error("PutContent() expected error for size mismatch, got nil")
	}
	if vault.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after a rejected put", vault.Len())
	}
}

func TestMemoryVault_ValidateSetup(t *testing.T) {
	if err := NewMemoryVault("test-vault").ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() unexpected error: %v", err)
	}
}
