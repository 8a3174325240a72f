package film

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), ""},
		{"classified", NewError(KindManifestMissing, "/scans/exif.txt", errors.New("no such file")), KindManifestMissing},
		{"wrapped", fmt.Errorf("roll: %w", NewError(KindSequenceOverflow, "", ErrSequenceOverflow)), KindSequenceOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewError(KindFilenameConventionMismatch, "IMG_0001.jpg", fmt.Errorf("file: %w", ErrInvalidName))
	if !errors.Is(err, ErrInvalidName) {
		t.Error("errors.Is(err, ErrInvalidName) = false")
	}
	if want := "FilenameConventionMismatch: IMG_0001.jpg: file: " + ErrInvalidName.Error(); err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWarning_String(t *testing.T) {
	w := Warning{Kind: KindManifestFieldMalformed, Message: "line 3: ISO"}
	if got := w.String(); got != "ManifestFieldMalformed: line 3: ISO" {
		t.Errorf("String() = %q", got)
	}
	w.Path = "/scans/exif.txt"
	if got := w.String(); got != "ManifestFieldMalformed: /scans/exif.txt: line 3: ISO" {
		t.Errorf("String() = %q", got)
	}
}
