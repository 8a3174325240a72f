package film

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the summary can report them by category.
type ErrorKind string

const (
	// KindManifestMissing means no manifest could be read for a roll.
	// The roll is aborted before any file is touched.
	KindManifestMissing ErrorKind = "ManifestMissing"

	// KindManifestFieldMalformed means a manifest value could not be parsed.
	// The field degrades to the sentinel or stays unset.
	KindManifestFieldMalformed ErrorKind = "ManifestFieldMalformed"

	// KindFilenameConventionMismatch means a name matches no naming convention.
	KindFilenameConventionMismatch ErrorKind = "FilenameConventionMismatch"

	// KindSequenceOverflow means a photo position cannot be encoded in the minute field.
	KindSequenceOverflow ErrorKind = "SequenceOverflow"

	// KindExternalToolFailure means the metadata writer failed for a file.
	KindExternalToolFailure ErrorKind = "ExternalToolFailure"

	// KindMissingPrerequisiteConfig means the metadata tool is not usable at all.
	KindMissingPrerequisiteConfig ErrorKind = "MissingPrerequisiteConfig"

	// KindArchiveFailure means the original could not be archived, so the file was left alone.
	KindArchiveFailure ErrorKind = "ArchiveFailure"
)

var (
	// ErrInvalidName is returned when a directory or file name matches no naming convention.
	ErrInvalidName = errors.New("name matches no naming convention")

	// ErrSequenceOverflow is returned when a photo position exceeds the synthesizable range.
	ErrSequenceOverflow = errors.New("photo position exceeds synthesizable minute range")
)

// Error is a classified failure tied to a path.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Warning is a non-fatal condition recorded in a roll summary.
type Warning struct {
	Kind    ErrorKind
	Path    string
	Message string
}

func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Path, w.Message)
}
