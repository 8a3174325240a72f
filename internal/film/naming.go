package film

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Convention identifies how a roll directory and its scans are named.
type Convention int

const (
	// ConventionAuto detects the convention from the roll's names.
	ConventionAuto Convention = iota

	// ConventionNumeric is a zero-padded numeric roll directory ("00004423")
	// holding scanner-named files ("000044230001.jpg"). Photo numbers follow
	// filename order because the embedded frame counter is not reliable.
	ConventionNumeric

	// ConventionRollPrefix is a "roll_4423" directory holding "4423_07.tif"
	// files. Photo numbers are parsed from the filename.
	ConventionRollPrefix
)

var (
	numericDirPattern    = regexp.MustCompile(`^\d+$`)
	numericFilePattern   = regexp.MustCompile(`^(\d{8})\d{4,}$`)
	rollPrefixDirPattern = regexp.MustCompile(`(?i)^roll_(\d+)$`)
	rollPrefixFile       = regexp.MustCompile(`^(\d+)_(\d{1,2})$`)
)

func (c Convention) String() string {
	switch c {
	case ConventionNumeric:
		return "numeric"
	case ConventionRollPrefix:
		return "roll-prefix"
	default:
		return "auto"
	}
}

// ParseConvention parses a convention name as accepted on the command line.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ConventionAuto, nil
	case "numeric", "a":
		return ConventionNumeric, nil
	case "roll-prefix", "roll", "b":
		return ConventionRollPrefix, nil
	}
	return ConventionAuto, fmt.Errorf("unknown naming convention %q", s)
}

// RollIdentity is the normalized number of a roll.
type RollIdentity struct {
	Number int
}

func (r RollIdentity) String() string {
	return strconv.Itoa(r.Number)
}

// PhotoPosition is the 1-based position of a photo within its roll.
type PhotoPosition int

// NormalizeRollNumber strips zero padding from a numeric roll name.
// "0000004423" and "4423" both normalize to 4423; an all-zero name is roll 0.
func NormalizeRollNumber(s string) (int, error) {
	if !numericDirPattern.MatchString(s) {
		return 0, fmt.Errorf("roll number %q: %w", s, ErrInvalidName)
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("roll number %q: %w", s, ErrInvalidName)
	}
	return n, nil
}

// Resolver maps the files of one roll to their roll and photo numbers.
// A Resolver is created once per roll directory.
type Resolver interface {
	Convention() Convention
	Roll() RollIdentity

	// Photo returns the position of fileName, which is the index-th (0-based)
	// file of the roll in name order.
	Photo(fileName string, index int) (PhotoPosition, error)
}

// NewResolver builds the resolver for a roll directory and the sorted names of
// its images. With ConventionAuto it tries the numeric convention first and
// the roll-prefix convention second, failing only when both fail. Files that
// all carry an "XXXX_YY" frame number select the roll-prefix convention even in
// an all-digit directory, so the frame number comes from the name.
func NewResolver(c Convention, dirName string, fileNames []string) (Resolver, error) {
	switch c {
	case ConventionNumeric:
		return newNumericResolver(dirName, fileNames)
	case ConventionRollPrefix:
		return newRollPrefixResolver(dirName, fileNames)
	}

	if allMatch(fileNames, rollPrefixFile) {
		if r, err := newRollPrefixResolver(dirName, fileNames); err == nil {
			return r, nil
		}
	}
	if r, err := newNumericResolver(dirName, fileNames); err == nil {
		return r, nil
	}
	if r, err := newRollPrefixResolver(dirName, fileNames); err == nil {
		return r, nil
	}
	return nil, NewError(KindFilenameConventionMismatch, dirName,
		fmt.Errorf("directory %q and its files: %w", dirName, ErrInvalidName))
}

type numericResolver struct {
	roll RollIdentity
}

func newNumericResolver(dirName string, fileNames []string) (*numericResolver, error) {
	if numericDirPattern.MatchString(dirName) {
		n, err := NormalizeRollNumber(dirName)
		if err != nil {
			return nil, NewError(KindFilenameConventionMismatch, dirName, err)
		}
		return &numericResolver{roll: RollIdentity{Number: n}}, nil
	}

	prefix, err := commonPrefix(fileNames, numericFilePattern)
	if err != nil {
		return nil, NewError(KindFilenameConventionMismatch, dirName, err)
	}
	n, err := NormalizeRollNumber(prefix)
	if err != nil {
		return nil, NewError(KindFilenameConventionMismatch, dirName, err)
	}
	return &numericResolver{roll: RollIdentity{Number: n}}, nil
}

func (r *numericResolver) Convention() Convention { return ConventionNumeric }
func (r *numericResolver) Roll() RollIdentity     { return r.roll }

func (r *numericResolver) Photo(fileName string, index int) (PhotoPosition, error) {
	if index < 0 {
		return 0, NewError(KindFilenameConventionMismatch, fileName,
			fmt.Errorf("negative file index %d", index))
	}
	return PhotoPosition(index + 1), nil
}

type rollPrefixResolver struct {
	roll RollIdentity
}

func newRollPrefixResolver(dirName string, fileNames []string) (*rollPrefixResolver, error) {
	if m := rollPrefixDirPattern.FindStringSubmatch(dirName); m != nil {
		n, err := NormalizeRollNumber(m[1])
		if err != nil {
			return nil, NewError(KindFilenameConventionMismatch, dirName, err)
		}
		return &rollPrefixResolver{roll: RollIdentity{Number: n}}, nil
	}

	prefix, err := commonPrefix(fileNames, rollPrefixFile)
	if err != nil {
		return nil, NewError(KindFilenameConventionMismatch, dirName, err)
	}
	n, err := NormalizeRollNumber(prefix)
	if err != nil {
		return nil, NewError(KindFilenameConventionMismatch, dirName, err)
	}
	return &rollPrefixResolver{roll: RollIdentity{Number: n}}, nil
}

func (r *rollPrefixResolver) Convention() Convention { return ConventionRollPrefix }
func (r *rollPrefixResolver) Roll() RollIdentity     { return r.roll }

func (r *rollPrefixResolver) Photo(fileName string, _ int) (PhotoPosition, error) {
	m := rollPrefixFile.FindStringSubmatch(stem(fileName))
	if m == nil {
		return 0, NewError(KindFilenameConventionMismatch, fileName,
			fmt.Errorf("file %q: %w", fileName, ErrInvalidName))
	}
	n, err := NormalizeRollNumber(m[2])
	if err != nil {
		return 0, NewError(KindFilenameConventionMismatch, fileName, err)
	}
	return PhotoPosition(n), nil
}

// commonPrefix returns the first capture group of pattern, which every
// file stem must match and agree on.
func commonPrefix(fileNames []string, pattern *regexp.Regexp) (string, error) {
	if len(fileNames) == 0 {
		return "", fmt.Errorf("no files to infer a roll from: %w", ErrInvalidName)
	}
	var prefix string
	for _, name := range fileNames {
		m := pattern.FindStringSubmatch(stem(name))
		if m == nil {
			return "", fmt.Errorf("file %q: %w", name, ErrInvalidName)
		}
		if prefix == "" {
			prefix = m[1]
			continue
		}
		if m[1] != prefix {
			return "", fmt.Errorf("file %q belongs to roll %s, not %s: %w", name, m[1], prefix, ErrInvalidName)
		}
	}
	return prefix, nil
}

func allMatch(fileNames []string, pattern *regexp.Regexp) bool {
	if len(fileNames) == 0 {
		return false
	}
	for _, name := range fileNames {
		if !pattern.MatchString(stem(name)) {
			return false
		}
	}
	return true
}

func stem(name string) string {
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
