package film

import (
	"fmt"
	"strings"
	"time"
)

// OverflowPolicy decides what happens to photos past position 59.
type OverflowPolicy string

const (
	// OverflowReject fails such photos with SequenceOverflow.
	OverflowReject OverflowPolicy = "reject"

	// OverflowCarry moves whole hours into the hour field, up to 23:59.
	OverflowCarry OverflowPolicy = "carry"
)

const (
	maxMinutePosition = 59
	maxCarryPosition  = 23*60 + 59
)

// ParseOverflowPolicy validates a configured policy name. Empty means reject.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch p := OverflowPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return OverflowReject, nil
	case OverflowReject, OverflowCarry:
		return p, nil
	}
	return "", fmt.Errorf("unknown overflow policy %q (want %q or %q)", s, OverflowReject, OverflowCarry)
}

// SyntheticTimestamp is the fabricated capture time of one photo.
type SyntheticTimestamp struct {
	// Value is an EXIF date-time, the sentinel, or "" when the roll has no shot date.
	Value string

	// Carried is set when the position did not fit the minute field.
	Carried bool
}

// Timestamper derives per-photo timestamps from a roll's shot date.
type Timestamper struct {
	policy OverflowPolicy
}

// NewTimestamper creates a Timestamper. An empty policy means reject.
func NewTimestamper(policy OverflowPolicy) *Timestamper {
	if policy == "" {
		policy = OverflowReject
	}
	return &Timestamper{policy: policy}
}

// Synthesize returns the shot date with its minute field set to the photo's position,
// so photos of a roll sort in order. A sentinel date comes back unchanged.
func (t *Timestamper) Synthesize(date CalendarDate, pos PhotoPosition) (SyntheticTimestamp, error) {
	if pos < 1 {
		return SyntheticTimestamp{}, fmt.Errorf("photo position %d: must be at least 1", pos)
	}
	if !date.Valid() {
		return SyntheticTimestamp{Value: date.String()}, nil
	}

	if pos <= maxMinutePosition {
		return SyntheticTimestamp{Value: date.Time().Add(minutes(pos)).Format(exifLayout)}, nil
	}
	if t.policy != OverflowCarry || pos > maxCarryPosition {
		return SyntheticTimestamp{}, fmt.Errorf("photo position %d: %w", pos, ErrSequenceOverflow)
	}
	return SyntheticTimestamp{
		Value:   date.Time().Add(minutes(pos)).Format(exifLayout),
		Carried: true,
	}, nil
}

func minutes(pos PhotoPosition) time.Duration {
	return time.Duration(pos) * time.Minute
}
