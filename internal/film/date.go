package film

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// SentinelDate is written in place of a date that could not be parsed.
const SentinelDate = "0000:00:00 00:00:00"

// exifLayout is the EXIF date-time layout.
const exifLayout = "2006:01:02 15:04:05"

var manifestDatePattern = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)

// looseDateLayouts are tried in order by ParseLooseDate.
var looseDateLayouts = []string{
	"2006/01/02",
	"01/02/06",
	"01/02/2006",
	"2006-01-02",
	"02/01/06",
	"02/01/2006",
}

// dateState distinguishes an absent date from an unparseable one.
type dateState uint8

const (
	dateUnset dateState = iota
	dateValid
	dateInvalid
)

// CalendarDate is a day without a time of day, or the invalid sentinel, or unset.
// The zero value is unset.
type CalendarDate struct {
	year  int
	month time.Month
	day   int
	state dateState
}

// NewCalendarDate returns a valid date.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{year: year, month: month, day: day, state: dateValid}
}

// InvalidDate returns the sentinel date.
func InvalidDate() CalendarDate {
	return CalendarDate{state: dateInvalid}
}

// ParseDate parses a manifest date of the form YYYY/MM/DD.
// Anything else, including impossible calendar dates, yields the sentinel.
func ParseDate(s string) CalendarDate {
	s = strings.TrimSpace(s)
	if !manifestDatePattern.MatchString(s) {
		return InvalidDate()
	}
	t, err := time.Parse("2006/01/02", s)
	if err != nil {
		return InvalidDate()
	}
	return NewCalendarDate(t.Year(), t.Month(), t.Day())
}

// ParseLooseDate parses the free-form dates found in markdown film manifests.
// Empty, "None" and "Unknown" mean unset.
func ParseLooseDate(s string) CalendarDate {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "unknown":
		return CalendarDate{}
	}
	for _, layout := range looseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewCalendarDate(t.Year(), t.Month(), t.Day())
		}
	}
	return InvalidDate()
}

// IsSet reports whether the manifest declared the date at all.
func (d CalendarDate) IsSet() bool { return d.state != dateUnset }

// Valid reports whether the date parsed successfully.
func (d CalendarDate) Valid() bool { return d.state == dateValid }

// Time returns the date at midnight UTC. It is the zero time unless Valid.
func (d CalendarDate) Time() time.Time {
	if !d.Valid() {
		return time.Time{}
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// String returns "YYYY:MM:DD 00:00:00", the sentinel, or "" when unset.
func (d CalendarDate) String() string {
	switch d.state {
	case dateValid:
		return d.Time().Format(exifLayout)
	case dateInvalid:
		return SentinelDate
	default:
		return ""
	}
}

// ManifestString formats the date the way the legacy manifest stores it.
func (d CalendarDate) ManifestString() string {
	switch d.state {
	case dateValid:
		return fmt.Sprintf("%04d/%02d/%02d", d.year, int(d.month), d.day)
	case dateInvalid:
		return "Unknown"
	default:
		return ""
	}
}
