package film

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LegacyManifestName is the per-roll manifest file looked up next to the images.
const LegacyManifestName = "exif.txt"

// ManifestRecord holds the metadata shared by every photo of one roll.
// Fields absent from the manifest stay at their zero value.
// A record is built once by a parser and must not be modified afterwards.
type ManifestRecord struct {
	CameraMake  string
	CameraModel string
	Lens        string
	FilmStock   string
	ISO         int
	Location    string
	ShotDate    CalendarDate
	DevelopedBy string
	Developed   CalendarDate
	Exposures   int

	Filter  string
	Subject string
	Notes   string

	// RollNumber is the roll declared by a markdown manifest; 0 when undeclared.
	RollNumber int
}

// Camera returns make and model joined back together.
func (r *ManifestRecord) Camera() string {
	return strings.TrimSpace(r.CameraMake + " " + r.CameraModel)
}

// SplitCamera splits a camera description on its first whitespace run
// into make and model. Without whitespace the model is empty.
func SplitCamera(s string) (cameraMake, cameraModel string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, isSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' }

// ParseManifest parses legacy Key=Value manifest lines.
// Unrecognized keys are ignored. Malformed values degrade and are reported as warnings.
func ParseManifest(r io.Reader) (*ManifestRecord, []Warning, error) {
	rec := &ManifestRecord{}
	var warnings []Warning

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if w, ok := rec.set(key, value); !ok {
			w.Message = fmt.Sprintf("line %d: %s", lineNum, w.Message)
			warnings = append(warnings, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scanning manifest: %w", err)
	}
	return rec, warnings, nil
}

// set assigns one legacy key. It returns false with a warning when the value was malformed.
func (r *ManifestRecord) set(key, value string) (Warning, bool) {
	switch key {
	case "Camera":
		r.CameraMake, r.CameraModel = SplitCamera(value)
	case "Lens":
		r.Lens = value
	case "Film":
		r.FilmStock = value
	case "ISO":
		n, ok := parsePositive(value)
		if !ok {
			return malformed(key, value), false
		}
		r.ISO = n
	case "MajorityShotDate":
		r.ShotDate = ParseDate(value)
		if !r.ShotDate.Valid() {
			return malformed(key, value), false
		}
	case "Location", "ShotLocation":
		r.Location = value
	case "Developed":
		r.DevelopedBy = value
	case "DevelopedDate":
		r.Developed = ParseDate(value)
		if !r.Developed.Valid() {
			return malformed(key, value), false
		}
	case "Exposures":
		n, ok := parsePositive(value)
		if !ok {
			return malformed(key, value), false
		}
		r.Exposures = n
	case "Filter":
		r.Filter = value
	case "Subject":
		r.Subject = value
	case "Notes":
		r.Notes = value
	}
	return Warning{}, true
}

func malformed(key, value string) Warning {
	return Warning{
		Kind:    KindManifestFieldMalformed,
		Message: fmt.Sprintf("malformed %s value %q", key, value),
	}
}

// parsePositive parses a strictly positive decimal integer.
func parsePositive(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// WriteManifest serializes rec in the legacy Key=Value format.
// Only fields that are set are written, so parsing the output yields an equal record.
func WriteManifest(w io.Writer, rec *ManifestRecord) error {
	var b strings.Builder
	put := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s=%s\n", key, value)
		}
	}
	put("Camera", rec.Camera())
	put("Lens", rec.Lens)
	put("Filter", rec.Filter)
	put("Film", rec.FilmStock)
	if rec.ISO > 0 {
		put("ISO", strconv.Itoa(rec.ISO))
	}
	put("MajorityShotDate", rec.ShotDate.ManifestString())
	put("Subject", rec.Subject)
	put("ShotLocation", rec.Location)
	put("Developed", rec.DevelopedBy)
	put("DevelopedDate", rec.Developed.ManifestString())
	if rec.Exposures > 0 {
		put("Exposures", strconv.Itoa(rec.Exposures))
	}
	put("Notes", rec.Notes)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
