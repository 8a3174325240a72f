package film

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// FilmManifestName is the conventional name of a markdown film manifest.
const FilmManifestName = "film_manifest.md"

// rollStart marks the first line of a roll in a markdown film manifest.
// rollBullet is the looser prefix used to count roll bullets, so a bullet
// missing its colon is still counted and reported.
const (
	rollStart  = "- Filmstock:"
	rollBullet = "- Filmstock"
)

var (
	digitsPattern = regexp.MustCompile(`^\d+`)
	datePrefix    = regexp.MustCompile(`^[\d/\-]+`)
)

// markdownField describes how a "Label: value" line fills a record.
type markdownField struct {
	label string
	apply func(r *ManifestRecord, value string) bool
}

// markdownFields are matched in order; "Developed Date" precedes "Developed Location"
// and both are distinct labels, so the first label contained in a line wins.
var markdownFields = []markdownField{
	{"ISO", func(r *ManifestRecord, v string) bool {
		n, ok := parsePositive(digitsPattern.FindString(v))
		if ok {
			r.ISO = n
		}
		return ok
	}},
	{"Loaded Date", func(r *ManifestRecord, v string) bool {
		r.ShotDate = looseDate(v)
		return !r.ShotDate.IsSet() || r.ShotDate.Valid()
	}},
	{"Camera", func(r *ManifestRecord, v string) bool {
		r.CameraMake, r.CameraModel = SplitCamera(v)
		return true
	}},
	{"Lens", func(r *ManifestRecord, v string) bool { r.Lens = v; return true }},
	{"Filter", func(r *ManifestRecord, v string) bool { r.Filter = v; return true }},
	{"Notes", func(r *ManifestRecord, v string) bool { r.Notes = v; return true }},
	{"Subject", func(r *ManifestRecord, v string) bool { r.Subject = v; return true }},
	{"Shot Location", func(r *ManifestRecord, v string) bool { r.Location = v; return true }},
	{"Developed Date", func(r *ManifestRecord, v string) bool {
		r.Developed = looseDate(v)
		return !r.Developed.IsSet() || r.Developed.Valid()
	}},
	{"Developed Location", func(r *ManifestRecord, v string) bool { r.DevelopedBy = v; return true }},
	{"RollNum", func(r *ManifestRecord, v string) bool {
		n, err := strconv.Atoi(digitsPattern.FindString(v))
		if err != nil {
			return false
		}
		r.RollNumber = n
		return true
	}},
	{"Exposures", func(r *ManifestRecord, v string) bool {
		n, ok := parsePositive(digitsPattern.FindString(v))
		if ok {
			r.Exposures = n
		}
		return ok
	}},
}

// looseDate reads the leading date of a value such as "2023/09/12 (approx)".
func looseDate(v string) CalendarDate {
	if isUnknown(v) {
		return CalendarDate{}
	}
	prefix := datePrefix.FindString(strings.TrimSpace(v))
	if prefix == "" {
		return InvalidDate()
	}
	return ParseLooseDate(prefix)
}

func isUnknown(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "none", "unknown":
		return true
	}
	return false
}

// ParseFilmManifest parses a markdown film manifest describing many rolls.
// Each roll begins at a "- Filmstock:" bullet; the labelled lines that follow
// belong to it until the next bullet.
func ParseFilmManifest(r io.Reader) ([]*ManifestRecord, []Warning, error) {
	var (
		rolls     []*ManifestRecord
		current   *ManifestRecord
		warnings  []Warning
		bullets   int
		rollLines = map[int]int{}
	)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, rollBullet) {
			bullets++
			if !strings.HasPrefix(line, rollStart) {
				// The following fields belong to an unreadable roll, not the previous one.
				current = nil
				warnings = append(warnings, Warning{
					Kind:    KindManifestFieldMalformed,
					Message: fmt.Sprintf("line %d: roll bullet %q is missing its colon", lineNum, line),
				})
				continue
			}
			current = &ManifestRecord{FilmStock: strings.TrimSpace(strings.TrimPrefix(line, rollStart))}
			rolls = append(rolls, current)
			continue
		}
		if current == nil {
			continue
		}

		label, value, ok := splitLabel(line)
		if !ok {
			continue
		}
		for _, f := range markdownFields {
			if label != f.label {
				continue
			}
			if label == "RollNum" && current.RollNumber != 0 {
				warnings = append(warnings, Warning{
					Kind:    KindManifestFieldMalformed,
					Message: fmt.Sprintf("line %d: roll %s declares a second RollNum %q", lineNum, current.FilmStock, value),
				})
			}
			if !f.apply(current, value) {
				warnings = append(warnings, Warning{
					Kind:    KindManifestFieldMalformed,
					Message: fmt.Sprintf("line %d: malformed %s value %q", lineNum, label, value),
				})
			}
			if label == "RollNum" && current.RollNumber != 0 {
				if prev, dup := rollLines[current.RollNumber]; dup {
					warnings = append(warnings, Warning{
						Kind:    KindManifestFieldMalformed,
						Message: fmt.Sprintf("line %d: roll %d already declared on line %d", lineNum, current.RollNumber, prev),
					})
				} else {
					rollLines[current.RollNumber] = lineNum
				}
			}
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scanning film manifest: %w", err)
	}

	if len(rolls) != bullets {
		warnings = append(warnings, Warning{
			Kind:    KindManifestFieldMalformed,
			Message: fmt.Sprintf("parsed %d rolls but found %d %q bullets", len(rolls), bullets, rollBullet),
		})
	}
	for i, roll := range rolls {
		if roll.RollNumber == 0 {
			warnings = append(warnings, Warning{
				Kind:    KindManifestFieldMalformed,
				Message: fmt.Sprintf("roll %d (%s) has no RollNum and cannot be matched to images", i+1, roll.FilmStock),
			})
		}
	}

	return rolls, warnings, nil
}

// splitLabel splits "- Label: value" or "Label: value" into its parts.
func splitLabel(line string) (label, value string, ok bool) {
	line = strings.TrimLeft(line, "-* \t")
	label, value, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(label), strings.TrimSpace(value), true
}
