package film

import (
	"strconv"
	"strings"
)

const (
	// FilmFormat is written for every photo.
	FilmFormat = "35mm"

	// FilmDeveloper is the developer chemistry, which manifests do not record.
	FilmDeveloper = "Unknown"

	// UnknownScannerMake and UnknownScannerModel replace scanner values that could not be read.
	UnknownScannerMake  = "Unknown Make"
	UnknownScannerModel = "Unknown Model"

	analogueNS = "XMP-AnalogueData:"
)

// Tag names handed to the metadata tool.
const (
	TagMake              = "Make"
	TagModel             = "Model"
	TagLensModel         = "LensModel"
	TagISO               = "ISO"
	TagDateTimeOriginal  = "DateTimeOriginal"
	TagLocation          = "Location"
	TagLocationCreated   = "LocationCreated"
	TagCity              = "City"
	TagSubject           = "Subject"
	TagDescription       = "Description"
	TagImageDescription  = "ImageDescription"
	TagCaptionAbstract   = "Caption-Abstract"
	TagKeywords          = "Keywords"
	TagUserComment       = "UserComment"
	TagSpecialInstr      = "SpecialInstructions"
	TagArtist            = "Artist"
	TagCopyright         = "Copyright"
	TagFilter            = analogueNS + "Filter"
	TagFilmStock         = analogueNS + "FilmStock"
	TagFilmFormat        = analogueNS + "FilmFormat"
	TagFilmDeveloper     = analogueNS + "FilmDeveloper"
	TagFilmProcessLab    = analogueNS + "FilmProcessLab"
	TagFilmScanner       = analogueNS + "FilmScanner"
	TagFilmProcessedDate = analogueNS + "FilmProcessedDate"
	TagRollNum           = analogueNS + "RollNum"
	TagPhotoNumber       = analogueNS + "PhotoNumber"
	TagAnalogueSubject   = analogueNS + "Subject"
	TagAnalogueNotes     = analogueNS + "Notes"
)

// ScannerInfo is the scanner make and model found in an image before it is rewritten.
type ScannerInfo struct {
	Make  string
	Model string
}

// OrUnknown fills empty fields with the unknown placeholders.
func (s ScannerInfo) OrUnknown() ScannerInfo {
	if strings.TrimSpace(s.Make) == "" {
		s.Make = UnknownScannerMake
	}
	if strings.TrimSpace(s.Model) == "" {
		s.Model = UnknownScannerModel
	}
	return s
}

func (s ScannerInfo) String() string {
	return strings.TrimSpace(s.Make + " " + s.Model)
}

// Tag is one metadata assignment.
type Tag struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// MetadataPlan is the ordered list of tag assignments for one image.
type MetadataPlan struct {
	Path  string `yaml:"path"`
	Roll  int    `yaml:"roll"`
	Photo int    `yaml:"photo"`
	Tags  []Tag  `yaml:"tags"`
}

// Get returns the first value assigned to name.
func (p *MetadataPlan) Get(name string) (string, bool) {
	for _, t := range p.Tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// Values returns every value assigned to name, in order.
func (p *MetadataPlan) Values(name string) []string {
	var values []string
	for _, t := range p.Tags {
		if t.Name == name {
			values = append(values, t.Value)
		}
	}
	return values
}

// Args renders the assignments as metadata tool arguments.
func (p *MetadataPlan) Args() []string {
	args := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		args = append(args, "-"+t.Name+"="+t.Value)
	}
	return args
}

// PlanInput is everything a plan is derived from.
type PlanInput struct {
	Path      string
	Manifest  *ManifestRecord
	Roll      RollIdentity
	Photo     PhotoPosition
	Timestamp SyntheticTimestamp
	Scanner   ScannerInfo

	// Artist and Copyright credit the photographer on every image.
	Artist    string
	Copyright string
}

// BuildPlan assembles the tag assignments for one image. It only reads its input,
// so the same input always yields the same plan. Fields the manifest leaves
// unset produce no tag.
func BuildPlan(in PlanInput) *MetadataPlan {
	rec := in.Manifest
	if rec == nil {
		rec = &ManifestRecord{}
	}
	plan := &MetadataPlan{
		Path:  in.Path,
		Roll:  in.Roll.Number,
		Photo: int(in.Photo),
	}
	add := func(name, value string) {
		if value != "" {
			plan.Tags = append(plan.Tags, Tag{Name: name, Value: value})
		}
	}
	iso := ""
	if rec.ISO > 0 {
		iso = strconv.Itoa(rec.ISO)
	}

	add(TagMake, rec.CameraMake)
	add(TagModel, rec.CameraModel)
	add(TagLensModel, rec.Lens)
	add(TagISO, iso)
	add(TagDateTimeOriginal, in.Timestamp.Value)
	add(TagArtist, in.Artist)
	add(TagCopyright, in.Copyright)

	add(TagLocation, rec.Location)
	add(TagLocationCreated, rec.Location)
	add(TagCity, rec.Location)
	add(TagSubject, rec.Subject)
	add(TagDescription, rec.Notes)
	add(TagImageDescription, rec.Notes)
	add(TagCaptionAbstract, rec.Notes)
	add(TagUserComment, userComment(rec, iso))
	add(TagSpecialInstr, developedNote(rec))

	add(TagKeywords, "Film Photography")
	add(TagKeywords, rec.FilmStock)
	add(TagKeywords, rec.Camera())
	add(TagKeywords, "Roll "+in.Roll.String())

	add(TagFilter, rec.Filter)
	add(TagFilmStock, rec.FilmStock)
	add(TagFilmFormat, FilmFormat)
	add(TagFilmDeveloper, FilmDeveloper)
	add(TagFilmProcessLab, rec.DevelopedBy)
	add(TagFilmScanner, in.Scanner.OrUnknown().String())
	add(TagFilmProcessedDate, rec.Developed.String())
	add(TagRollNum, in.Roll.String())
	add(TagPhotoNumber, strconv.Itoa(int(in.Photo)))
	add(TagAnalogueSubject, rec.Subject)
	add(TagAnalogueNotes, rec.Notes)

	return plan
}

// userComment summarizes the film as "Film: <stock>, ISO <iso>, <lens>",
// leaving out the parts the manifest does not set.
func userComment(rec *ManifestRecord, iso string) string {
	var parts []string
	if rec.FilmStock != "" {
		parts = append(parts, "Film: "+rec.FilmStock)
	}
	if iso != "" {
		parts = append(parts, "ISO "+iso)
	}
	if rec.Lens != "" {
		parts = append(parts, rec.Lens)
	}
	return strings.Join(parts, ", ")
}

// developedNote reads "Developed at <lab> on <date>".
func developedNote(rec *ManifestRecord) string {
	var b strings.Builder
	if rec.DevelopedBy != "" {
		b.WriteString(" at " + rec.DevelopedBy)
	}
	if d := rec.Developed.ManifestString(); d != "" {
		b.WriteString(" on " + d)
	}
	if b.Len() == 0 {
		return ""
	}
	return "Developed" + b.String()
}
