package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"exifizer/internal/film"

	"gopkg.in/yaml.v3"
)

// WritePlans encodes the plans of a dry run as a YAML document.
func WritePlans(w io.Writer, plans []*film.MetadataPlan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plans); err != nil {
		return fmt.Errorf("encoding plans: %w", err)
	}
	return enc.Close()
}

// WriteReport writes the batch summary as YAML to path, replacing any
// previous report.
func WriteReport(path string, summary *film.BatchSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
