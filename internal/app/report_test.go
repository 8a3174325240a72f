package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"exifizer/internal/film"

	"gopkg.in/yaml.v3"
)

func TestWritePlans(t *testing.T) {
	plans := []*film.MetadataPlan{{
		Path:  "/scans/00004423/000044230001.jpg",
		Roll:  4423,
		Photo: 1,
		Tags: []film.Tag{
			{Name: film.TagDateTimeOriginal, Value: "2023:09:12 00:01:00"},
			{Name: film.TagISO, Value: "1600"},
		},
	}}

	var buf bytes.Buffer
	if err := WritePlans(&buf, plans); err != nil {
		t.Fatalf("WritePlans() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"path: /scans/00004423/000044230001.jpg", "roll: 4423", "name: DateTimeOriginal", "value: \"1600\""} {
		if !strings.Contains(out, want) {
			t.Errorf("WritePlans() missing %q in:\n%s", want, out)
		}
	}
}

func TestWriteReport(t *testing.T) {
	summary := &film.BatchSummary{
		RunID:  "run-1",
		Mode:   "single",
		Source: "/scans/00004423",
		Rolls: []*film.RollSummary{{
			Dir:        "/scans/00004423",
			RollNumber: 4423,
			Files: []film.FileOutcome{
				{Path: "/scans/00004423/000044230001.jpg", Photo: 1, Status: film.FileApplied},
				{Path: "/scans/00004423/000044230002.jpg", Photo: 2, Status: film.FileFailed, Kind: film.KindExternalToolFailure, Message: "exit status 1"},
			},
		}},
	}

	path := filepath.Join(t.TempDir(), "reports", "run-1.yaml")
	if err := WriteReport(path, summary); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var got film.BatchSummary
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.RunID != "run-1" || len(got.Rolls) != 1 {
		t.Fatalf("report = %+v", got)
	}
	if got.Succeeded() != 1 || got.Failed() != 1 {
		t.Errorf("succeeded/failed = %d/%d, want 1/1", got.Succeeded(), got.Failed())
	}
	if got.Rolls[0].Files[1].Kind != film.KindExternalToolFailure {
		t.Errorf("Kind = %q", got.Rolls[0].Files[1].Kind)
	}
}
