package film

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
)

// FileOutcome is what happened to one image.
type FileOutcome struct {
	Path             string     `yaml:"path"`
	Photo            int        `yaml:"photo,omitempty"`
	Status           FileStatus `yaml:"status"`
	Kind             ErrorKind  `yaml:"kind,omitempty"`
	Message          string     `yaml:"message,omitempty"`
	DateTimeOriginal string     `yaml:"date_time_original,omitempty"`
	ArchiveChecksum  string     `yaml:"archive_checksum,omitempty"`
}

// RollSummary aggregates the outcomes of one roll.
type RollSummary struct {
	Dir          string          `yaml:"dir"`
	RollNumber   int             `yaml:"roll"`
	Convention   string          `yaml:"convention,omitempty"`
	ManifestPath string          `yaml:"manifest,omitempty"`
	Aborted      bool            `yaml:"aborted,omitempty"`
	AbortKind    ErrorKind       `yaml:"abort_kind,omitempty"`
	AbortReason  string          `yaml:"abort_reason,omitempty"`
	Files        []FileOutcome   `yaml:"files"`
	Warnings     []string        `yaml:"warnings,omitempty"`
	Plans        []*MetadataPlan `yaml:"plans,omitempty"`

	abortErr error
}

func (r *RollSummary) abort(err error) {
	r.Aborted = true
	r.AbortKind = KindOf(err)
	r.AbortReason = err.Error()
	r.abortErr = err
}

func (r *RollSummary) warn(w Warning) {
	r.Warnings = append(r.Warnings, w.String())
}

func (r *RollSummary) count(status FileStatus) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Succeeded returns how many images were written.
func (r *RollSummary) Succeeded() int { return r.count(FileApplied) }

// Failed returns how many images failed.
func (r *RollSummary) Failed() int { return r.count(FileFailed) }

// Skipped returns how many images were never started.
func (r *RollSummary) Skipped() int { return r.count(FileSkipped) }

// Planned returns how many plans a dry run computed.
func (r *RollSummary) Planned() int { return r.count(FilePlanned) }

// BatchSummary aggregates every roll of one run.
type BatchSummary struct {
	RunID       string         `yaml:"run_id,omitempty"`
	Mode        string         `yaml:"mode"`
	Source      string         `yaml:"source"`
	DryRun      bool           `yaml:"dry_run,omitempty"`
	Interrupted bool           `yaml:"interrupted,omitempty"`
	Warnings    []string       `yaml:"warnings,omitempty"`
	Rolls       []*RollSummary `yaml:"rolls"`
}

// Succeeded returns how many images were written across all rolls.
func (b *BatchSummary) Succeeded() int {
	n := 0
	for _, r := range b.Rolls {
		n += r.Succeeded()
	}
	return n
}

// Failed returns how many images failed across all rolls.
func (b *BatchSummary) Failed() int {
	n := 0
	for _, r := range b.Rolls {
		n += r.Failed()
	}
	return n
}

// Skipped returns how many images were never started across all rolls.
func (b *BatchSummary) Skipped() int {
	n := 0
	for _, r := range b.Rolls {
		n += r.Skipped()
	}
	return n
}

// Planned returns how many plans a dry run computed across all rolls.
func (b *BatchSummary) Planned() int {
	n := 0
	for _, r := range b.Rolls {
		n += r.Planned()
	}
	return n
}

// Plans returns the computed plans of a dry run in roll order.
func (b *BatchSummary) Plans() []*MetadataPlan {
	var plans []*MetadataPlan
	for _, r := range b.Rolls {
		plans = append(plans, r.Plans...)
	}
	return plans
}

// Err reports whether the run should exit unsuccessfully: a roll was aborted,
// the run was interrupted, or every attempted image failed.
func (b *BatchSummary) Err() error {
	for _, r := range b.Rolls {
		if r.Aborted {
			return r.abortErr
		}
	}
	if b.Interrupted {
		return fmt.Errorf("interrupted with %d files not started: %w", b.Skipped(), context.Canceled)
	}
	if failed := b.Failed(); failed > 0 && b.Succeeded()+b.Planned() == 0 {
		return fmt.Errorf("all %d attempted files failed", failed)
	}
	return nil
}

// WriteText prints a human readable summary.
func (b *BatchSummary) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}
	for _, r := range b.Rolls {
		name := filepath.Base(r.Dir)
		if r.Aborted {
			ew.printf("roll %s: aborted: %s\n", name, r.AbortReason)
			continue
		}
		if b.DryRun {
			ew.printf("roll %s (#%d): %d planned, %d failed\n", name, r.RollNumber, r.Planned(), r.Failed())
		} else {
			ew.printf("roll %s (#%d): %d succeeded, %d failed, %d skipped\n",
				name, r.RollNumber, r.Succeeded(), r.Failed(), r.Skipped())
		}
		for _, f := range r.Files {
			if f.Status == FileFailed {
				ew.printf("  %s: %s: %s\n", filepath.Base(f.Path), f.Kind, f.Message)
			}
		}
		for _, warning := range r.Warnings {
			ew.printf("  warning: %s\n", warning)
		}
	}
	for _, warning := range b.Warnings {
		ew.printf("warning: %s\n", warning)
	}
	ew.printf("total: %d succeeded, %d failed, %d skipped\n", b.Succeeded(), b.Failed(), b.Skipped())
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
