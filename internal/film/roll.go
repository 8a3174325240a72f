package film

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// rollJob is one roll directory with everything needed to process it.
type rollJob struct {
	dir          *Path
	files        []*Path
	manifest     *ManifestRecord
	manifestPath string
	manifestErr  error
	warnings     []Warning
	resolver     Resolver
	resolveErr   error
	writeSidecar bool
}

// applyRoll processes the files of one roll in name order. A manifest error
// aborts the roll before any file is touched; per-file errors are recorded
// and processing continues with the next file.
func (s *Service) applyRoll(ctx context.Context, runID string, job *rollJob, dryRun bool) *RollSummary {
	sum := &RollSummary{
		Dir:          job.dir.String(),
		ManifestPath: job.manifestPath,
		Files:        []FileOutcome{},
	}
	for _, w := range job.warnings {
		sum.warn(w)
	}

	if job.manifestErr != nil {
		sum.abort(job.manifestErr)
		s.logger.Error("roll aborted", "dir", sum.Dir, "error", job.manifestErr)
		return sum
	}

	if s.opts.RemoveThumbnails && !dryRun {
		n, err := s.fsmgr.RemoveThumbnails(job.dir)
		if err != nil {
			s.logger.Warn("removing thumbnails failed", "dir", sum.Dir, "error", err)
		} else if n > 0 {
			s.logger.Debug("thumbnails removed", "dir", sum.Dir, "count", n)
		}
	}

	if want := job.manifest.Exposures; want > 0 && want != len(job.files) {
		sum.warn(Warning{
			Kind:    KindManifestFieldMalformed,
			Path:    job.manifestPath,
			Message: fmt.Sprintf("manifest declares %d exposures but %d images were found", want, len(job.files)),
		})
	}

	if job.resolveErr != nil {
		for _, f := range job.files {
			sum.Files = append(sum.Files, s.fail(runID, f, 0, "", job.resolveErr, dryRun))
		}
		s.logger.Error("roll naming not recognized", "dir", sum.Dir, "error", job.resolveErr)
		return sum
	}
	sum.RollNumber = job.resolver.Roll().Number
	sum.Convention = job.resolver.Convention().String()

	s.logger.Info("roll started", "dir", sum.Dir, "roll", sum.RollNumber, "files", len(job.files))
	for i, f := range job.files {
		if ctx.Err() != nil {
			for _, rest := range job.files[i:] {
				sum.Files = append(sum.Files, s.skip(runID, rest, dryRun))
			}
			s.logger.Warn("roll interrupted", "dir", sum.Dir, "skipped", len(job.files)-i)
			break
		}

		outcome, plan := s.applyFile(ctx, runID, job, i, f, sum, dryRun)
		sum.Files = append(sum.Files, outcome)
		if dryRun && plan != nil {
			sum.Plans = append(sum.Plans, plan)
		}
	}

	if job.writeSidecar && !dryRun && sum.Succeeded() > 0 {
		if err := s.writeSidecar(job); err != nil {
			sum.warn(Warning{Kind: KindManifestFieldMalformed, Path: job.dir.String(), Message: err.Error()})
		}
	}

	s.logger.Info("roll finished", "dir", sum.Dir, "roll", sum.RollNumber,
		"succeeded", sum.Succeeded(), "failed", sum.Failed(), "skipped", sum.Skipped())
	return sum
}

// applyFile derives and applies the plan for the index-th file of a roll.
func (s *Service) applyFile(ctx context.Context, runID string, job *rollJob, index int, f *Path, sum *RollSummary, dryRun bool) (FileOutcome, *MetadataPlan) {
	pos, err := job.resolver.Photo(f.Name(), index)
	if err != nil {
		return s.fail(runID, f, 0, "", err, dryRun), nil
	}

	ts, err := s.stamper.Synthesize(job.manifest.ShotDate, pos)
	if err != nil {
		kind := KindFilenameConventionMismatch
		if errors.Is(err, ErrSequenceOverflow) {
			kind = KindSequenceOverflow
		}
		return s.fail(runID, f, pos, "", NewError(kind, f.String(), err), dryRun), nil
	}
	if ts.Carried {
		sum.warn(Warning{
			Kind:    KindSequenceOverflow,
			Path:    f.String(),
			Message: fmt.Sprintf("photo %d carried into the hour field (%s)", pos, ts.Value),
		})
	}

	// The in-flight file is finished even if the batch is interrupted meanwhile.
	fileCtx := context.WithoutCancel(ctx)

	scanner, err := s.tool.ReadScanner(fileCtx, f)
	if err != nil {
		s.logger.Debug("scanner metadata unavailable", "path", f.String(), "error", err)
	}

	plan := BuildPlan(PlanInput{
		Path:      f.String(),
		Manifest:  job.manifest,
		Roll:      job.resolver.Roll(),
		Photo:     pos,
		Timestamp: ts,
		Scanner:   scanner,
		Artist:    s.opts.Artist,
		Copyright: s.opts.Copyright,
	})
	if dryRun {
		return FileOutcome{
			Path:             f.String(),
			Photo:            int(pos),
			Status:           FilePlanned,
			DateTimeOriginal: ts.Value,
		}, plan
	}

	archived, err := s.archiveOriginal(f)
	if err != nil {
		return s.fail(runID, f, pos, ts.Value, NewError(KindArchiveFailure, f.String(), err), dryRun), plan
	}

	if err := s.tool.Apply(fileCtx, plan); err != nil {
		if KindOf(err) == "" {
			err = NewError(KindExternalToolFailure, f.String(), err)
		}
		outcome := s.fail(runID, f, pos, ts.Value, err, dryRun)
		return outcome, plan
	}

	outcome := FileOutcome{
		Path:             f.String(),
		Photo:            int(pos),
		Status:           FileApplied,
		DateTimeOriginal: ts.Value,
		ArchiveChecksum:  archived.checksum,
	}
	s.record(runID, outcome, job.resolver.Roll().Number, archived.encrypted)
	s.logger.Debug("metadata applied", "path", f.String(), "photo", pos, "date_time_original", ts.Value)
	return outcome, plan
}

// fail builds and records a failed outcome.
func (s *Service) fail(runID string, f *Path, pos PhotoPosition, dto string, err error, dryRun bool) FileOutcome {
	kind := KindOf(err)
	outcome := FileOutcome{
		Path:             f.String(),
		Photo:            int(pos),
		Status:           FileFailed,
		Kind:             kind,
		Message:          err.Error(),
		DateTimeOriginal: dto,
	}
	s.logger.Warn("file failed", "path", f.String(), "kind", kind, "error", err)
	if !dryRun {
		s.record(runID, outcome, 0, false)
	}
	return outcome
}

// skip builds and records an outcome for a file that was never started.
func (s *Service) skip(runID string, f *Path, dryRun bool) FileOutcome {
	outcome := FileOutcome{Path: f.String(), Status: FileSkipped, Message: "interrupted"}
	if !dryRun {
		s.record(runID, outcome, 0, false)
	}
	return outcome
}

// record stores an outcome in the run history. History is best effort:
// a database error never changes the outcome of a file.
func (s *Service) record(runID string, outcome FileOutcome, roll int, encrypted bool) {
	if s.database == nil {
		return
	}
	err := s.database.RecordFileResult(&FileResult{
		RunID:            runID,
		Path:             outcome.Path,
		RollNumber:       roll,
		PhotoNumber:      outcome.Photo,
		Status:           outcome.Status,
		ErrorKind:        outcome.Kind,
		Message:          outcome.Message,
		DateTimeOriginal: outcome.DateTimeOriginal,
		ArchiveChecksum:  outcome.ArchiveChecksum,
		ArchiveEncrypted: encrypted,
		CreatedAt:        s.clock.Now(),
	})
	if err != nil {
		s.logger.Error("recording file result failed", "path", outcome.Path, "error", err)
	}
}

// writeSidecar stores the roll's manifest next to its images so later
// single-roll runs reproduce it.
func (s *Service) writeSidecar(job *rollJob) error {
	var buf bytes.Buffer
	if err := WriteManifest(&buf, job.manifest); err != nil {
		return err
	}
	path := filepath.Join(job.dir.String(), LegacyManifestName)
	if err := s.fsmgr.WriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	s.logger.Debug("sidecar manifest written", "path", path)
	return nil
}
