package film

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Mode names how the rolls of a batch were found.
type Mode string

const (
	// ModeSingle treats one directory as one roll with its own exif.txt.
	ModeSingle Mode = "single"

	// ModeRecursive treats every directory with images below a base as a roll.
	ModeRecursive Mode = "recursive"

	// ModeFilmManifest matches roll directories to the rolls of a markdown manifest.
	ModeFilmManifest Mode = "film-manifest"
)

// ApplyRequest describes one batch.
type ApplyRequest struct {
	// ImagesDir is the roll directory, or the base directory of many rolls.
	ImagesDir string

	// Recursive processes every roll below ImagesDir.
	Recursive bool

	// ManifestPath overrides the exif.txt of a single roll.
	ManifestPath string

	// FilmManifest is a markdown manifest covering many rolls.
	FilmManifest string

	// DryRun computes plans without archiving, writing or recording anything.
	DryRun bool
}

// Mode returns how the request finds its rolls.
func (r ApplyRequest) Mode() Mode {
	switch {
	case r.FilmManifest != "":
		return ModeFilmManifest
	case r.Recursive:
		return ModeRecursive
	default:
		return ModeSingle
	}
}

// Apply processes a batch and returns its summary. Problems local to a file or
// a roll are reported in the summary; use BatchSummary.Err to decide the exit
// status. An error is returned only when the batch could not start.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*BatchSummary, error) {
	mode := req.Mode()
	if req.ManifestPath != "" && mode != ModeSingle {
		return nil, fmt.Errorf("a manifest override only applies to a single roll")
	}

	dir, err := s.fsmgr.Resolve(req.ImagesDir)
	if err != nil {
		return nil, fmt.Errorf("resolving images directory: %w", err)
	}
	if !dir.IsDir() {
		return nil, fmt.Errorf("images path is not a directory: %s", dir.String())
	}

	summary := &BatchSummary{Mode: string(mode), Source: dir.String(), DryRun: req.DryRun}

	var jobs []*rollJob
	switch mode {
	case ModeFilmManifest:
		summary.Source = req.FilmManifest
		jobs, err = s.filmManifestJobs(dir, req.FilmManifest, summary)
	case ModeRecursive:
		jobs, err = s.recursiveJobs(dir)
	default:
		jobs, err = s.singleJob(dir, req.ManifestPath)
	}
	if err != nil {
		return nil, err
	}

	if !req.DryRun {
		summary.RunID = s.idgen.New()
		if err := s.startRun(summary); err != nil {
			return nil, err
		}
	}

	s.logger.Info("batch started", "mode", mode, "source", summary.Source, "rolls", len(jobs), "dry_run", req.DryRun)
	summary.Rolls = s.runJobs(ctx, summary.RunID, jobs, req.DryRun)
	summary.Interrupted = ctx.Err() != nil && summary.Skipped() > 0

	if !req.DryRun {
		s.finishRun(summary)
	}
	s.logger.Info("batch finished", "succeeded", summary.Succeeded(), "failed", summary.Failed(), "skipped", summary.Skipped())
	return summary, nil
}

// runJobs applies rolls in parallel, bounded by the configured worker count.
// Files within a roll stay sequential.
func (s *Service) runJobs(ctx context.Context, runID string, jobs []*rollJob, dryRun bool) []*RollSummary {
	results := make([]*RollSummary, len(jobs))
	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = s.applyRoll(ctx, runID, job, dryRun)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Service) singleJob(dir *Path, manifestPath string) ([]*rollJob, error) {
	files, err := s.fsmgr.FindImages(dir)
	if err != nil {
		return nil, fmt.Errorf("finding images: %w", err)
	}
	if manifestPath == "" {
		manifestPath = filepath.Join(dir.String(), LegacyManifestName)
	} else if abs, err := filepath.Abs(manifestPath); err == nil {
		manifestPath = abs
	}
	return []*rollJob{s.legacyJob(dir, files, manifestPath)}, nil
}

func (s *Service) recursiveJobs(base *Path) ([]*rollJob, error) {
	dirs, err := s.fsmgr.FindDirectories(base)
	if err != nil {
		return nil, fmt.Errorf("finding roll directories: %w", err)
	}
	var jobs []*rollJob
	for _, d := range dirs {
		files, err := s.fsmgr.FindImages(d)
		if err != nil {
			return nil, fmt.Errorf("finding images in %s: %w", d.String(), err)
		}
		if len(files) == 0 {
			continue
		}
		jobs = append(jobs, s.legacyJob(d, files, filepath.Join(d.String(), LegacyManifestName)))
	}
	return jobs, nil
}

// legacyJob prepares a roll described by its own Key=Value manifest.
func (s *Service) legacyJob(dir *Path, files []*Path, manifestPath string) *rollJob {
	job := &rollJob{dir: dir, files: files, manifestPath: manifestPath}

	rec, warnings, err := s.readManifest(manifestPath)
	if err != nil {
		job.manifestErr = err
		return job
	}
	job.manifest = rec
	job.warnings = warnings
	job.resolver, job.resolveErr = NewResolver(s.opts.Convention, dir.Name(), names(files))
	return job
}

func (s *Service) filmManifestJobs(base *Path, manifestPath string, summary *BatchSummary) ([]*rollJob, error) {
	rolls, warnings, err := s.readFilmManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		summary.Warnings = append(summary.Warnings, w.String())
	}

	byNumber := make(map[int]*ManifestRecord, len(rolls))
	for _, r := range rolls {
		if _, dup := byNumber[r.RollNumber]; !dup && r.RollNumber != 0 {
			byNumber[r.RollNumber] = r
		}
	}

	dirs, err := s.fsmgr.FindDirectories(base)
	if err != nil {
		return nil, fmt.Errorf("finding roll directories: %w", err)
	}

	matched := make(map[int]bool)
	var jobs []*rollJob
	for _, d := range dirs {
		files, err := s.fsmgr.FindImages(d)
		if err != nil {
			return nil, fmt.Errorf("finding images in %s: %w", d.String(), err)
		}
		if len(files) == 0 {
			continue
		}

		job := &rollJob{dir: d, files: files, manifestPath: manifestPath, writeSidecar: s.opts.WriteSidecar}
		job.resolver, job.resolveErr = NewResolver(s.opts.Convention, d.Name(), names(files))
		if job.resolveErr != nil {
			job.manifest = &ManifestRecord{}
			jobs = append(jobs, job)
			continue
		}

		roll := job.resolver.Roll().Number
		rec, ok := byNumber[roll]
		if !ok {
			job.manifestErr = NewError(KindManifestMissing, d.String(),
				fmt.Errorf("roll %d is not described in %s", roll, manifestPath))
			jobs = append(jobs, job)
			continue
		}
		matched[roll] = true
		job.manifest = rec
		jobs = append(jobs, job)
	}

	for _, r := range rolls {
		if r.RollNumber != 0 && !matched[r.RollNumber] {
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("roll %d (%s) has no image directory", r.RollNumber, r.FilmStock))
		}
	}
	return jobs, nil
}

// readManifest reads a Key=Value manifest. A manifest that cannot be read is
// reported as ManifestMissing.
func (s *Service) readManifest(path string) (*ManifestRecord, []Warning, error) {
	p, err := s.fsmgr.Resolve(path)
	if err != nil {
		return nil, nil, NewError(KindManifestMissing, path, err)
	}
	r, err := s.fsmgr.Open(p)
	if err != nil {
		return nil, nil, NewError(KindManifestMissing, path, err)
	}
	defer r.Close()

	rec, warnings, err := ParseManifest(r)
	if err != nil {
		return nil, nil, NewError(KindManifestMissing, path, err)
	}
	for i := range warnings {
		warnings[i].Path = path
	}
	return rec, warnings, nil
}

// readFilmManifest reads a markdown manifest. A manifest that cannot be read
// is reported as ManifestMissing.
func (s *Service) readFilmManifest(path string) ([]*ManifestRecord, []Warning, error) {
	p, err := s.fsmgr.Resolve(path)
	if err != nil {
		return nil, nil, NewError(KindManifestMissing, path, err)
	}
	r, err := s.fsmgr.Open(p)
	if err != nil {
		return nil, nil, NewError(KindManifestMissing, path, err)
	}
	defer r.Close()

	rolls, warnings, err := ParseFilmManifest(r)
	if err != nil {
		return nil, nil, NewError(KindManifestMissing, path, err)
	}
	for i := range warnings {
		warnings[i].Path = path
	}
	return rolls, warnings, nil
}

func (s *Service) startRun(summary *BatchSummary) error {
	if s.database == nil {
		return nil
	}
	err := s.database.CreateRun(&Run{
		ID:        summary.RunID,
		Mode:      summary.Mode,
		Source:    summary.Source,
		StartedAt: s.clock.Now(),
		Status:    RunRunning,
	})
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

func (s *Service) finishRun(summary *BatchSummary) {
	if s.database == nil {
		return
	}
	status := RunSucceeded
	switch {
	case summary.Interrupted:
		status = RunInterrupted
	case summary.Err() != nil:
		status = RunFailed
	}
	err := s.database.FinishRun(summary.RunID, status, summary.Succeeded(), summary.Failed(), s.clock.Now())
	if err != nil {
		s.logger.Error("recording run result failed", "run", summary.RunID, "error", err)
	}
}

func names(files []*Path) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name()
	}
	return out
}
