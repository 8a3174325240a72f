// Package exiftool writes film metadata by driving the exiftool command.
package exiftool

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rwcarlsen/goexif/exif"

	"exifizer/internal/config"
	"exifizer/internal/film"
)

// writeFlags are passed on every write: quiet, ignore minor errors and
// replace the file without keeping an _original copy.
var writeFlags = []string{"-q", "-q", "-m", "-overwrite_original"}

// Tool implements film.MetadataTool on top of exiftool.
type Tool struct {
	path        string
	configPath  string
	maxAttempts uint
	interval    time.Duration
	timeout     time.Duration
	runner      Runner
	logger      film.Logger
}

// New creates a Tool that runs exiftool through os/exec.
func New(cfg config.ExifToolConfig, logger film.Logger) *Tool {
	return NewWithRunner(cfg, ExecRunner{}, logger)
}

// NewWithRunner creates a Tool with a custom command runner.
func NewWithRunner(cfg config.ExifToolConfig, runner Runner, logger film.Logger) *Tool {
	if logger == nil {
		logger = film.NewNopLogger()
	}
	t := &Tool{
		path:        cfg.Path,
		configPath:  cfg.ConfigPath,
		maxAttempts: 1,
		interval:    time.Duration(cfg.RetryIntervalMS) * time.Millisecond,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		runner:      runner,
		logger:      logger,
	}
	if t.path == "" {
		t.path = "exiftool"
	}
	if cfg.MaxAttempts > 1 {
		t.maxAttempts = uint(cfg.MaxAttempts)
	}
	return t
}

// CheckPrerequisites verifies that the executable and the config file that
// defines the XMP-AnalogueData namespace are both present. It must pass
// before any batch starts.
func (t *Tool) CheckPrerequisites() error {
	if t.configPath == "" {
		return film.NewError(film.KindMissingPrerequisiteConfig, "",
			errors.New("exiftool config path is not set"))
	}
	info, err := os.Stat(t.configPath)
	if err != nil {
		return film.NewError(film.KindMissingPrerequisiteConfig, t.configPath,
			fmt.Errorf("exiftool config file: %w", err))
	}
	if info.IsDir() {
		return film.NewError(film.KindMissingPrerequisiteConfig, t.configPath,
			errors.New("exiftool config path is a directory"))
	}
	if _, err := t.runner.LookPath(t.path); err != nil {
		return film.NewError(film.KindMissingPrerequisiteConfig, t.path,
			fmt.Errorf("exiftool executable: %w", err))
	}
	return nil
}

// ReadScanner reads Make and Model from the scan. When exiftool cannot read
// them the EXIF block is decoded in-process instead.
func (t *Tool) ReadScanner(ctx context.Context, path *film.Path) (film.ScannerInfo, error) {
	out, err := t.run(ctx, "-config", t.configPath, "-s", "-s", "-Make", "-Model", path.String())
	if err == nil {
		if info := parseScanner(out); info.Make != "" || info.Model != "" {
			return info, nil
		}
	} else {
		t.logger.Debug("exiftool read failed, decoding exif in-process", "path", path.String(), "error", err)
	}

	info, decodeErr := decodeScanner(path.String())
	if decodeErr != nil {
		if err != nil {
			return film.ScannerInfo{}, errors.Join(err, decodeErr)
		}
		return film.ScannerInfo{}, decodeErr
	}
	return info, nil
}

// Apply writes every tag of plan into the image in place.
func (t *Tool) Apply(ctx context.Context, plan *film.MetadataPlan) error {
	args := make([]string, 0, len(plan.Tags)+len(writeFlags)+3)
	args = append(args, "-config", t.configPath)
	args = append(args, writeFlags...)
	args = append(args, plan.Args()...)
	args = append(args, plan.Path)

	if _, err := t.run(ctx, args...); err != nil {
		return film.NewError(film.KindExternalToolFailure, plan.Path, err)
	}
	return nil
}

// run executes exiftool with a per-attempt timeout. Timeouts and failures to
// start are retried; an exit status from exiftool is not.
func (t *Tool) run(ctx context.Context, args ...string) ([]byte, error) {
	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		callCtx := ctx
		if t.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, t.timeout)
			defer cancel()
		}

		out, err := t.runner.Run(callCtx, t.path, args...)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, backoff.Permanent(err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && callCtx.Err() == nil {
			return nil, backoff.Permanent(err)
		}
		t.logger.Debug("exiftool attempt failed", "attempt", attempt, "error", err)
		return nil, err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(t.interval)),
		backoff.WithMaxTries(t.maxAttempts),
	)
}

// parseScanner reads "Make: X" and "Model: Y" lines.
func parseScanner(out []byte) film.ScannerInfo {
	var info film.ScannerInfo
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Make":
			info.Make = value
		case "Model":
			info.Model = value
		}
	}
	return info
}

// decodeScanner reads Make and Model with goexif.
func decodeScanner(path string) (film.ScannerInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return film.ScannerInfo{}, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return film.ScannerInfo{}, fmt.Errorf("decoding exif: %w", err)
	}

	var info film.ScannerInfo
	if tag, err := x.Get(exif.Make); err == nil {
		info.Make, _ = tag.StringVal()
	}
	if tag, err := x.Get(exif.Model); err == nil {
		info.Model, _ = tag.StringVal()
	}
	info.Make = strings.TrimSpace(info.Make)
	info.Model = strings.TrimSpace(info.Model)
	if info.Make == "" && info.Model == "" {
		return film.ScannerInfo{}, errors.New("no make or model in exif")
	}
	return info, nil
}

// Compile-time check that Tool implements film.MetadataTool
var _ film.MetadataTool = (*Tool)(nil)
