package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"exifizer/internal/config"
	"exifizer/internal/database"
	"exifizer/internal/encryption"
	"exifizer/internal/exiftool"
	"exifizer/internal/film"
	"exifizer/internal/fs"
	"exifizer/internal/vault"
)

// Options tunes how the App reports progress.
type Options struct {
	// Verbose sends DEBUG records to stderr as well as the log file.
	Verbose bool

	// Stderr receives log output. Defaults to os.Stderr.
	Stderr io.Writer
}

// App is the application layer between the CLI and film.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the DB lifecycle on Close.
type App struct {
	cfg       *config.Config
	db        film.Database
	vault     film.Vault
	encryptor film.Encryptor
	tool      *exiftool.Tool
	service   *film.Service
	logFile   *os.File
}

// New creates a fully wired App from the given config.
// The caller must call Close when done.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	serviceOpts, err := serviceOptions(cfg)
	if err != nil {
		return nil, err
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID, opts.Stderr, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	flog := &slogAdapter{l: logger}

	a := &App{cfg: cfg, logFile: logFile}
	success := false
	defer func() {
		if !success {
			a.Close()
		}
	}()

	a.db, err = database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	a.vault, err = vault.NewVaultFromConfig(ctx, cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	if a.vault != nil {
		if err := a.vault.ValidateSetup(); err != nil {
			return nil, fmt.Errorf("archive not ready: %w", err)
		}
	}

	a.encryptor, err = encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if cfg.Archive.Encrypt && a.vault != nil && !a.encryptor.IsConfigured() {
		return nil, fmt.Errorf("archive encryption is enabled but no key pair exists: run 'exifizer keys init'")
	}

	fsmgr := fs.NewOSFilesystemManager(cfg.Batch.Extensions, cfg.Filesystem.Ignore)
	a.tool = exiftool.New(cfg.ExifTool, flog)

	// The service treats nil components as absent, so pass untyped nils.
	var (
		v   film.Vault
		enc film.Encryptor
	)
	if a.vault != nil {
		v = a.vault
		enc = a.encryptor
	}
	a.service = film.NewService(fsmgr, a.tool, a.db, v, enc, flog, film.RealClock{}, film.UUIDGenerator{}, serviceOpts)

	success = true
	return a, nil
}

// serviceOptions translates the batch section of cfg.
func serviceOptions(cfg *config.Config) (film.Options, error) {
	overflow, err := film.ParseOverflowPolicy(cfg.Batch.Overflow)
	if err != nil {
		return film.Options{}, fmt.Errorf("batch.overflow: %w", err)
	}
	convention, err := film.ParseConvention(cfg.Batch.Convention)
	if err != nil {
		return film.Options{}, fmt.Errorf("batch.convention: %w", err)
	}
	return film.Options{
		Overflow:         overflow,
		Convention:       convention,
		Workers:          cfg.Batch.Workers,
		RemoveThumbnails: cfg.Batch.RemoveThumbnails,
		WriteSidecar:     cfg.Batch.WriteSidecar,
		Encrypt:          cfg.Archive.Encrypt,
		Artist:           cfg.Batch.Artist,
		Copyright:        cfg.Batch.Copyright,
	}, nil
}

// CheckPrerequisites verifies that exiftool and its config file are available.
func (a *App) CheckPrerequisites() error {
	return a.tool.CheckPrerequisites()
}

// Apply writes metadata for every roll the request names. Prerequisites are
// checked before any file is touched.
func (a *App) Apply(ctx context.Context, req film.ApplyRequest) (*film.BatchSummary, error) {
	if err := a.CheckPrerequisites(); err != nil {
		return nil, err
	}
	req.DryRun = false
	return a.service.Apply(ctx, req)
}

// Plan computes the metadata plans for a request without writing anything.
// exiftool is only read from, so a missing install degrades scanner fields
// instead of failing.
func (a *App) Plan(ctx context.Context, req film.ApplyRequest) (*film.BatchSummary, error) {
	req.DryRun = true
	return a.service.Apply(ctx, req)
}

// GetHistory returns the most recent apply runs.
func (a *App) GetHistory(limit int) ([]*film.Run, error) {
	return a.service.GetHistory(limit)
}

// GetFileLog returns the recorded outcomes for one image.
func (a *App) GetFileLog(rawPath string) ([]*film.FileResult, error) {
	return a.service.GetFileLog(rawPath)
}

// ArchiveEncrypted reports whether originals are archived encrypted, in which
// case restoring needs the key passphrase.
func (a *App) ArchiveEncrypted() bool {
	return a.vault != nil && a.cfg.Archive.Encrypt
}

// Restore fetches the archived original of rawPath. passphrase unlocks the
// private key and may be empty for plaintext archives. Returns the path written.
func (a *App) Restore(rawPath string, inPlace bool, passphrase string) (string, error) {
	var dc film.DecryptionContext
	if passphrase != "" {
		var err error
		dc, err = a.encryptor.Unlock(passphrase)
		if err != nil {
			return "", fmt.Errorf("unlocking private key: %w", err)
		}
	}
	return a.service.RestoreOriginal(rawPath, inPlace, dc)
}

// Close closes the database and the log file.
func (a *App) Close() error {
	var firstErr error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// InitKeys generates the archive key pair protected by passphrase.
func InitKeys(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}
	return nil
}
