package film

import (
	"time"

	"github.com/google/uuid"
)

// Logger receives progress from a Service. args are slog-style key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger drops everything.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}

// Clock stamps runs and file results.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator names runs.
type IDGenerator interface {
	New() string
}

// UUIDGenerator names runs with random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// Options tunes how a Service processes rolls.
type Options struct {
	// Overflow decides what happens to photos past position 59.
	Overflow OverflowPolicy

	// Convention forces a naming convention; ConventionAuto detects it per roll.
	Convention Convention

	// Workers bounds how many rolls are processed at once. Values below 1 mean 1.
	Workers int

	// RemoveThumbnails deletes .thm sidecars from roll directories before applying.
	RemoveThumbnails bool

	// WriteSidecar writes each markdown roll back as exif.txt in its directory.
	WriteSidecar bool

	// Encrypt archives originals encrypted. It requires an Encryptor.
	Encrypt bool

	// Artist and Copyright are written to every image when set.
	Artist    string
	Copyright string
}

// Service is the orchestration layer that turns manifests and roll directories
// into metadata writes for the CLI.
type Service struct {
	fsmgr     FilesystemManager
	tool      MetadataTool
	database  Database
	vault     Vault
	encryptor Encryptor
	logger    Logger
	clock     Clock
	idgen     IDGenerator
	opts      Options
	stamper   *Timestamper
}

// NewService creates a Service with the provided dependencies.
// database, vault and encryptor may be nil: without a database no history is
// recorded, and without a vault originals are not archived.
func NewService(fsmgr FilesystemManager, tool MetadataTool, database Database, vault Vault, encryptor Encryptor, logger Logger, clock Clock, idgen IDGenerator, opts Options) *Service {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	return &Service{
		fsmgr:     fsmgr,
		tool:      tool,
		database:  database,
		vault:     vault,
		encryptor: encryptor,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		opts:      opts,
		stamper:   NewTimestamper(opts.Overflow),
	}
}
