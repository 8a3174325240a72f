package film

import "time"

// RunStatus is the final state of an apply run.
type RunStatus string

const (
	RunRunning     RunStatus = "running"
	RunSucceeded   RunStatus = "succeeded"
	RunFailed      RunStatus = "failed"
	RunInterrupted RunStatus = "interrupted"
)

// FileStatus is the outcome recorded for one image.
type FileStatus string

const (
	FileApplied FileStatus = "applied"
	FileFailed  FileStatus = "failed"
	FileSkipped FileStatus = "skipped"

	// FilePlanned marks a dry-run outcome; it is never recorded.
	FilePlanned FileStatus = "planned"
)

// Run is one recorded apply invocation.
type Run struct {
	ID         string
	Mode       string
	Source     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     RunStatus
	Succeeded  int
	Failed     int
}

// FileResult is the recorded outcome of applying a plan to one image.
type FileResult struct {
	RunID            string
	Path             string
	RollNumber       int
	PhotoNumber      int
	Status           FileStatus
	ErrorKind        ErrorKind
	Message          string
	DateTimeOriginal string
	ArchiveChecksum  string
	ArchiveEncrypted bool
	CreatedAt        time.Time
}

// Database records run history.
// Lookups return nil without an error when nothing matches.
type Database interface {
	// CreateRun records the start of a run.
	CreateRun(run *Run) error

	// FinishRun stores the final status and counts of a run.
	FinishRun(id string, status RunStatus, succeeded, failed int, finishedAt time.Time) error

	// RecordFileResult appends the outcome for one image.
	RecordFileResult(result *FileResult) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	// FindFileResults returns every recorded outcome for path, newest first.
	FindFileResults(path string) ([]*FileResult, error)

	// FindLatestArchive returns the newest outcome for path that archived the original.
	FindLatestArchive(path string) (*FileResult, error)

	// Close closes the database connection.
	Close() error
}
