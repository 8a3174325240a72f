package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"exifizer/internal/database/migrations"
	"exifizer/internal/film"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements film.Database using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens the history database at path and brings its schema up to date.
// path can be a file path or ":memory:".
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing, already migrated connection.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db}
}

// OpenConnection opens and configures a SQLite connection.
// A single connection is used so ":memory:" databases are shared by every query
// and writes from parallel rolls are serialized.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// CheckMigrations verifies that the schema is current.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckStatus(s.db)
}

// Run operations

func (s *SQLiteDatabase) CreateRun(run *film.Run) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, mode, source, started_at, status) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.Source, run.StartedAt.UTC(), string(run.Status),
	)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FinishRun(id string, status film.RunStatus, succeeded, failed int, finishedAt time.Time) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, succeeded = ?, failed = ?, finished_at = ? WHERE id = ?`,
		string(status), succeeded, failed, finishedAt.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finishing run: run %s not found", id)
	}
	return nil
}

func (s *SQLiteDatabase) ListRuns(limit int) ([]*film.Run, error) {
	rows, err := s.db.Query(
		`SELECT id, mode, source, started_at, finished_at, status, succeeded, failed
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*film.Run
	for rows.Next() {
		var (
			run      film.Run
			finished sql.NullTime
			status   string
		)
		if err := rows.Scan(&run.ID, &run.Mode, &run.Source, &run.StartedAt, &finished, &status, &run.Succeeded, &run.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Status = film.RunStatus(status)
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// File result operations

func (s *SQLiteDatabase) RecordFileResult(r *film.FileResult) error {
	_, err := s.db.Exec(
		`INSERT INTO file_results (run_id, path, roll_number, photo_number, status, error_kind,
		   message, date_time_original, archive_checksum, archive_encrypted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Path, r.RollNumber, r.PhotoNumber, string(r.Status), string(r.ErrorKind),
		r.Message, r.DateTimeOriginal, r.ArchiveChecksum, r.ArchiveEncrypted, r.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording file result: %w", err)
	}
	return nil
}

const fileResultColumns = `run_id, path, roll_number, photo_number, status, error_kind,
	message, date_time_original, archive_checksum, archive_encrypted, created_at`

func (s *SQLiteDatabase) FindFileResults(path string) ([]*film.FileResult, error) {
	rows, err := s.db.Query(
		`SELECT `+fileResultColumns+` FROM file_results WHERE path = ? ORDER BY id DESC`, path)
	if err != nil {
		return nil, fmt.Errorf("finding file results: %w", err)
	}
	defer rows.Close()

	var results []*film.FileResult
	for rows.Next() {
		r, err := scanFileResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("finding file results: %w", err)
	}
	return results, nil
}

func (s *SQLiteDatabase) FindLatestArchive(path string) (*film.FileResult, error) {
	row := s.db.QueryRow(
		`SELECT `+fileResultColumns+` FROM file_results
		 WHERE path = ? AND archive_checksum != '' ORDER BY id DESC LIMIT 1`, path)
	r, err := scanFileResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFileResult(row scanner) (*film.FileResult, error) {
	var (
		r            film.FileResult
		status, kind string
	)
	err := row.Scan(&r.RunID, &r.Path, &r.RollNumber, &r.PhotoNumber, &status, &kind,
		&r.Message, &r.DateTimeOriginal, &r.ArchiveChecksum, &r.ArchiveEncrypted, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning file result: %w", err)
	}
	r.Status = film.FileStatus(status)
	r.ErrorKind = film.ErrorKind(kind)
	return &r, nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	return s.db.Close()
}

// Compile-time check that SQLiteDatabase implements film.Database
var _ film.Database = (*SQLiteDatabase)(nil)
