package database

import (
	"fmt"
	"os"
	"path/filepath"

	"exifizer/internal/config"
	"exifizer/internal/film"
)

// historyFile is the name of the history database inside the data directory.
const historyFile = "history.db"

// NewDatabaseFromConfig creates the history database selected by cfg.Type.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (film.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return open(filepath.Join(cfg.DataDir, historyFile))
	case "memory":
		return open(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

func open(path string) (film.Database, error) {
	db, err := NewSQLiteDatabase(path)
	if err != nil {
		return nil, err
	}
	return db, nil
}
