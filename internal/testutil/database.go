package testutil

import (
	"testing"

	"exifizer/internal/config"
	"exifizer/internal/database"
	"exifizer/internal/film"
)

// NewTestDatabase opens a migrated in-memory history database that is closed
// when the test ends.
func NewTestDatabase(t *testing.T) film.Database {
	t.Helper()
	db, err := database.NewDatabaseFromConfig(config.DatabaseConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("opening history database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
