package film

import (
	"fmt"
	"path/filepath"
)

// GetHistory returns the most recent apply runs, ordered newest first.
func (s *Service) GetHistory(limit int) ([]*Run, error) {
	if s.database == nil {
		return nil, fmt.Errorf("no history database is configured")
	}
	runs, err := s.database.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// GetFileLog returns every recorded outcome for one image, newest first.
func (s *Service) GetFileLog(path string) ([]*FileResult, error) {
	if s.database == nil {
		return nil, fmt.Errorf("no history database is configured")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	results, err := s.database.FindFileResults(absPath)
	if err != nil {
		return nil, fmt.Errorf("finding file results: %w", err)
	}
	return results, nil
}
