package testutil

import (
	"bytes"
	"context"
	"sync"

	"exifizer/internal/film"
)

// MockMetadataTool records plans instead of running exiftool.
// When built with a filesystem, Apply also rewrites the file so archived
// originals can be told apart from written ones.
type MockMetadataTool struct {
	mu       sync.Mutex
	fsmgr    *MockFilesystemManager
	scanners map[string]film.ScannerInfo
	failures map[string]error
	applied  []*film.MetadataPlan
	attempts []string
	reads    int

	// OnApply, when set, runs after each successful Apply.
	OnApply func(plan *film.MetadataPlan)
}

// NewMockMetadataTool creates a tool. fsmgr may be nil.
func NewMockMetadataTool(fsmgr *MockFilesystemManager) *MockMetadataTool {
	return &MockMetadataTool{
		fsmgr:    fsmgr,
		scanners: make(map[string]film.ScannerInfo),
		failures: make(map[string]error),
	}
}

// SetScanner sets the make and model ReadScanner reports for path.
func (m *MockMetadataTool) SetScanner(path string, info film.ScannerInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanners[path] = info
}

// FailOn makes Apply return err for path.
func (m *MockMetadataTool) FailOn(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = err
}

// Applied returns the plans written so far, in call order.
func (m *MockMetadataTool) Applied() []*film.MetadataPlan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*film.MetadataPlan(nil), m.applied...)
}

// Calls returns the number of ReadScanner and Apply calls, including failed ones.
func (m *MockMetadataTool) Calls() (reads, applies int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads, len(m.attempts)
}

// Attempts returns the paths passed to Apply, in call order.
func (m *MockMetadataTool) Attempts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.attempts...)
}

func (m *MockMetadataTool) ReadScanner(_ context.Context, path *film.Path) (film.ScannerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	info, ok := m.scanners[path.String()]
	if !ok {
		return film.ScannerInfo{}, nil
	}
	return info, nil
}

func (m *MockMetadataTool) Apply(_ context.Context, plan *film.MetadataPlan) error {
	m.mu.Lock()
	m.attempts = append(m.attempts, plan.Path)
	if err, ok := m.failures[plan.Path]; ok {
		m.mu.Unlock()
		return err
	}
	m.applied = append(m.applied, plan)
	hook := m.OnApply
	m.mu.Unlock()

	if m.fsmgr != nil {
		if content, ok := m.fsmgr.Content(plan.Path); ok {
			_ = m.fsmgr.WriteFile(plan.Path, append(bytes.Clone(content), []byte("+exif")...))
		}
	}
	if hook != nil {
		hook(plan)
	}
	return nil
}

// Compile-time check
var _ film.MetadataTool = (*MockMetadataTool)(nil)
