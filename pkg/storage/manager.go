package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	errs "replayfetch/pkg/errors"
)

// ReplayExt is the extension of every stored replay
const ReplayExt = ".json"

// Manager handles replay files in one output directory. File existence is
// the only record of what has been downloaded.
type Manager struct {
	outputDir string
	inFlight  map[string]struct{}
	mu        sync.Mutex
}

// NewManager creates the output directory (with parents) if needed
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir: outputDir,
		inFlight:  make(map[string]struct{}),
	}, nil
}

// ValidateID rejects ids that are not a single safe path element
func ValidateID(battleID string) error {
	switch {
	case battleID == "":
		return errs.New(errs.ErrorTypeInvalidID, nil, "empty battle id")
	case battleID == "." || battleID == "..":
		return errs.New(errs.ErrorTypeInvalidID, nil, "battle id %q is not a file name", battleID)
	case strings.ContainsAny(battleID, `/\`+"\x00"):
		return errs.New(errs.ErrorTypeInvalidID, nil, "battle id %q contains a path separator", battleID)
	}
	return nil
}

// Path returns the target file for a battle id
func (m *Manager) Path(battleID string) string {
	return filepath.Join(m.outputDir, battleID+ReplayExt)
}

// Exists reports whether the replay file is already on disk
func (m *Manager) Exists(battleID string) bool {
	_, err := os.Stat(m.Path(battleID))
	return err == nil
}

// Claim reserves battleID for the caller. It returns false when the file
// already exists or another caller holds the claim. A successful claim must
// be released with Release.
func (m *Manager) Claim(battleID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.inFlight[battleID]; busy {
		return false
	}
	if m.Exists(battleID) {
		return false
	}
	m.inFlight[battleID] = struct{}{}
	return true
}

// Release drops a claim taken with Claim
func (m *Manager) Release(battleID string) {
	m.mu.Lock()
	delete(m.inFlight, battleID)
	m.mu.Unlock()
}

// SaveReplay writes doc to the replay file. The data goes to a temporary
// file in the same directory first and is renamed into place, so the target
// path never holds a partial document. An existing replay is never replaced.
func (m *Manager) SaveReplay(battleID string, doc []byte) error {
	if err := ValidateID(battleID); err != nil {
		return err
	}

	target := m.Path(battleID)
	if m.Exists(battleID) {
		return errs.New(errs.ErrorTypeStorage, os.ErrExist, "replay %s already exists", battleID)
	}

	tmp, err := os.CreateTemp(m.outputDir, "."+battleID+ReplayExt+".tmp-*")
	if err != nil {
		return errs.New(errs.ErrorTypeStorage, err, "failed to create temporary file: %v", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(doc)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return errs.New(errs.ErrorTypeStorage, err, "failed to write replay %s: %v", battleID, err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return errs.New(errs.ErrorTypeStorage, err, "failed to set permissions: %v", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return errs.New(errs.ErrorTypeStorage, err, "failed to move replay into place: %v", err)
	}

	return nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// CountReplays returns the number of replay files in the output directory
func (m *Manager) CountReplays() (int, error) {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory: %w", err)
	}

	n := 0
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && filepath.Ext(name) == ReplayExt && !strings.HasPrefix(name, ".") {
			n++
		}
	}
	return n, nil
}
