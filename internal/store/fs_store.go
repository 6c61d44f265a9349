package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore implements the Store interface using filesystem-based persistence.
// Records are stored in a directory structure: <baseDir>/studies/<studyID>/
//
// Thread-safety: this implementation uses atomic file operations (rename)
// and does not require locks.
type FSStore struct {
	baseDir string // Root directory for all study data (e.g. "./data")
}

// NewFSStore creates a new filesystem-based store.
// The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FSStore{
		baseDir: baseDir,
	}, nil
}

// studyDir returns the directory path for a given study ID.
func (fs *FSStore) studyDir(studyID string) string {
	return filepath.Join(fs.baseDir, "studies", studyID)
}

// recordPath returns the path to the record.json file for a study.
func (fs *FSStore) recordPath(studyID string) string {
	return filepath.Join(fs.studyDir(studyID), "record.json")
}

// SaveRecord atomically saves the record for the given study.
// Uses temp file + rename pattern to ensure atomicity.
func (fs *FSStore) SaveRecord(studyID string, record *Record) error {
	if studyID == "" {
		return fmt.Errorf("studyID cannot be empty")
	}
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	studyDir := fs.studyDir(studyID)
	if err := os.MkdirAll(studyDir, 0755); err != nil {
		return fmt.Errorf("failed to create study directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	// Write to temporary file first (atomic pattern)
	tempPath := fs.recordPath(studyID) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp record file: %w", err)
	}

	finalPath := fs.recordPath(studyID)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename record file: %w", err)
	}

	slog.Debug("Study record saved", "studyID", studyID, "path", finalPath)
	return nil
}

// LoadRecord retrieves the record for the given study.
func (fs *FSStore) LoadRecord(studyID string) (*Record, error) {
	if studyID == "" {
		return nil, fmt.Errorf("studyID cannot be empty")
	}

	path := fs.recordPath(studyID)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &NotFoundError{StudyID: studyID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat record file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to deserialize record: %w", err)
	}

	slog.Debug("Study record loaded", "studyID", studyID, "path", path)
	return &record, nil
}

// ListRecords returns metadata for all stored studies.
func (fs *FSStore) ListRecords() ([]RecordInfo, error) {
	studiesDir := filepath.Join(fs.baseDir, "studies")

	if _, err := os.Stat(studiesDir); os.IsNotExist(err) {
		// No studies exist yet, return empty slice
		return []RecordInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat studies directory: %w", err)
	}

	entries, err := os.ReadDir(studiesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read studies directory: %w", err)
	}

	var infos []RecordInfo

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		studyID := entry.Name()
		recordPath := fs.recordPath(studyID)

		if _, err := os.Stat(recordPath); os.IsNotExist(err) {
			continue // Skip directories without record.json
		}

		record, err := fs.LoadRecord(studyID)
		if err != nil {
			slog.Warn("Failed to load record for listing", "studyID", studyID, "error", err)
			continue // Skip corrupted records
		}

		infos = append(infos, record.ToInfo())
	}

	slog.Debug("Listed study records", "count", len(infos))
	return infos, nil
}

// DeleteRecord removes the record and all associated artifacts.
func (fs *FSStore) DeleteRecord(studyID string) error {
	if studyID == "" {
		return fmt.Errorf("studyID cannot be empty")
	}

	studyDir := fs.studyDir(studyID)

	if _, err := os.Stat(studyDir); os.IsNotExist(err) {
		return &NotFoundError{StudyID: studyID}
	} else if err != nil {
		return fmt.Errorf("failed to stat study directory: %w", err)
	}

	if err := os.RemoveAll(studyDir); err != nil {
		return fmt.Errorf("failed to remove study directory: %w", err)
	}

	slog.Debug("Study record deleted", "studyID", studyID, "path", studyDir)
	return nil
}
