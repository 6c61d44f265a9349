package store

// Store defines the interface for study record persistence.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if the record doesn't exist (for Load/Delete)
//   - Return descriptive errors for I/O, serialization, or validation failures
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRecord atomically saves the record for the given study. If a
	// record already exists for this studyID it is overwritten. The
	// implementation should use atomic write strategies (e.g. temp file +
	// rename) to prevent corruption on failure.
	SaveRecord(studyID string, record *Record) error

	// LoadRecord retrieves the record for the given study.
	// Returns ErrNotFound if no record exists for this studyID.
	LoadRecord(studyID string) (*Record, error)

	// ListRecords returns metadata for all stored studies. The returned
	// slice may be empty if no records exist.
	ListRecords() ([]RecordInfo, error)

	// DeleteRecord removes the record and all associated artifacts for the
	// given study, including record.json and trace.jsonl.
	// Returns ErrNotFound if no record exists for this studyID.
	DeleteRecord(studyID string) error
}

// ErrNotFound is returned when a requested record does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing study record error.
type NotFoundError struct {
	StudyID string
}

func (e *NotFoundError) Error() string {
	if e.StudyID != "" {
		return "study record not found: " + e.StudyID
	}
	return "study record not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
