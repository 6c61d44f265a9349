package store

import (
	"fmt"
	"time"

	"github.com/cwbudde/diffevo/internal/de"
)

// StudyConfig holds the configuration of an optimization study (record
// copy). It mirrors de.Config plus the objective name, so a stored record is
// self-describing and reproducible.
type StudyConfig struct {
	Objective string  `json:"objective"`
	RunNo     int     `json:"runNo"`
	NPop      int     `json:"nPop"`
	MaxIt     int     `json:"maxIt"`
	Dim       int     `json:"dim"`
	LB        float64 `json:"lb"`
	UB        float64 `json:"ub"`
	F         float64 `json:"f"`
	CR        float64 `json:"cr"`
	Seed      int64   `json:"seed"`
}

// ToDE converts the stored configuration back to an engine config.
func (c StudyConfig) ToDE() de.Config {
	return de.Config{
		RunNo: c.RunNo,
		NPop:  c.NPop,
		MaxIt: c.MaxIt,
		Dim:   c.Dim,
		LB:    c.LB,
		UB:    c.UB,
		F:     c.F,
		CR:    c.CR,
		Seed:  c.Seed,
	}
}

// FromDE builds a stored configuration from an engine config and the name of
// the objective it ran against.
func FromDE(cfg de.Config, objective string) StudyConfig {
	return StudyConfig{
		Objective: objective,
		RunNo:     cfg.RunNo,
		NPop:      cfg.NPop,
		MaxIt:     cfg.MaxIt,
		Dim:       cfg.Dim,
		LB:        cfg.LB,
		UB:        cfg.UB,
		F:         cfg.F,
		CR:        cfg.CR,
		Seed:      cfg.Seed,
	}
}

// Record is the persisted outcome of a completed study: the configuration,
// every run's final best solution and every run's convergence curve. All
// fields are serialized to JSON for persistence.
type Record struct {
	// StudyID is the unique identifier for this study.
	StudyID string `json:"studyId"`

	// Config holds the study configuration used to produce the results.
	Config StudyConfig `json:"config"`

	// Runs holds one entry per independent run, in run order.
	Runs []de.RunResult `json:"runs"`

	// CreatedAt records when this record was written.
	CreatedAt time.Time `json:"createdAt"`
}

// NewRecord creates a record from a finished study result.
func NewRecord(studyID string, config StudyConfig, result *de.Result) *Record {
	return &Record{
		StudyID:   studyID,
		Config:    config,
		Runs:      result.Runs,
		CreatedAt: time.Now(),
	}
}

// BestFitness returns the lowest best fitness across all runs.
func (r *Record) BestFitness() float64 {
	best := r.Runs[0].BestFitness
	for _, run := range r.Runs[1:] {
		if run.BestFitness < best {
			best = run.BestFitness
		}
	}
	return best
}

// ToInfo converts a full Record to RecordInfo (metadata only).
func (r *Record) ToInfo() RecordInfo {
	return RecordInfo{
		StudyID:     r.StudyID,
		Objective:   r.Config.Objective,
		Runs:        len(r.Runs),
		Dim:         r.Config.Dim,
		BestFitness: r.BestFitness(),
		CreatedAt:   r.CreatedAt,
	}
}

// Validate checks if the record has consistent data. Returns an error if any
// required field is missing or does not agree with the configuration.
func (r *Record) Validate() error {
	if r.StudyID == "" {
		return &ValidationError{Field: "StudyID", Reason: "cannot be empty"}
	}
	if r.Config.Objective == "" {
		return &ValidationError{Field: "Config.Objective", Reason: "cannot be empty"}
	}
	if len(r.Runs) == 0 {
		return &ValidationError{Field: "Runs", Reason: "cannot be empty"}
	}
	if len(r.Runs) != r.Config.RunNo {
		return &ValidationError{
			Field:  "Runs",
			Reason: fmt.Sprintf("count mismatch: expected %d runs, got %d", r.Config.RunNo, len(r.Runs)),
		}
	}
	for i, run := range r.Runs {
		if len(run.BestPosition) != r.Config.Dim {
			return &ValidationError{
				Field:  "Runs",
				Reason: fmt.Sprintf("run %d: expected %d position components, got %d", i, r.Config.Dim, len(run.BestPosition)),
			}
		}
		if len(run.Curve) != r.Config.MaxIt {
			return &ValidationError{
				Field:  "Runs",
				Reason: fmt.Sprintf("run %d: expected curve of length %d, got %d", i, r.Config.MaxIt, len(run.Curve)),
			}
		}
	}
	if r.CreatedAt.IsZero() {
		return &ValidationError{Field: "CreatedAt", Reason: "cannot be zero"}
	}
	return nil
}

// RecordInfo contains metadata about a stored record without the full curve
// data. Used for listing studies efficiently.
type RecordInfo struct {
	StudyID     string    `json:"studyId"`
	Objective   string    `json:"objective"`
	Runs        int       `json:"runs"`
	Dim         int       `json:"dim"`
	BestFitness float64   `json:"bestFitness"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidationError represents a record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
