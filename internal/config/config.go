// Package config loads study definitions from YAML files and server settings
// from the environment. The engine's own Config.Validate remains the final
// authority; the declarative validation here exists to reject bad files with
// field-level messages before a study is constructed.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/diffevo/internal/de"
)

// Study is the YAML representation of one optimization study.
type Study struct {
	// Objective names a benchmark from the objective catalogue.
	Objective string `yaml:"objective" validate:"required"`

	Runs        int     `yaml:"runs" validate:"gt=0"`
	Population  int     `yaml:"population" validate:"gte=4"`
	Generations int     `yaml:"generations" validate:"gt=0"`
	Dim         int     `yaml:"dim" validate:"gt=0"`
	LB          float64 `yaml:"lb"`
	UB          float64 `yaml:"ub" validate:"gtfield=LB"`
	F           float64 `yaml:"f"`
	CR          float64 `yaml:"cr" validate:"gte=0,lte=1"`
	Seed        int64   `yaml:"seed"`

	// Parallel is the number of worker goroutines for independent runs.
	// Zero or one means sequential execution.
	Parallel int `yaml:"parallel" validate:"gte=0"`
}

// DefaultStudy returns the study settings used when a field is absent from
// the file or no file is given.
func DefaultStudy() Study {
	return Study{
		Objective:   "sphere",
		Runs:        1,
		Population:  30,
		Generations: 100,
		Dim:         10,
		LB:          -5,
		UB:          5,
		F:           0.5,
		CR:          0.9,
		Seed:        42,
	}
}

// LoadStudy reads and validates a study definition from a YAML file.
// Missing fields fall back to DefaultStudy values.
func LoadStudy(path string) (*Study, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read study file: %w", err)
	}

	study := DefaultStudy()
	if err := yaml.Unmarshal(data, &study); err != nil {
		return nil, fmt.Errorf("failed to parse study file: %w", err)
	}

	if err := study.Validate(); err != nil {
		return nil, err
	}
	return &study, nil
}

// Validate runs the declarative field validation.
func (s *Study) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid study definition: %w", err)
	}
	return nil
}

// ToDE maps the study definition onto an engine configuration.
func (s *Study) ToDE() de.Config {
	return de.Config{
		RunNo: s.Runs,
		NPop:  s.Population,
		MaxIt: s.Generations,
		Dim:   s.Dim,
		LB:    s.LB,
		UB:    s.UB,
		F:     s.F,
		CR:    s.CR,
		Seed:  s.Seed,
	}
}
