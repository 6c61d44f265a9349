package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStudyFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadStudy(t *testing.T) {
	path := writeStudyFile(t, `
objective: rastrigin
runs: 3
population: 40
generations: 200
dim: 5
lb: -5.12
ub: 5.12
f: 0.6
cr: 0.8
seed: 7
parallel: 2
`)

	study, err := LoadStudy(path)
	require.NoError(t, err)

	assert.Equal(t, "rastrigin", study.Objective)
	assert.Equal(t, 3, study.Runs)
	assert.Equal(t, 2, study.Parallel)

	cfg := study.ToDE()
	assert.Equal(t, 40, cfg.NPop)
	assert.Equal(t, 200, cfg.MaxIt)
	assert.Equal(t, -5.12, cfg.LB)
	assert.Equal(t, int64(7), cfg.Seed)
	require.NoError(t, cfg.Validate())
}

func TestLoadStudyDefaults(t *testing.T) {
	path := writeStudyFile(t, `objective: ackley`)

	study, err := LoadStudy(path)
	require.NoError(t, err)

	defaults := DefaultStudy()
	assert.Equal(t, "ackley", study.Objective)
	assert.Equal(t, defaults.Runs, study.Runs)
	assert.Equal(t, defaults.Population, study.Population)
	assert.Equal(t, defaults.CR, study.CR)
}

func TestLoadStudyRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"population too small", "population: 3"},
		{"zero runs", "runs: 0"},
		{"inverted bounds", "lb: 5\nub: -5"},
		{"crossover above one", "cr: 1.5"},
		{"negative parallel", "parallel: -1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadStudy(writeStudyFile(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadStudyMissingFile(t *testing.T) {
	_, err := LoadStudy(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadStudyMalformedYAML(t *testing.T) {
	_, err := LoadStudy(writeStudyFile(t, "objective: [unterminated"))
	assert.Error(t, err)
}

func TestLoadServerEnv(t *testing.T) {
	t.Setenv("DIFFEVO_ADDR", ":9999")
	t.Setenv("DIFFEVO_DATA_DIR", "/tmp/diffevo-test")

	env := LoadServerEnv()
	assert.Equal(t, ":9999", env.Addr)
	assert.Equal(t, "/tmp/diffevo-test", env.DataDir)
}

func TestLoadServerEnvDefaults(t *testing.T) {
	t.Setenv("DIFFEVO_ADDR", "")
	t.Setenv("DIFFEVO_DATA_DIR", "")

	env := LoadServerEnv()
	assert.Equal(t, ":8080", env.Addr)
	assert.Equal(t, "./data", env.DataDir)
}
