package report

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cwbudde/diffevo/internal/de"
)

func testResult() *de.Result {
	return &de.Result{Runs: []de.RunResult{
		{BestFitness: 0.25, BestPosition: []float64{0.1, -0.4}, Curve: []float64{4, 1, 0.25}},
		{BestFitness: 1.5, BestPosition: []float64{1.0, 0.5}, Curve: []float64{6, 2, 1.5}},
	}}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4})

	assert.Equal(t, 4, s.Runs)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.StdDev, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
}

func TestSummarizeSingleRun(t *testing.T) {
	s := Summarize([]float64{0.7})
	assert.Equal(t, 1, s.Runs)
	assert.Equal(t, 0.7, s.Mean)
	assert.Equal(t, 0.0, s.StdDev)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Runs)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, "sphere", testResult())

	out := buf.String()
	assert.Contains(t, out, "sphere")
	assert.Contains(t, out, "1 *") // run 1 is the best run
	assert.Contains(t, out, "0.25")
	assert.Contains(t, out, "mean")
}

func TestWriteTableSingleRunNoFooter(t *testing.T) {
	var buf bytes.Buffer
	res := &de.Result{Runs: testResult().Runs[:1]}
	WriteTable(&buf, "sphere", res)

	assert.NotContains(t, buf.String(), "mean")
}

func TestFormatPositionTruncates(t *testing.T) {
	long := make([]float64, 10)
	out := formatPosition(long)
	assert.Contains(t, out, "(10 total)")

	short := formatPosition([]float64{1.5, -2})
	assert.Equal(t, "[1.5, -2]", short)
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.xlsx")
	require.NoError(t, ExportXLSX(path, "sphere", testResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	objective, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "sphere", objective)

	best, err := f.GetCellValue("Summary", "C2")
	require.NoError(t, err)
	assert.Equal(t, "0.25", best)

	// Curves sheet: header row plus one row per generation.
	rows, err := f.GetRows("Curves")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Generation", "Run 1", "Run 2"}, rows[0])
	assert.Equal(t, "0.25", rows[3][1])
}
