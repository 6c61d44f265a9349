package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cwbudde/diffevo/internal/de"
)

// ExportXLSX writes the study result to an Excel workbook with two sheets:
// "Summary" (one row per run) and "Curves" (one column per run, one row per
// generation). The convergence data is written raw, without the sub-1e-8
// display normalization, so downstream plots see the true trajectory.
func ExportXLSX(path, objective string, result *de.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	headers := []interface{}{"Run", "Objective", "Best Fitness", "Reported Best", "Best Position"}
	if err := f.SetSheetRow(summarySheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}

	for i, run := range result.Runs {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{
			i + 1,
			objective,
			run.BestFitness,
			run.DisplayBest(),
			formatPosition(run.BestPosition),
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}

	const curveSheet = "Curves"
	if _, err := f.NewSheet(curveSheet); err != nil {
		return fmt.Errorf("failed to create curves sheet: %w", err)
	}

	curveHeader := make([]interface{}, 0, len(result.Runs)+1)
	curveHeader = append(curveHeader, "Generation")
	for i := range result.Runs {
		curveHeader = append(curveHeader, fmt.Sprintf("Run %d", i+1))
	}
	if err := f.SetSheetRow(curveSheet, "A1", &curveHeader); err != nil {
		return fmt.Errorf("failed to write curves header: %w", err)
	}

	generations := 0
	for _, run := range result.Runs {
		if len(run.Curve) > generations {
			generations = len(run.Curve)
		}
	}
	for g := 0; g < generations; g++ {
		row := make([]interface{}, 0, len(result.Runs)+1)
		row = append(row, g)
		for _, run := range result.Runs {
			if g < len(run.Curve) {
				row = append(row, run.Curve[g])
			} else {
				row = append(row, nil)
			}
		}
		cell := fmt.Sprintf("A%d", g+2)
		if err := f.SetSheetRow(curveSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write curve row %d: %w", g, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
