package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/diffevo/internal/config"
	"github.com/cwbudde/diffevo/internal/de"
	"github.com/cwbudde/diffevo/internal/objective"
	"github.com/cwbudde/diffevo/internal/report"
	"github.com/cwbudde/diffevo/internal/store"
)

var (
	studyFile   string
	objName     string
	runNo       int
	popSize     int
	generations int
	dim         int
	lowerBound  float64
	upperBound  float64
	mutationF   float64
	crossoverCR float64
	seed        int64
	parallel    int
	saveRecord  bool
	dataDir     string
	xlsxPath    string
	tracePath   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an optimization study",
	Long: `Runs differential evolution against a benchmark objective and prints a
per-run summary table. Settings come from --config and/or flags; flags set
on the command line override file values.`,
	RunE: runStudyCmd,
}

func init() {
	runCmd.Flags().StringVar(&studyFile, "config", "", "Study definition YAML file")
	runCmd.Flags().StringVar(&objName, "objective", "sphere", "Objective function name")
	runCmd.Flags().IntVar(&runNo, "runs", 1, "Number of independent runs")
	runCmd.Flags().IntVar(&popSize, "pop", 30, "Population size")
	runCmd.Flags().IntVar(&generations, "gens", 100, "Generations per run")
	runCmd.Flags().IntVar(&dim, "dim", 10, "Problem dimensionality")
	runCmd.Flags().Float64Var(&lowerBound, "lb", 0, "Lower bound (defaults to the objective's suggestion)")
	runCmd.Flags().Float64Var(&upperBound, "ub", 0, "Upper bound (defaults to the objective's suggestion)")
	runCmd.Flags().Float64Var(&mutationF, "f", 0.5, "Mutation scaling factor")
	runCmd.Flags().Float64Var(&crossoverCR, "cr", 0.9, "Crossover probability")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Base random seed")
	runCmd.Flags().IntVar(&parallel, "parallel", 0, "Worker goroutines for independent runs (0 = sequential)")
	runCmd.Flags().BoolVar(&saveRecord, "save", false, "Persist the study record under --data")
	runCmd.Flags().StringVar(&dataDir, "data", "./data", "Base directory for persisted records and traces")
	runCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Export summary and curves to an Excel workbook")
	runCmd.Flags().BoolVar(&tracePath, "trace", false, "Write a per-generation JSONL trace under --data")

	rootCmd.AddCommand(runCmd)
}

// buildStudy assembles the study definition from the optional config file
// and the command-line flags. Flags explicitly set override file values.
func buildStudy(cmd *cobra.Command) (*config.Study, error) {
	if studyFile == "" {
		// No file: the flags (defaults or user values) drive the study.
		return &config.Study{
			Objective:   objName,
			Runs:        runNo,
			Population:  popSize,
			Generations: generations,
			Dim:         dim,
			LB:          lowerBound,
			UB:          upperBound,
			F:           mutationF,
			CR:          crossoverCR,
			Seed:        seed,
			Parallel:    parallel,
		}, nil
	}

	loaded, err := config.LoadStudy(studyFile)
	if err != nil {
		return nil, err
	}
	study := *loaded

	setFlag := map[string]func(){
		"objective": func() { study.Objective = objName },
		"runs":      func() { study.Runs = runNo },
		"pop":       func() { study.Population = popSize },
		"gens":      func() { study.Generations = generations },
		"dim":       func() { study.Dim = dim },
		"lb":        func() { study.LB = lowerBound },
		"ub":        func() { study.UB = upperBound },
		"f":         func() { study.F = mutationF },
		"cr":        func() { study.CR = crossoverCR },
		"seed":      func() { study.Seed = seed },
		"parallel":  func() { study.Parallel = parallel },
	}
	for name, apply := range setFlag {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}

	return &study, nil
}

func runStudyCmd(cmd *cobra.Command, args []string) error {
	study, err := buildStudy(cmd)
	if err != nil {
		return err
	}

	bench, err := objective.Lookup(study.Objective)
	if err != nil {
		return err
	}

	// Fall back to the objective's conventional bounds unless set explicitly.
	if !cmd.Flags().Changed("lb") && !cmd.Flags().Changed("ub") && study.LB == 0 && study.UB == 0 {
		study.LB, study.UB = bench.LB, bench.UB
	}

	cfg := study.ToDE()
	opt, err := de.New(cfg, bench.Func)
	if err != nil {
		return err
	}

	studyID := uuid.New().String()

	var trace *store.TraceWriter
	if tracePath {
		trace, err = store.NewTraceWriter(dataDir, studyID, false)
		if err != nil {
			return err
		}
		defer trace.Close()

		opt.OnProgress = func(run, gen int, best float64) {
			if err := trace.Write(store.TraceEntry{
				Run:         run,
				Generation:  gen,
				BestFitness: best,
				Timestamp:   time.Now(),
			}); err != nil {
				slog.Warn("Failed to write trace entry", "error", err)
			}
		}
	}

	slog.Info("Starting study",
		"study_id", studyID,
		"objective", study.Objective,
		"runs", cfg.RunNo,
		"generations", cfg.MaxIt,
		"dim", cfg.Dim,
	)

	start := time.Now()
	var result *de.Result
	if study.Parallel > 1 && !tracePath {
		result, err = opt.RunParallel(study.Parallel)
	} else {
		// Trace writing keeps runs sequential so entries arrive in order.
		result, err = opt.Run()
	}
	if err != nil {
		return fmt.Errorf("study failed: %w", err)
	}
	elapsed := time.Since(start)

	slog.Info("Study complete",
		"elapsed", elapsed,
		"best_run", result.BestRun()+1,
		"best_fitness", result.Runs[result.BestRun()].BestFitness,
	)

	report.WriteTable(os.Stdout, study.Objective, result)

	if saveRecord {
		fsStore, err := store.NewFSStore(dataDir)
		if err != nil {
			return err
		}
		record := store.NewRecord(studyID, store.FromDE(cfg, study.Objective), result)
		if err := fsStore.SaveRecord(studyID, record); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}
		fmt.Printf("Saved study %s\n", studyID)
	}

	if xlsxPath != "" {
		if err := report.ExportXLSX(xlsxPath, study.Objective, result); err != nil {
			return fmt.Errorf("failed to export workbook: %w", err)
		}
		fmt.Printf("Wrote %s\n", xlsxPath)
	}

	return nil
}
