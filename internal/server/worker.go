package server

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cwbudde/diffevo/internal/de"
	"github.com/cwbudde/diffevo/internal/objective"
	"github.com/cwbudde/diffevo/internal/store"
)

// broadcastEvery throttles SSE progress events to one per this many
// generations; the final generation of each run is always broadcast.
const broadcastEvery = 10

// runStudy executes an optimization study in the background. Runs execute
// sequentially so cancellation can take effect between runs; the engine
// itself has no suspension points inside a run. The completed record is
// persisted to recordStore and a per-generation trace to dataDir.
func runStudy(ctx context.Context, jm *JobManager, recordStore store.Store, dataDir, studyID string) error {
	job, exists := jm.GetJob(studyID)
	if !exists {
		return fmt.Errorf("job not found: %s", studyID)
	}

	err := jm.UpdateJob(studyID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}
	studiesStarted.Inc()

	slog.Info("Starting study", "study_id", studyID, "objective", job.Config.Objective,
		"runs", job.Config.RunNo, "generations", job.Config.MaxIt)

	bench, err := objective.Lookup(job.Config.Objective)
	if err != nil {
		markJobFailed(jm, studyID, err)
		return err
	}

	cfg := job.Config.ToDE()
	opt, err := de.New(cfg, bench.Func)
	if err != nil {
		markJobFailed(jm, studyID, err)
		return err
	}

	trace, err := store.NewTraceWriter(dataDir, studyID, false)
	if err != nil {
		markJobFailed(jm, studyID, err)
		return err
	}
	defer trace.Close()

	opt.OnProgress = func(run, gen int, best float64) {
		generationsProcessed.Inc()

		jm.UpdateJob(studyID, func(j *Job) {
			j.Run = run
			j.Generation = gen + 1
			if !j.bestSet || best < j.BestFitness {
				j.BestFitness = best
				j.bestSet = true
			}
		})

		if err := trace.Write(store.TraceEntry{
			Run:         run,
			Generation:  gen,
			BestFitness: best,
			Timestamp:   time.Now(),
		}); err != nil {
			slog.Warn("Failed to write trace entry", "study_id", studyID, "error", err)
		}

		if gen%broadcastEvery == 0 || gen == cfg.MaxIt-1 {
			current, _ := jm.GetJob(studyID)
			jm.broadcaster.Broadcast(ProgressEvent{
				StudyID:     studyID,
				State:       StateRunning,
				Run:         run,
				Generation:  gen + 1,
				BestFitness: current.BestFitness,
				Timestamp:   time.Now(),
			})
		}
	}

	start := time.Now()
	result := &de.Result{Runs: make([]de.RunResult, 0, cfg.RunNo)}

	for r := 0; r < cfg.RunNo; r++ {
		// Check for cancellation between runs
		select {
		case <-ctx.Done():
			markJobCancelled(jm, studyID)
			return ctx.Err()
		default:
		}

		rng := rand.New(rand.NewSource(cfg.Seed + int64(r)))
		rr, err := opt.RunOnce(r, rng)
		if err != nil {
			markJobFailed(jm, studyID, err)
			return err
		}
		result.Runs = append(result.Runs, *rr)
	}

	if err := trace.Flush(); err != nil {
		slog.Warn("Failed to flush trace", "study_id", studyID, "error", err)
	}

	record := store.NewRecord(studyID, job.Config, result)
	if err := recordStore.SaveRecord(studyID, record); err != nil {
		markJobFailed(jm, studyID, fmt.Errorf("failed to persist record: %w", err))
		return err
	}

	elapsed := time.Since(start)
	best := result.Runs[result.BestRun()]

	endTime := time.Now()
	err = jm.UpdateJob(studyID, func(j *Job) {
		j.State = StateCompleted
		j.BestFitness = best.BestFitness
		j.BestPosition = best.BestPosition
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}
	studiesCompleted.Inc()

	slog.Info("Study completed",
		"study_id", studyID,
		"elapsed", elapsed,
		"best_fitness", best.BestFitness,
		"reported_best", best.DisplayBest(),
	)

	// Broadcast final completion event
	jm.broadcaster.Broadcast(ProgressEvent{
		StudyID:     studyID,
		State:       StateCompleted,
		Run:         cfg.RunNo - 1,
		Generation:  cfg.MaxIt,
		BestFitness: best.BestFitness,
		Timestamp:   time.Now(),
	})

	return nil
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, studyID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(studyID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	studiesFailed.Inc()
	slog.Error("Study failed", "study_id", studyID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, studyID string) {
	endTime := time.Now()
	jm.UpdateJob(studyID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	studiesCancelled.Inc()
	slog.Info("Study cancelled", "study_id", studyID)
}
