package server

import (
	"context"
	"errors"
	"testing"

	"github.com/cwbudde/diffevo/internal/store"
)

func setupWorkerTest(t *testing.T) (*JobManager, *store.FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	fsStore, err := store.NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return NewJobManager(), fsStore, tempDir
}

func TestRunStudy_Success(t *testing.T) {
	jm, fsStore, tempDir := setupWorkerTest(t)

	config := testStudyConfig()
	config.RunNo = 2
	job := jm.CreateJob(config)

	if err := runStudy(context.Background(), jm, fsStore, tempDir, job.ID); err != nil {
		t.Fatalf("runStudy should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Fatalf("Job should be completed, got %s", updated.State)
	}
	if len(updated.BestPosition) != config.Dim {
		t.Errorf("Expected %d position components, got %d", config.Dim, len(updated.BestPosition))
	}
	if updated.EndTime == nil {
		t.Error("End time should be set")
	}

	// The record is persisted and consistent.
	record, err := fsStore.LoadRecord(job.ID)
	if err != nil {
		t.Fatalf("Expected persisted record: %v", err)
	}
	if err := record.Validate(); err != nil {
		t.Errorf("Persisted record invalid: %v", err)
	}
	if len(record.Runs) != 2 {
		t.Errorf("Expected 2 runs in record, got %d", len(record.Runs))
	}

	// The trace covers every generation of every run.
	tr, err := store.NewTraceReader(tempDir, job.ID)
	if err != nil {
		t.Fatalf("Expected trace: %v", err)
	}
	defer tr.Close()

	entries, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read trace: %v", err)
	}
	if want := config.RunNo * config.MaxIt; len(entries) != want {
		t.Errorf("Expected %d trace entries, got %d", want, len(entries))
	}
}

func TestRunStudy_UnknownObjective(t *testing.T) {
	jm, fsStore, tempDir := setupWorkerTest(t)

	config := testStudyConfig()
	config.Objective = "nonexistent"
	job := jm.CreateJob(config)

	if err := runStudy(context.Background(), jm, fsStore, tempDir, job.ID); err == nil {
		t.Fatal("Expected error for unknown objective")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
	if updated.Error == "" {
		t.Error("Error message should be set")
	}
}

func TestRunStudy_InvalidConfig(t *testing.T) {
	jm, fsStore, tempDir := setupWorkerTest(t)

	config := testStudyConfig()
	config.NPop = 2
	job := jm.CreateJob(config)

	if err := runStudy(context.Background(), jm, fsStore, tempDir, job.ID); err == nil {
		t.Fatal("Expected error for invalid config")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
}

func TestRunStudy_Cancelled(t *testing.T) {
	jm, fsStore, tempDir := setupWorkerTest(t)

	job := jm.CreateJob(testStudyConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancelled before the first run starts

	err := runStudy(ctx, jm, fsStore, tempDir, job.ID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCancelled {
		t.Errorf("Job should be cancelled, got %s", updated.State)
	}
}

func TestRunStudy_UnknownJob(t *testing.T) {
	jm, fsStore, tempDir := setupWorkerTest(t)

	if err := runStudy(context.Background(), jm, fsStore, tempDir, "missing"); err == nil {
		t.Fatal("Expected error for unknown job")
	}
}
