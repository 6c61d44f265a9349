package server

import (
	"context"
	"testing"
)

func testStudyConfig() StudyConfig {
	return StudyConfig{
		Objective: "sphere",
		RunNo:     1,
		NPop:      10,
		MaxIt:     20,
		Dim:       2,
		LB:        -5,
		UB:        5,
		F:         0.5,
		CR:        0.9,
		Seed:      42,
	}
}

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testStudyConfig())

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}
	if job.State != StatePending {
		t.Errorf("Expected pending state, got %s", job.State)
	}
	if job.StartTime.IsZero() {
		t.Error("Start time should be set")
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testStudyConfig())

	got, exists := jm.GetJob(job.ID)
	if !exists {
		t.Fatal("Job should exist")
	}
	if got.ID != job.ID {
		t.Errorf("Expected job %s, got %s", job.ID, got.ID)
	}

	if _, exists := jm.GetJob("missing"); exists {
		t.Error("Missing job should not exist")
	}
}

func TestJobManager_GetJobReturnsSnapshot(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testStudyConfig())

	jm.UpdateJob(job.ID, func(j *Job) {
		j.BestFitness = 1.5
		j.BestPosition = []float64{1, 2}
	})

	got, _ := jm.GetJob(job.ID)
	got.State = StateFailed
	got.BestFitness = 99
	got.BestPosition[0] = 99

	// Mutating the snapshot must not leak into the managed job.
	fresh, _ := jm.GetJob(job.ID)
	if fresh.State != StatePending {
		t.Errorf("Expected pending state, got %s", fresh.State)
	}
	if fresh.BestFitness != 1.5 {
		t.Errorf("Expected best fitness 1.5, got %g", fresh.BestFitness)
	}
	if fresh.BestPosition[0] != 1 {
		t.Errorf("Expected best position 1, got %g", fresh.BestPosition[0])
	}
}

func TestJobManager_ConcurrentReadsDuringUpdates(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testStudyConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			jm.UpdateJob(job.ID, func(j *Job) {
				j.Generation = i
				j.BestFitness = float64(i)
				j.BestPosition = []float64{float64(i)}
			})
		}
	}()

	// Readers observe consistent snapshots while the writer mutates the
	// live job. Run with -race to verify.
	for i := 0; i < 1000; i++ {
		got, ok := jm.GetJob(job.ID)
		if !ok {
			t.Fatal("Job should exist")
		}
		if got.Generation != int(got.BestFitness) {
			t.Fatalf("Torn snapshot: generation %d, best fitness %g", got.Generation, got.BestFitness)
		}
		for _, j := range jm.ListJobs() {
			_ = j.BestFitness
		}
	}
	<-done
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Expected no jobs initially")
	}

	jm.CreateJob(testStudyConfig())
	jm.CreateJob(testStudyConfig())

	if got := len(jm.ListJobs()); got != 2 {
		t.Errorf("Expected 2 jobs, got %d", got)
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testStudyConfig())

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.Generation = 5
	})
	if err != nil {
		t.Fatalf("UpdateJob failed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning {
		t.Errorf("Expected running state, got %s", updated.State)
	}
	if updated.Generation != 5 {
		t.Errorf("Expected generation 5, got %d", updated.Generation)
	}

	if err := jm.UpdateJob("missing", func(j *Job) {}); err == nil {
		t.Error("Expected error for missing job")
	}
}

func TestJobManager_GetRunningJobs(t *testing.T) {
	jm := NewJobManager()
	a := jm.CreateJob(testStudyConfig())
	jm.CreateJob(testStudyConfig())

	jm.UpdateJob(a.ID, func(j *Job) { j.State = StateRunning })

	running := jm.GetRunningJobs()
	if len(running) != 1 {
		t.Fatalf("Expected 1 running job, got %d", len(running))
	}
	if running[0].ID != a.ID {
		t.Errorf("Expected job %s, got %s", a.ID, running[0].ID)
	}
}

func TestJobManager_CancelJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testStudyConfig())

	ctx, cancel := context.WithCancel(context.Background())
	jm.RegisterCancel(job.ID, cancel)

	if !jm.CancelJob(job.ID) {
		t.Fatal("Expected cancellation to succeed")
	}

	select {
	case <-ctx.Done():
	default:
		t.Error("Context should be cancelled")
	}

	// Second cancel attempt is a no-op.
	if jm.CancelJob(job.ID) {
		t.Error("Expected second cancellation to fail")
	}
	if jm.CancelJob("missing") {
		t.Error("Expected cancellation of unknown job to fail")
	}
}
