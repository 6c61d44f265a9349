package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cwbudde/diffevo/internal/objective"
	"github.com/cwbudde/diffevo/internal/store"
)

// Server represents the HTTP study service
type Server struct {
	jobManager  *JobManager
	recordStore store.Store
	dataDir     string
	addr        string
	server      *http.Server
}

// NewServer creates a new HTTP server. recordStore holds completed study
// records; dataDir is the base directory for convergence traces.
func NewServer(addr, dataDir string, recordStore store.Store) *Server {
	return &Server{
		jobManager:  NewJobManager(),
		recordStore: recordStore,
		dataDir:     dataDir,
		addr:        addr,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Register API routes
	mux.HandleFunc("/api/v1/studies", s.handleStudies)
	mux.HandleFunc("/api/v1/studies/", s.handleStudiesWithID)
	mux.HandleFunc("/api/v1/objectives", s.handleObjectives)
	mux.Handle("/metrics", promhttp.Handler())

	// Wrap with middleware
	handler := s.loggingMiddleware(s.corsMiddleware(mux))

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: handler,
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleStudies handles /api/v1/studies
func (s *Server) handleStudies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateStudy(w, r)
	case http.MethodGet:
		s.handleListStudies(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleStudiesWithID handles /api/v1/studies/:id/*
func (s *Server) handleStudiesWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/studies/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Study ID required", http.StatusBadRequest)
		return
	}

	studyID := parts[0]

	if r.Method == http.MethodDelete && len(parts) == 1 {
		s.handleCancelStudy(w, r, studyID)
		return
	}

	// Route based on subpath
	if len(parts) == 1 || parts[1] == "status" {
		s.handleGetStudyStatus(w, r, studyID)
	} else if parts[1] == "curve" {
		s.handleGetStudyCurve(w, r, studyID)
	} else if parts[1] == "stream" {
		s.handleStudyStream(w, r, studyID)
	} else {
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// createStudyRequest is the POST /api/v1/studies payload. F and CR are
// pointers because zero is a meaningful value for both, so an omitted field
// must be distinguishable from an explicit zero.
type createStudyRequest struct {
	Objective string   `json:"objective"`
	RunNo     int      `json:"runNo"`
	NPop      int      `json:"nPop"`
	MaxIt     int      `json:"maxIt"`
	Dim       int      `json:"dim"`
	LB        float64  `json:"lb"`
	UB        float64  `json:"ub"`
	F         *float64 `json:"f"`
	CR        *float64 `json:"cr"`
	Seed      int64    `json:"seed"`
}

// handleCreateStudy handles POST /api/v1/studies
func (s *Server) handleCreateStudy(w http.ResponseWriter, r *http.Request) {
	var req createStudyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	config := StudyConfig{
		Objective: req.Objective,
		RunNo:     req.RunNo,
		NPop:      req.NPop,
		MaxIt:     req.MaxIt,
		Dim:       req.Dim,
		LB:        req.LB,
		UB:        req.UB,
		Seed:      req.Seed,
	}

	// Fill in defaults before validation
	if config.Objective == "" {
		config.Objective = "sphere"
	}
	if config.RunNo <= 0 {
		config.RunNo = 1
	}
	if config.NPop <= 0 {
		config.NPop = 30
	}
	if config.MaxIt <= 0 {
		config.MaxIt = 100
	}
	if config.Dim <= 0 {
		config.Dim = 10
	}

	bench, err := objective.Lookup(config.Objective)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if config.LB == 0 && config.UB == 0 {
		config.LB, config.UB = bench.LB, bench.UB
	}
	config.F = 0.5
	if req.F != nil {
		config.F = *req.F
	}
	config.CR = 0.9
	if req.CR != nil {
		config.CR = *req.CR
	}

	// Reject anything the engine would refuse before launching a worker.
	if err := config.ToDE().Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobManager.CreateJob(config)

	ctx, cancel := context.WithCancel(context.Background())
	s.jobManager.RegisterCancel(job.ID, cancel)

	// Start worker in background
	go runStudy(ctx, s.jobManager, s.recordStore, s.dataDir, job.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

// handleListStudies handles GET /api/v1/studies
func (s *Server) handleListStudies(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobManager.ListJobs()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// handleGetStudyStatus handles GET /api/v1/studies/:id/status
func (s *Server) handleGetStudyStatus(w http.ResponseWriter, r *http.Request, studyID string) {
	job, exists := s.jobManager.GetJob(studyID)
	if !exists {
		http.Error(w, "Study not found", http.StatusNotFound)
		return
	}

	// Compute elapsed time and generation throughput
	var elapsed time.Duration
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime)
	} else {
		elapsed = time.Since(job.StartTime)
	}

	gps := float64(0)
	if elapsed.Seconds() > 0 {
		completed := job.Run*job.Config.MaxIt + job.Generation
		gps = float64(completed) / elapsed.Seconds()
	}

	response := map[string]interface{}{
		"id":          job.ID,
		"state":       job.State,
		"config":      job.Config,
		"run":         job.Run,
		"generation":  job.Generation,
		"bestFitness": job.BestFitness,
		"elapsed":     elapsed.Seconds(),
		"gps":         gps,
		"startTime":   job.StartTime,
		"endTime":     job.EndTime,
		"error":       job.Error,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleGetStudyCurve handles GET /api/v1/studies/:id/curve.
// Convergence curves become available once the study record is persisted.
func (s *Server) handleGetStudyCurve(w http.ResponseWriter, r *http.Request, studyID string) {
	record, err := s.recordStore.LoadRecord(studyID)
	if err != nil {
		http.Error(w, "No results yet", http.StatusNotFound)
		return
	}

	curves := make([][]float64, len(record.Runs))
	for i, run := range record.Runs {
		curves[i] = run.Curve
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"studyId": record.StudyID,
		"curves":  curves,
	})
}

// handleCancelStudy handles DELETE /api/v1/studies/:id
func (s *Server) handleCancelStudy(w http.ResponseWriter, r *http.Request, studyID string) {
	if _, exists := s.jobManager.GetJob(studyID); !exists {
		http.Error(w, "Study not found", http.StatusNotFound)
		return
	}

	if !s.jobManager.CancelJob(studyID) {
		http.Error(w, "Study is not cancellable", http.StatusConflict)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// handleObjectives handles GET /api/v1/objectives
func (s *Server) handleObjectives(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(objective.Names())
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
