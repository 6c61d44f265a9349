package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ProgressEvent represents a progress update for one study
type ProgressEvent struct {
	StudyID     string    `json:"studyId"`
	State       JobState  `json:"state"`
	Run         int       `json:"run"`
	Generation  int       `json:"generation"`
	BestFitness float64   `json:"bestFitness"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventBroadcaster manages SSE connections for a study
type EventBroadcaster struct {
	mu        sync.RWMutex
	clients   map[string]map[chan ProgressEvent]bool // studyID -> set of client channels
	lastEvent map[string]ProgressEvent               // studyID -> last event for new clients
}

// NewEventBroadcaster creates a new event broadcaster
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		clients:   make(map[string]map[chan ProgressEvent]bool),
		lastEvent: make(map[string]ProgressEvent),
	}
}

// Subscribe adds a client to receive events for a study
func (eb *EventBroadcaster) Subscribe(studyID string) chan ProgressEvent {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan ProgressEvent, 10) // Buffered to prevent blocking

	if eb.clients[studyID] == nil {
		eb.clients[studyID] = make(map[chan ProgressEvent]bool)
	}
	eb.clients[studyID][ch] = true

	// Send last event if available (for reconnecting clients)
	if lastEvent, ok := eb.lastEvent[studyID]; ok {
		select {
		case ch <- lastEvent:
		default:
			// Channel full, skip
		}
	}

	slog.Debug("SSE client subscribed", "studyID", studyID, "total_clients", len(eb.clients[studyID]))
	return ch
}

// Unsubscribe removes a client from receiving events
func (eb *EventBroadcaster) Unsubscribe(studyID string, ch chan ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if clients, ok := eb.clients[studyID]; ok {
		delete(clients, ch)
		close(ch)

		if len(clients) == 0 {
			delete(eb.clients, studyID)
		}
	}

	slog.Debug("SSE client unsubscribed", "studyID", studyID)
}

// Broadcast sends an event to all subscribed clients for a study
func (eb *EventBroadcaster) Broadcast(event ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	// Store last event
	eb.lastEvent[event.StudyID] = event

	clients, ok := eb.clients[event.StudyID]
	if !ok || len(clients) == 0 {
		return
	}

	slog.Debug("Broadcasting event", "studyID", event.StudyID, "clients", len(clients), "generation", event.Generation)

	for ch := range clients {
		select {
		case ch <- event:
			// Event sent successfully
		default:
			// Channel full, skip this client (prevents blocking)
			slog.Warn("SSE channel full, skipping event", "studyID", event.StudyID)
		}
	}
}

// CleanupJob removes all clients and cached events for a study
func (eb *EventBroadcaster) CleanupJob(studyID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if clients, ok := eb.clients[studyID]; ok {
		for ch := range clients {
			close(ch)
		}
		delete(eb.clients, studyID)
	}

	delete(eb.lastEvent, studyID)
	slog.Debug("Cleaned up SSE resources", "studyID", studyID)
}

// handleStudyStream handles SSE connections for study progress
func (s *Server) handleStudyStream(w http.ResponseWriter, r *http.Request, studyID string) {
	job, exists := s.jobManager.GetJob(studyID)
	if !exists {
		http.Error(w, "Study not found", http.StatusNotFound)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	eventChan := s.jobManager.broadcaster.Subscribe(studyID)
	defer s.jobManager.broadcaster.Unsubscribe(studyID, eventChan)

	// Send initial event with current job state
	initialEvent := ProgressEvent{
		StudyID:     job.ID,
		State:       job.State,
		Run:         job.Run,
		Generation:  job.Generation,
		BestFitness: job.BestFitness,
		Timestamp:   time.Now(),
	}

	if err := writeSSEEvent(w, initialEvent); err != nil {
		slog.Error("Failed to write initial SSE event", "error", err)
		return
	}
	flusher.Flush()

	// Set up ping ticker to keep connection alive
	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("SSE client disconnected", "studyID", studyID)
			return

		case event, ok := <-eventChan:
			if !ok {
				return
			}

			if err := writeSSEEvent(w, event); err != nil {
				slog.Error("Failed to write SSE event", "error", err)
				return
			}
			flusher.Flush()

		case <-pingTicker.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes an event in SSE format
func writeSSEEvent(w http.ResponseWriter, event ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// SSE format: "data: {json}\n\n"
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
