// Package network - replay.go
// Replay endpoint - JSON export of the geometry event history.
//
// This lets viewers and tooling replay what the simulation emitted:
// the live in-memory log for the current run, and the SQLite archive
// (via the reconstructor) for generation-shaped geometry.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Lucas-Miller/3d-pipes/internal/events"
	"github.com/Lucas-Miller/3d-pipes/internal/infra/storage"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/logger"
)

// ReplayHandler provides the replay API.
type ReplayHandler struct {
	eventLog      *events.EventLog
	reconstructor *storage.Reconstructor
	runID         string
	logger        *logger.Logger
}

// NewReplayHandler creates a new replay handler. reconstructor may be
// nil when the server runs without an archive.
func NewReplayHandler(el *events.EventLog, rec *storage.Reconstructor, runID string, log *logger.Logger) *ReplayHandler {
	return &ReplayHandler{
		eventLog:      el,
		reconstructor: rec,
		runID:         runID,
		logger:        log,
	}
}

// ReplayResponse is the API response for the event replay.
type ReplayResponse struct {
	RunID       string                 `json:"run_id"`
	TotalEvents int                    `json:"total_events"`
	FilteredBy  string                 `json:"filtered_by,omitempty"`
	GeneratedAt string                 `json:"generated_at"`
	Events      []events.GeometryEvent `json:"events"`
}

// HandleReplay returns the geometry event history of the current run.
// GET /api/replay?generation=N&type=SEGMENT_CREATED&pipe_id=3
func (rh *ReplayHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Optional filters
	genStr := r.URL.Query().Get("generation")
	eventType := r.URL.Query().Get("type")
	pipeStr := r.URL.Query().Get("pipe_id")

	allEvents := rh.eventLog.Replay()

	var replayEvents []events.GeometryEvent
	filterDesc := ""

	for _, e := range allEvents {
		if genStr != "" {
			gen, _ := strconv.Atoi(genStr)
			if e.Generation != gen {
				continue
			}
			filterDesc = "Generation " + genStr
		}

		if eventType != "" && string(e.Type) != eventType {
			continue
		}

		if pipeStr != "" {
			id, _ := strconv.Atoi(pipeStr)
			if e.PipeID != id {
				continue
			}
		}

		replayEvents = append(replayEvents, e)
	}

	response := ReplayResponse{
		RunID:       rh.runID,
		TotalEvents: len(replayEvents),
		FilteredBy:  filterDesc,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      replayEvents,
	}

	rh.logger.Event("REPLAY", "VIEWER", "RunID:"+rh.runID+" Events:"+strconv.Itoa(len(replayEvents)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GenerationResponse is the API response for reconstructed geometry.
type GenerationResponse struct {
	RunID       string                `json:"run_id"`
	Generation  int                   `json:"generation"`
	GeneratedAt string                `json:"generated_at"`
	Pipes       []storage.RebuiltPipe `json:"pipes"`
}

// HandleGeneration returns one generation's geometry rebuilt from the
// archive, shaped per pipe instead of per event.
// GET /api/replay/generation?n=N
func (rh *ReplayHandler) HandleGeneration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if rh.reconstructor == nil {
		rh.jsonError(w, "Archive not configured", http.StatusNotImplemented)
		return
	}

	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n <= 0 {
		rh.jsonError(w, "Missing or invalid generation number", http.StatusBadRequest)
		return
	}

	pipes, err := rh.reconstructor.RebuildGeneration(r.Context(), rh.runID, n)
	if err != nil {
		rh.logger.Error("Failed to rebuild generation: " + err.Error())
		rh.jsonError(w, "Failed to rebuild generation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GenerationResponse{
		RunID:       rh.runID,
		Generation:  n,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Pipes:       pipes,
	})
}

// HandleStats returns aggregate statistics over the event history.
// GET /api/replay/stats
func (rh *ReplayHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	allEvents := rh.eventLog.Replay()

	stats := map[string]int{
		"total_events":     len(allEvents),
		"joints_created":   0,
		"segments_created": 0,
		"pipes_removed":    0,
		"generations_seen": 0,
	}

	for _, e := range allEvents {
		switch e.Type {
		case events.EventTypeJointCreated:
			stats["joints_created"]++
		case events.EventTypeSegmentCreated:
			stats["segments_created"]++
		case events.EventTypePipeRemoved:
			stats["pipes_removed"]++
		case events.EventTypeGenerationStarted:
			stats["generations_seen"]++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"stats":        stats,
	})
}

// RegisterRoutes sets up the replay API routes.
func (rh *ReplayHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/replay", rh.HandleReplay)
	mux.HandleFunc("/api/replay/generation", rh.HandleGeneration)
	mux.HandleFunc("/api/replay/stats", rh.HandleStats)
}

// jsonError writes a JSON error response.
func (rh *ReplayHandler) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
