// Package network - control.go
// Operator control API. The classic pipes screensaver restarts on user
// input; this is the server-side equivalent, plus a status endpoint for
// dashboards.
package network

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Lucas-Miller/3d-pipes/internal/events"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/logger"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/metrics"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/optimization"
)

// SimControl is the slice of the simulation the control API may touch.
// Reset requests are queued for the tick loop; nothing here mutates
// simulation state directly.
type SimControl interface {
	RequestReset()
	GenerationSnapshot() int
}

// ControlAPI handles operator interactions.
type ControlAPI struct {
	sim      SimControl
	eventLog *events.EventLog
	logger   *logger.Logger
	tuning   *optimization.Config

	mu        sync.Mutex
	lastReset time.Time
}

// Minimum interval between forced resets. A reset respawns every pipe;
// hammering the endpoint would turn the render into a strobe.
const resetCooldown = 2 * time.Second

// NewControlAPI creates a new operator control handler. A nil tuning
// config falls back to the production defaults.
func NewControlAPI(sim SimControl, el *events.EventLog, tuning *optimization.Config, log *logger.Logger) *ControlAPI {
	if tuning == nil {
		tuning = optimization.DefaultConfig()
	}
	return &ControlAPI{
		sim:      sim,
		eventLog: el,
		logger:   log,
		tuning:   tuning,
	}
}

// HandleReset queues a generation reset on the next tick.
// POST /api/control/reset
func (ca *ControlAPI) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ca.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ca.mu.Lock()
	if time.Since(ca.lastReset) < resetCooldown {
		ca.mu.Unlock()
		ca.jsonError(w, "Reset cooldown active", http.StatusTooManyRequests)
		return
	}
	ca.lastReset = time.Now()
	ca.mu.Unlock()

	ca.sim.RequestReset()
	ca.logger.Event("FORCED_RESET", "CONTROL_API", "Operator requested a generation reset")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    true,
		"message":    "Reset queued for next tick",
		"generation": ca.sim.GenerationSnapshot(),
	})
}

// HandleStatus reports live simulation and serving state.
// GET /api/control/status
func (ca *ControlAPI) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ca.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := metrics.Get().Snapshot()

	// Dashboards get the tuning recommendations alongside the raw
	// numbers, plus what the active config would look like with them
	// applied. Nothing is applied live; buffers are sized at startup.
	rec := optimization.Analyze(snapshot)
	suggested := *ca.tuning
	optimization.ApplyRecommendations(&suggested, rec)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"generation":   ca.sim.GenerationSnapshot(),
		"total_events": ca.eventLog.Len(),
		"generated_at": time.Now().Format(time.RFC3339),
		"metrics":      snapshot,
		"tuning": map[string]interface{}{
			"active":           ca.tuning,
			"recommendations":  rec,
			"suggested_config": suggested,
		},
	})
}

// RegisterRoutes sets up the control API routes.
func (ca *ControlAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/control/reset", ca.HandleReset)
	mux.HandleFunc("/api/control/status", ca.HandleStatus)
}

func (ca *ControlAPI) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
