package network

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lucas-Miller/3d-pipes/internal/events"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/logger"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/optimization"
)

type fakeSim struct {
	resets     int
	generation int
}

func (f *fakeSim) RequestReset()           { f.resets++ }
func (f *fakeSim) GenerationSnapshot() int { return f.generation }

func TestControlResetQueuesAndCoolsDown(t *testing.T) {
	sim := &fakeSim{generation: 3}
	api := NewControlAPI(sim, events.NewEventLog(nil), nil, logger.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/control/reset", nil)
	rec := httptest.NewRecorder()
	api.HandleReset(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if sim.resets != 1 {
		t.Errorf("expected one queued reset, got %d", sim.resets)
	}

	// Immediate second request hits the cooldown.
	rec = httptest.NewRecorder()
	api.HandleReset(rec, httptest.NewRequest(http.MethodPost, "/api/control/reset", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 inside cooldown, got %d", rec.Code)
	}
	if sim.resets != 1 {
		t.Errorf("cooldown must block the reset, got %d", sim.resets)
	}
}

func TestControlResetRejectsGet(t *testing.T) {
	api := NewControlAPI(&fakeSim{}, events.NewEventLog(nil), nil, logger.NewLogger())
	rec := httptest.NewRecorder()
	api.HandleReset(rec, httptest.NewRequest(http.MethodGet, "/api/control/reset", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", rec.Code)
	}
}

func TestControlStatusReportsState(t *testing.T) {
	log := events.NewEventLog(nil)
	log.Append(events.GeometryEvent{Type: events.EventTypeGenerationStarted, Generation: 1})
	log.Append(events.GeometryEvent{Type: events.EventTypeJointCreated, Generation: 1, PipeID: 1})

	api := NewControlAPI(&fakeSim{generation: 2}, log, optimization.DefaultConfig(), logger.NewLogger())
	rec := httptest.NewRecorder()
	api.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/control/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["generation"] != float64(2) {
		t.Errorf("generation = %v", body["generation"])
	}
	if body["total_events"] != float64(2) {
		t.Errorf("total_events = %v", body["total_events"])
	}

	// The status payload carries the tuning analysis for dashboards.
	tuning, ok := body["tuning"].(map[string]interface{})
	if !ok {
		t.Fatal("status response missing tuning section")
	}
	for _, key := range []string{"active", "recommendations", "suggested_config"} {
		if _, ok := tuning[key]; !ok {
			t.Errorf("tuning section missing %q", key)
		}
	}
}
