// Package metrics provides observability for the simulation server.
// Counters are cheap enough to record from the hot tick loop.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Simulation metrics
	GrowthSteps      int64
	StalledTicks     int64
	GenerationResets int64
	CellsClaimed     int64

	// Event metrics
	EventsWritten    int64
	EventWriteLatSum int64
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordGrowth records the outcome of one tick across all agents.
func (c *Collector) RecordGrowth(steps int, cells int) {
	if steps == 0 {
		atomic.AddInt64(&c.StalledTicks, 1)
		return
	}
	atomic.AddInt64(&c.GrowthSteps, int64(steps))
	atomic.AddInt64(&c.CellsClaimed, int64(cells))
}

// RecordReset records a generation reset.
func (c *Collector) RecordReset() {
	atomic.AddInt64(&c.GenerationResets, 1)
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.EventWriteLatMax) {
		atomic.StoreInt64(&c.EventWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	eventsWritten := atomic.LoadInt64(&c.EventsWritten)

	// Calculate averages
	var tickAvg, eventAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"simulation": map[string]interface{}{
			"growth_steps":      atomic.LoadInt64(&c.GrowthSteps),
			"stalled_ticks":     atomic.LoadInt64(&c.StalledTicks),
			"generation_resets": atomic.LoadInt64(&c.GenerationResets),
			"cells_claimed":     atomic.LoadInt64(&c.CellsClaimed),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP pipes_tick_count Total tick cycles\n")
		fmt.Fprintf(w, "# TYPE pipes_tick_count counter\n")
		fmt.Fprintf(w, "pipes_tick_count %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP pipes_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE pipes_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "pipes_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP pipes_growth_steps Total successful growth steps\n")
		fmt.Fprintf(w, "# TYPE pipes_growth_steps counter\n")
		fmt.Fprintf(w, "pipes_growth_steps %d\n\n", atomic.LoadInt64(&c.GrowthSteps))

		fmt.Fprintf(w, "# HELP pipes_generation_resets Total generation resets\n")
		fmt.Fprintf(w, "# TYPE pipes_generation_resets counter\n")
		fmt.Fprintf(w, "pipes_generation_resets %d\n\n", atomic.LoadInt64(&c.GenerationResets))

		fmt.Fprintf(w, "# HELP pipes_cells_claimed Total grid cells claimed\n")
		fmt.Fprintf(w, "# TYPE pipes_cells_claimed counter\n")
		fmt.Fprintf(w, "pipes_cells_claimed %d\n\n", atomic.LoadInt64(&c.CellsClaimed))

		fmt.Fprintf(w, "# HELP pipes_events_written Total events written\n")
		fmt.Fprintf(w, "# TYPE pipes_events_written counter\n")
		fmt.Fprintf(w, "pipes_events_written %d\n\n", atomic.LoadInt64(&c.EventsWritten))

		fmt.Fprintf(w, "# HELP pipes_event_write_errors Total event write errors\n")
		fmt.Fprintf(w, "# TYPE pipes_event_write_errors counter\n")
		fmt.Fprintf(w, "pipes_event_write_errors %d\n\n", atomic.LoadInt64(&c.EventWriteErrors))

		fmt.Fprintf(w, "# HELP pipes_ws_active_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE pipes_ws_active_connections gauge\n")
		fmt.Fprintf(w, "pipes_ws_active_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP pipes_ws_messages_out Total WebSocket messages sent\n")
		fmt.Fprintf(w, "# TYPE pipes_ws_messages_out counter\n")
		fmt.Fprintf(w, "pipes_ws_messages_out %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}

// Reset clears all metrics. Used between soak-test runs.
func (c *Collector) Reset() {
	atomic.StoreInt64(&c.TickCount, 0)
	atomic.StoreInt64(&c.TickLatencySum, 0)
	atomic.StoreInt64(&c.TickLatencyMax, 0)
	atomic.StoreInt64(&c.GrowthSteps, 0)
	atomic.StoreInt64(&c.StalledTicks, 0)
	atomic.StoreInt64(&c.GenerationResets, 0)
	atomic.StoreInt64(&c.CellsClaimed, 0)
	atomic.StoreInt64(&c.EventsWritten, 0)
	atomic.StoreInt64(&c.EventWriteLatSum, 0)
	atomic.StoreInt64(&c.EventWriteLatMax, 0)
	atomic.StoreInt64(&c.EventWriteErrors, 0)

	c.mu.Lock()
	c.StartTime = time.Now()
	c.mu.Unlock()
}
