// Package optimization provides concurrency tuning for the server's
// channel buffers, archive connection pool, and broadcast fan-out.
package optimization

import (
	"runtime"
	"time"
)

// Config holds tuned parameters for the serving path. The simulation
// tick itself is single-threaded and needs no tuning; everything here
// concerns the event fan-out around it.
type Config struct {
	// Channel buffer sizes
	BroadcastChannelBuffer int
	ClientSendBuffer       int

	// EventLog polling cadence for the WebSocket fan-out.
	EventPollInterval time.Duration

	// SQLite archive connection pool
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Rate limiting
	MaxViewerCommandsPerSecond int
	MaxClients                 int
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		// Broadcast buffers - larger = more memory, less blocking.
		// A full generation replay can burst thousands of events.
		BroadcastChannelBuffer: 256,
		ClientSendBuffer:       256,

		EventPollInterval: 50 * time.Millisecond,

		// SQLite serializes writes anyway; keep the pool modest.
		DBMaxOpenConns: numCPU,
		DBMaxIdleConns: numCPU / 2,

		MaxViewerCommandsPerSecond: 1,
		MaxClients:                 200,
	}
}

// LowResourceConfig returns minimal settings for development.
func LowResourceConfig() *Config {
	return &Config{
		BroadcastChannelBuffer: 32,
		ClientSendBuffer:       32,

		EventPollInterval: 100 * time.Millisecond,

		DBMaxOpenConns: 2,
		DBMaxIdleConns: 1,

		MaxViewerCommandsPerSecond: 1,
		MaxClients:                 10,
	}
}

// Recommendations provides suggestions based on observed metrics.
type Recommendations struct {
	IncreaseBroadcastBuffer bool
	IncreaseDBConnections   bool
	Notes                   []string
}

// Analyze examines a metrics snapshot and returns tuning recommendations.
func Analyze(metrics map[string]interface{}) *Recommendations {
	rec := &Recommendations{
		Notes: make([]string, 0),
	}

	// Check event write latency against the archive.
	if events, ok := metrics["events"].(map[string]interface{}); ok {
		if maxLat, ok := events["max_write_lat_ms"].(float64); ok && maxLat > 50 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Event write latency exceeds 50ms - increase DB connections")
		}
		if errors, ok := events["errors"].(int64); ok && errors > 0 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Event write errors detected - check DB connection pool")
		}
	}

	// Check WebSocket backpressure.
	if ws, ok := metrics["websocket"].(map[string]interface{}); ok {
		if errors, ok := ws["errors"].(int64); ok && errors > 0 {
			rec.IncreaseBroadcastBuffer = true
			rec.Notes = append(rec.Notes, "WebSocket errors detected - increase client send buffer")
		}
	}

	return rec
}

// ApplyRecommendations modifies config based on recommendations.
func ApplyRecommendations(config *Config, rec *Recommendations) *Config {
	if rec.IncreaseBroadcastBuffer {
		config.BroadcastChannelBuffer *= 2
		config.ClientSendBuffer *= 2
	}
	if rec.IncreaseDBConnections {
		config.DBMaxOpenConns = int(float64(config.DBMaxOpenConns)*1.5) + 1
		config.DBMaxIdleConns = int(float64(config.DBMaxIdleConns)*1.5) + 1
	}
	return config
}
