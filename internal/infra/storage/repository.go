// Package storage provides the persistence layer for the simulation server.
// This package implements the repository pattern to keep the domain pure.
//
// The archive is write-only from the simulation's point of view: geometry
// events flow in for spectators and offline analysis, but the simulation
// never restores its state from here.
package storage

import (
	"context"
	"time"
)

// GeometryEvent mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
type GeometryEvent struct {
	ID         string    `json:"id" db:"id"`
	RunID      string    `json:"run_id" db:"run_id"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	EventType  string    `json:"event_type" db:"event_type"`
	Generation int       `json:"generation" db:"generation"`
	PipeID     int       `json:"pipe_id" db:"pipe_id"`
	// Geometry payload, JSON-encoded positions ({"at":...} or {"from":...,"to":...}).
	Payload map[string]interface{} `json:"payload" db:"payload"`
}

// GeometryEventRepository defines the interface for event persistence.
type GeometryEventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event GeometryEvent) error

	// GetByRunID retrieves all events of one server run, in order.
	GetByRunID(ctx context.Context, runID string) ([]GeometryEvent, error)

	// GetByGeneration retrieves all events of one generation of a run.
	GetByGeneration(ctx context.Context, runID string, generation int) ([]GeometryEvent, error)

	// GetByPipeID retrieves all events emitted by one pipe.
	GetByPipeID(ctx context.Context, runID string, pipeID int) ([]GeometryEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, runID string, eventType string) ([]GeometryEvent, error)
}

// GenerationSummary records aggregate numbers for one finished or
// in-progress generation, for the stats API and offline analysis.
type GenerationSummary struct {
	RunID       string    `json:"run_id" db:"run_id"`
	Generation  int       `json:"generation" db:"generation"`
	NumPipes    int       `json:"num_pipes" db:"num_pipes"`
	Segments    int       `json:"segments" db:"segments"`
	CellsFilled int       `json:"cells_filled" db:"cells_filled"`
	StartedAt   time.Time `json:"started_at" db:"started_at"`
	EndedAt     time.Time `json:"ended_at" db:"ended_at"`
}

// GenerationRepository defines the interface for generation summaries.
type GenerationRepository interface {
	// Upsert updates or inserts a generation summary.
	Upsert(ctx context.Context, summary GenerationSummary) error

	// GetByRunID retrieves all generation summaries for a run.
	GetByRunID(ctx context.Context, runID string) ([]GenerationSummary, error)

	// Latest returns the highest generation recorded for a run.
	Latest(ctx context.Context, runID string) (*GenerationSummary, error)
}
