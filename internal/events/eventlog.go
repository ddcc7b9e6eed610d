// Package events provides the append-only geometry event log.
// Everything the simulation emits — joints, segments, removals, resets —
// lands here in order, and every consumer (WebSocket hub, SQLite archive,
// replay API) reads from this single ledger.
package events

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
)

// EventType defines the category of a geometry event.
type EventType string

const (
	EventTypeGenerationStarted EventType = "GENERATION_STARTED"
	EventTypeJointCreated      EventType = "JOINT_CREATED"
	EventTypeSegmentCreated    EventType = "SEGMENT_CREATED"
	EventTypePipeRemoved       EventType = "PIPE_REMOVED"
)

// GeometryEvent is an immutable record of one geometry change.
// Joint events carry At; segment events carry From and To.
type GeometryEvent struct {
	ID         string     `json:"id"`
	Timestamp  time.Time  `json:"timestamp"`
	Type       EventType  `json:"type"`
	Generation int        `json:"generation"`
	PipeID     int        `json:"pipe_id,omitempty"`
	At         *pipe.Vec3 `json:"at,omitempty"`
	From       *pipe.Vec3 `json:"from,omitempty"`
	To         *pipe.Vec3 `json:"to,omitempty"`
}

// Persister defines how an event is durably stored.
type Persister interface {
	Persist(event GeometryEvent) error
}

// EventLog is the in-memory append-only log of geometry events.
// The SQLite archive hangs off it through the Persister interface.
type EventLog struct {
	mu        sync.RWMutex
	events    []GeometryEvent
	persister Persister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister Persister) *EventLog {
	return &EventLog{
		events:    make([]GeometryEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event GeometryEvent) {
	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		// Write through to the archive off the tick path.
		go func(e GeometryEvent) {
			_ = el.persister.Persist(e)
		}(event)
	}
}

// Replay returns the full history of events in append order.
func (el *EventLog) Replay() []GeometryEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}

// ByGeneration returns all events belonging to one generation.
func (el *EventLog) ByGeneration(generation int) []GeometryEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GeometryEvent
	for _, e := range el.events {
		if e.Generation == generation {
			result = append(result, e)
		}
	}
	return result
}

// ByType returns all events of one type.
func (el *EventLog) ByType(t EventType) []GeometryEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GeometryEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Len returns the number of appended events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

var eventSeq atomic.Int64

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return time.Now().Format("20060102150405") + "-" + strconv.FormatInt(eventSeq.Add(1), 36)
}
