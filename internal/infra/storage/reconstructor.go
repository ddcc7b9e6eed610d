// Package storage - reconstructor.go
// Rebuilds a generation's full geometry from the archived event stream.
// This is the core of the event ledger: geometry = f(events).
package storage

import (
	"context"
	"fmt"
	"sort"
)

// Reconstructor rebuilds pipe geometry from the archived event log.
// This is used for:
// 1. The replay API - serve a finished generation to a late viewer
// 2. Offline analysis of archived runs
// 3. Auditing and debugging
type Reconstructor struct {
	eventRepo GeometryEventRepository
}

// NewReconstructor creates a new geometry reconstructor.
func NewReconstructor(eventRepo GeometryEventRepository) *Reconstructor {
	return &Reconstructor{eventRepo: eventRepo}
}

// RebuiltPoint is an integer position decoded from an event payload.
type RebuiltPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// RebuiltSegment is a connector decoded from an event payload.
type RebuiltSegment struct {
	From RebuiltPoint `json:"from"`
	To   RebuiltPoint `json:"to"`
}

// RebuiltPipe holds one pipe's reconstructed geometry in emit order.
type RebuiltPipe struct {
	PipeID   int              `json:"pipe_id"`
	Joints   []RebuiltPoint   `json:"joints"`
	Segments []RebuiltSegment `json:"segments"`
	Removed  bool             `json:"removed"`
}

// RebuildGeneration reconstructs every pipe of one generation from the
// archive. Pipes are returned ordered by id.
func (r *Reconstructor) RebuildGeneration(ctx context.Context, runID string, generation int) ([]RebuiltPipe, error) {
	evts, err := r.eventRepo.GetByGeneration(ctx, runID, generation)
	if err != nil {
		return nil, fmt.Errorf("failed to get generation events: %w", err)
	}

	pipes := make(map[int]*RebuiltPipe)
	get := func(id int) *RebuiltPipe {
		p, ok := pipes[id]
		if !ok {
			p = &RebuiltPipe{PipeID: id}
			pipes[id] = p
		}
		return p
	}

	// Events were archived in emit order; apply them in sequence.
	for _, e := range evts {
		switch e.EventType {
		case "JOINT_CREATED":
			pt, ok := decodePoint(e.Payload["at"])
			if !ok {
				continue
			}
			p := get(e.PipeID)
			p.Joints = append(p.Joints, pt)
		case "SEGMENT_CREATED":
			from, okF := decodePoint(e.Payload["from"])
			to, okT := decodePoint(e.Payload["to"])
			if !okF || !okT {
				continue
			}
			p := get(e.PipeID)
			p.Segments = append(p.Segments, RebuiltSegment{From: from, To: to})
		case "PIPE_REMOVED":
			get(e.PipeID).Removed = true
		}
	}

	result := make([]RebuiltPipe, 0, len(pipes))
	for _, p := range pipes {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PipeID < result[j].PipeID })
	return result, nil
}

// decodePoint pulls an {x,y,z} object out of a JSON-decoded payload.
// JSON numbers arrive as float64.
func decodePoint(v interface{}) (RebuiltPoint, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return RebuiltPoint{}, false
	}
	x, okX := m["x"].(float64)
	y, okY := m["y"].(float64)
	z, okZ := m["z"].(float64)
	if !okX || !okY || !okZ {
		return RebuiltPoint{}, false
	}
	return RebuiltPoint{X: int(x), Y: int(y), Z: int(z)}, true
}
