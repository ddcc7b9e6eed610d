package events

import (
	"time"

	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
)

// Recorder adapts the simulation's Observer callbacks into event log
// appends. All calls arrive from the single tick loop, in order, so the
// generation counter needs no locking.
type Recorder struct {
	log        *EventLog
	generation int
}

// NewRecorder creates a recorder appending to the given log.
func NewRecorder(log *EventLog) *Recorder {
	return &Recorder{log: log}
}

// GenerationStarted records the beginning of a generation. Subsequent
// joint/segment events are tagged with this generation number.
func (r *Recorder) GenerationStarted(generation int) {
	r.generation = generation
	r.log.Append(GeometryEvent{
		ID:         GenerateEventID(),
		Timestamp:  time.Now(),
		Type:       EventTypeGenerationStarted,
		Generation: generation,
	})
}

// JointCreated records a joint marker at a pipe's position.
func (r *Recorder) JointCreated(pipeID int, at pipe.Vec3) {
	p := at
	r.log.Append(GeometryEvent{
		ID:         GenerateEventID(),
		Timestamp:  time.Now(),
		Type:       EventTypeJointCreated,
		Generation: r.generation,
		PipeID:     pipeID,
		At:         &p,
	})
}

// SegmentCreated records a connector between two joints.
func (r *Recorder) SegmentCreated(pipeID int, from, to pipe.Vec3) {
	f, t := from, to
	r.log.Append(GeometryEvent{
		ID:         GenerateEventID(),
		Timestamp:  time.Now(),
		Type:       EventTypeSegmentCreated,
		Generation: r.generation,
		PipeID:     pipeID,
		From:       &f,
		To:         &t,
	})
}

// PipeRemoved records a pipe teardown at the start of a reset.
func (r *Recorder) PipeRemoved(pipeID int) {
	r.log.Append(GeometryEvent{
		ID:         GenerateEventID(),
		Timestamp:  time.Now(),
		Type:       EventTypePipeRemoved,
		Generation: r.generation,
		PipeID:     pipeID,
	})
}
