package events

import (
	"testing"
	"time"

	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
)

func TestEventLogAppendAndReplayOrder(t *testing.T) {
	log := NewEventLog(nil)

	for i := 1; i <= 5; i++ {
		log.Append(GeometryEvent{
			ID:         GenerateEventID(),
			Timestamp:  time.Now(),
			Type:       EventTypeJointCreated,
			Generation: 1,
			PipeID:     i,
		})
	}

	if log.Len() != 5 {
		t.Fatalf("expected 5 events, got %d", log.Len())
	}
	for i, e := range log.Replay() {
		if e.PipeID != i+1 {
			t.Errorf("replay out of order at %d: pipe %d", i, e.PipeID)
		}
	}
}

func TestEventLogFilters(t *testing.T) {
	log := NewEventLog(nil)
	log.Append(GeometryEvent{Type: EventTypeGenerationStarted, Generation: 1})
	log.Append(GeometryEvent{Type: EventTypeJointCreated, Generation: 1, PipeID: 1})
	log.Append(GeometryEvent{Type: EventTypePipeRemoved, Generation: 1, PipeID: 1})
	log.Append(GeometryEvent{Type: EventTypeGenerationStarted, Generation: 2})
	log.Append(GeometryEvent{Type: EventTypeJointCreated, Generation: 2, PipeID: 2})

	if got := len(log.ByGeneration(1)); got != 3 {
		t.Errorf("expected 3 events for generation 1, got %d", got)
	}
	if got := len(log.ByGeneration(2)); got != 2 {
		t.Errorf("expected 2 events for generation 2, got %d", got)
	}
	if got := len(log.ByType(EventTypeJointCreated)); got != 2 {
		t.Errorf("expected 2 joint events, got %d", got)
	}
	if got := len(log.ByType(EventTypeSegmentCreated)); got != 0 {
		t.Errorf("expected no segment events, got %d", got)
	}
}

type channelPersister struct {
	ch chan GeometryEvent
}

func (p *channelPersister) Persist(e GeometryEvent) error {
	p.ch <- e
	return nil
}

func TestEventLogWritesThroughToPersister(t *testing.T) {
	p := &channelPersister{ch: make(chan GeometryEvent, 1)}
	log := NewEventLog(p)

	at := pipe.Vec3{X: 1, Y: 2, Z: 3}
	log.Append(GeometryEvent{ID: "e1", Type: EventTypeJointCreated, Generation: 1, PipeID: 4, At: &at})

	select {
	case got := <-p.ch:
		if got.ID != "e1" || got.PipeID != 4 || got.At == nil || *got.At != at {
			t.Errorf("persisted event mangled: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("persister was never called")
	}
}

func TestGenerateEventIDIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := GenerateEventID()
		if seen[id] {
			t.Fatalf("duplicate event ID %q", id)
		}
		seen[id] = true
	}
}

func TestRecorderTagsEventsWithGeneration(t *testing.T) {
	log := NewEventLog(nil)
	r := NewRecorder(log)

	r.GenerationStarted(1)
	r.JointCreated(1, pipe.Vec3{})
	r.SegmentCreated(1, pipe.Vec3{}, pipe.Vec3{X: 3})
	r.PipeRemoved(1)
	r.GenerationStarted(2)
	r.JointCreated(2, pipe.Vec3{X: 1})

	events := log.Replay()
	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events))
	}
	for i, e := range events[:4] {
		if e.Generation != 1 {
			t.Errorf("event %d should carry generation 1, got %d", i, e.Generation)
		}
	}
	for i, e := range events[4:] {
		if e.Generation != 2 {
			t.Errorf("event %d should carry generation 2, got %d", i+4, e.Generation)
		}
	}

	seg := events[2]
	if seg.Type != EventTypeSegmentCreated || seg.From == nil || seg.To == nil {
		t.Errorf("segment event missing endpoints: %+v", seg)
	}
	if *seg.To != (pipe.Vec3{X: 3}) {
		t.Errorf("segment To = %v, want (3,0,0)", *seg.To)
	}
}
