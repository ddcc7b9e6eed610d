package sim

import (
	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
)

// Observer receives geometry change notifications as pipes grow. The
// rendering side of the system lives entirely behind this interface;
// the simulation never learns what consumes its geometry.
//
// Notifications are append-only: a joint or segment, once reported, is
// never moved or retracted. PipeRemoved is reported for every live pipe
// at the start of a generation reset, before new pipes spawn.
type Observer interface {
	GenerationStarted(generation int)
	JointCreated(pipeID int, at pipe.Vec3)
	SegmentCreated(pipeID int, from, to pipe.Vec3)
	PipeRemoved(pipeID int)
}

// NopObserver discards all notifications. Useful for headless runs.
type NopObserver struct{}

func (NopObserver) GenerationStarted(int)                    {}
func (NopObserver) JointCreated(int, pipe.Vec3)              {}
func (NopObserver) SegmentCreated(int, pipe.Vec3, pipe.Vec3) {}
func (NopObserver) PipeRemoved(int)                          {}
