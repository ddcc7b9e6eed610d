package sim

import (
	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
)

// scriptedRand replays a fixed list of IntN answers and never shuffles,
// so tests can steer the policy deterministically. Values are taken
// modulo n to stay in range.
type scriptedRand struct {
	ints []int
	i    int
}

func (r *scriptedRand) IntN(n int) int {
	if n <= 0 {
		panic("IntN with non-positive n")
	}
	if r.i >= len(r.ints) {
		return 0
	}
	v := r.ints[r.i] % n
	r.i++
	return v
}

func (r *scriptedRand) Shuffle(n int, swap func(i, j int)) {}

// recordingObserver captures every observer callback in order.
type recordingObserver struct {
	generations []int
	joints      map[int][]pipe.Vec3
	segments    map[int][]pipe.Segment
	removed     []int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		joints:   make(map[int][]pipe.Vec3),
		segments: make(map[int][]pipe.Segment),
	}
}

func (o *recordingObserver) GenerationStarted(generation int) {
	o.generations = append(o.generations, generation)
}

func (o *recordingObserver) JointCreated(pipeID int, at pipe.Vec3) {
	o.joints[pipeID] = append(o.joints[pipeID], at)
}

func (o *recordingObserver) SegmentCreated(pipeID int, from, to pipe.Vec3) {
	o.segments[pipeID] = append(o.segments[pipeID], pipe.Segment{From: from, To: to})
}

func (o *recordingObserver) PipeRemoved(pipeID int) {
	o.removed = append(o.removed, pipeID)
}

func (o *recordingObserver) allJoints() []pipe.Vec3 {
	var all []pipe.Vec3
	for _, js := range o.joints {
		all = append(all, js...)
	}
	return all
}
