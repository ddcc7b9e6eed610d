package sim

import (
	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
)

// Agent owns one pipe's growth state. It drives the shared GrowthPolicy
// once per tick and reports the geometry it emits to the Observer.
//
// Invariant: Pos is always an occupied cell in the grid, from the moment
// the agent spawns until the generation is discarded.
type Agent struct {
	ID      int
	Pos     pipe.Vec3
	LastDir pipe.Direction
	HasDir  bool

	joints   []pipe.Vec3
	segments []pipe.Segment
}

// SpawnAgent places a new pipe at a uniformly random unoccupied cell
// inside the policy bounds, claims that cell, and emits the initial
// joint. Colliding start positions are redrawn rather than double
// claimed; after spawnRetries misses the bounds are scanned for the
// first free cell. The caller guarantees the grid has a free cell.
func SpawnAgent(id int, bounds pipe.Bounds, occ Occupancy, rng Rand, obs Observer) *Agent {
	pos, ok := randomFreeCell(bounds, occ, rng)
	if !ok {
		// Construction-time validation keeps cell count >= pipe count,
		// so a fresh generation can always place every agent.
		panic("sim: no free cell for agent spawn")
	}
	occ.SetOccupied(pos)
	a := &Agent{ID: id, Pos: pos}
	a.joints = append(a.joints, pos)
	obs.JointCreated(id, pos)
	return a
}

const spawnRetries = 64

func randomFreeCell(bounds pipe.Bounds, occ Occupancy, rng Rand) (pipe.Vec3, bool) {
	for i := 0; i < spawnRetries; i++ {
		p := pipe.Vec3{
			X: bounds.Min.X + rng.IntN(bounds.Max.X-bounds.Min.X+1),
			Y: bounds.Min.Y + rng.IntN(bounds.Max.Y-bounds.Min.Y+1),
			Z: bounds.Min.Z + rng.IntN(bounds.Max.Z-bounds.Min.Z+1),
		}
		if !occ.IsOccupied(p) {
			return p, true
		}
	}
	// Dense grid fallback: deterministic scan for the first free cell.
	for x := bounds.Min.X; x <= bounds.Max.X; x++ {
		for y := bounds.Min.Y; y <= bounds.Max.Y; y++ {
			for z := bounds.Min.Z; z <= bounds.Max.Z; z++ {
				p := pipe.Vec3{X: x, Y: y, Z: z}
				if !occ.IsOccupied(p) {
					return p, true
				}
			}
		}
	}
	return pipe.Vec3{}, false
}

// Tick attempts one growth step. It returns true when the pipe grew.
// A false return means every candidate direction failed validation this
// tick; that is routine control flow, not an error, and leaves the
// agent and grid untouched.
func (a *Agent) Tick(policy *GrowthPolicy, occ Occupancy, rng Rand, obs Observer) bool {
	step, ok := policy.Decide(a.Pos, a.LastDir, a.HasDir, occ, rng)
	if !ok {
		return false
	}

	from := a.Pos
	a.Pos = step.End
	a.LastDir = step.Dir
	a.HasDir = true

	seg := pipe.Segment{From: from, To: step.End}
	a.segments = append(a.segments, seg)
	a.joints = append(a.joints, step.End)

	obs.SegmentCreated(a.ID, from, step.End)
	obs.JointCreated(a.ID, step.End)
	return true
}

// Joints returns the joints emitted so far, in creation order.
func (a *Agent) Joints() []pipe.Vec3 { return a.joints }

// Segments returns the segments emitted so far, in creation order.
func (a *Agent) Segments() []pipe.Segment { return a.segments }
