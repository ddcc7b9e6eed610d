package sim

import (
	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
)

// DefaultMaxSegmentLen is the longest run of cells a single growth step
// may claim when no override is configured.
const DefaultMaxSegmentLen = 10

// GrowthPolicy is the pure decision logic for one growth step. It holds
// no per-pipe state; agents pass their position and last direction in.
type GrowthPolicy struct {
	Bounds        pipe.Bounds
	MaxSegmentLen int
}

// NewGrowthPolicy creates a policy for the given bounds.
func NewGrowthPolicy(bounds pipe.Bounds, maxSegmentLen int) *GrowthPolicy {
	if maxSegmentLen <= 0 {
		maxSegmentLen = DefaultMaxSegmentLen
	}
	return &GrowthPolicy{Bounds: bounds, MaxSegmentLen: maxSegmentLen}
}

// Step is the outcome of a successful growth decision.
type Step struct {
	Dir   pipe.Direction
	End   pipe.Vec3
	Cells []pipe.Vec3 // every claimed cell, in walk order, endpoint last
}

// Decide picks the next growth step from pos.
//
// Candidates are the six axis directions minus the exact last direction
// (when hasLast is set), so consecutive steps never continue straight;
// the opposite direction stays legal.
// Candidates are scanned in uniformly shuffled order. For each, a segment
// length is drawn uniformly from [1, MaxSegmentLen] and the straight path
// is validated cell by cell: every step must stay inside the bounds and
// land on an unoccupied cell. The first valid candidate wins and all of
// its cells are claimed; if none is valid, ok is false and nothing is
// mutated.
func (gp *GrowthPolicy) Decide(pos pipe.Vec3, last pipe.Direction, hasLast bool, occ Occupancy, rng Rand) (Step, bool) {
	var candidates [6]pipe.Direction
	n := 0
	for _, d := range pipe.Directions {
		if hasLast && d == last {
			continue
		}
		candidates[n] = d
		n++
	}

	rng.Shuffle(n, func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, dir := range candidates[:n] {
		length := 1 + rng.IntN(gp.MaxSegmentLen)
		cells, ok := gp.walk(pos, dir, length, occ)
		if !ok {
			continue
		}
		for _, c := range cells {
			occ.SetOccupied(c)
		}
		return Step{Dir: dir, End: cells[len(cells)-1], Cells: cells}, true
	}
	return Step{}, false
}

// walk validates the straight path of length steps from pos along dir.
// It returns the visited cells (excluding pos itself) only if every one
// is in bounds and unoccupied.
func (gp *GrowthPolicy) walk(pos pipe.Vec3, dir pipe.Direction, length int, occ Occupancy) ([]pipe.Vec3, bool) {
	cells := make([]pipe.Vec3, 0, length)
	cur := pos
	for i := 0; i < length; i++ {
		cur = cur.Add(dir.Vec())
		if !gp.Bounds.Contains(cur) || occ.IsOccupied(cur) {
			return nil, false
		}
		cells = append(cells, cur)
	}
	return cells, true
}
