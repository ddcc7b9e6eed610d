package sim

import (
	"testing"

	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
)

func bigBounds() pipe.Bounds {
	return pipe.Bounds{Min: pipe.Vec3{X: -20, Y: -20, Z: -20}, Max: pipe.Vec3{X: 20, Y: 20, Z: 20}}
}

func TestPolicyExcludesLastDirection(t *testing.T) {
	gp := NewGrowthPolicy(bigBounds(), 10)
	g := NewOccupancyGrid()
	pos := pipe.Vec3{}
	g.SetOccupied(pos)

	// Identity shuffle: without exclusion the first candidate would be
	// +X. With last = +X the scan must start at -X instead.
	rng := &scriptedRand{ints: []int{0}} // L = 1 for the first candidate
	step, ok := gp.Decide(pos, pipe.Direction{X: 1}, true, g, rng)
	if !ok {
		t.Fatal("expected a valid step")
	}
	if step.Dir != (pipe.Direction{X: -1}) {
		t.Errorf("expected first candidate -X after excluding +X, got %v", step.Dir)
	}
}

func TestPolicyAllowsReversalAfterPerpendicularStep(t *testing.T) {
	// Only the exact last direction is excluded; its opposite is a
	// legal candidate.
	gp := NewGrowthPolicy(bigBounds(), 10)
	g := NewOccupancyGrid()
	pos := pipe.Vec3{}
	g.SetOccupied(pos)

	rng := &scriptedRand{ints: []int{0}}
	step, ok := gp.Decide(pos, pipe.Direction{X: 1}, true, g, rng)
	if !ok || step.Dir != (pipe.Direction{X: -1}) {
		t.Fatalf("expected -X to be a legal candidate when last was +X, got %v ok=%v", step.Dir, ok)
	}
}

func TestPolicyRejectsOutOfBoundsPath(t *testing.T) {
	bounds := pipe.Bounds{Min: pipe.Vec3{}, Max: pipe.Vec3{X: 2, Y: 2, Z: 2}}
	gp := NewGrowthPolicy(bounds, 10)
	g := NewOccupancyGrid()
	pos := pipe.Vec3{X: 2, Y: 2, Z: 2}
	g.SetOccupied(pos)

	// +X draws L=5 and leaves the box; -X draws L=1 and is valid.
	rng := &scriptedRand{ints: []int{4, 0}}
	step, ok := gp.Decide(pos, pipe.Direction{}, false, g, rng)
	if !ok {
		t.Fatal("expected a valid step")
	}
	if step.Dir != (pipe.Direction{X: -1}) {
		t.Errorf("expected -X after +X failed bounds check, got %v", step.Dir)
	}
	if !g.IsOccupied(pipe.Vec3{X: 1, Y: 2, Z: 2}) {
		t.Error("endpoint of the chosen step should be claimed")
	}
}

func TestPolicyFailsWhenSurrounded(t *testing.T) {
	gp := NewGrowthPolicy(bigBounds(), 10)
	g := NewOccupancyGrid()
	pos := pipe.Vec3{}
	g.SetOccupied(pos)
	for _, d := range pipe.Directions {
		g.SetOccupied(pos.Add(d.Vec()))
	}
	before := g.Len()

	rng := &scriptedRand{ints: []int{0, 0, 0, 0, 0, 0}}
	_, ok := gp.Decide(pos, pipe.Direction{}, false, g, rng)
	if ok {
		t.Fatal("expected failure when every neighbor is occupied")
	}
	if g.Len() != before {
		t.Errorf("failed decision must not mutate the grid: %d -> %d cells", before, g.Len())
	}
}

func TestPolicyClaimsEveryPathCell(t *testing.T) {
	gp := NewGrowthPolicy(bigBounds(), 10)
	g := NewOccupancyGrid()
	pos := pipe.Vec3{}
	g.SetOccupied(pos)

	// +X draws L=4.
	rng := &scriptedRand{ints: []int{3}}
	step, ok := gp.Decide(pos, pipe.Direction{}, false, g, rng)
	if !ok {
		t.Fatal("expected a valid step")
	}
	if step.End != (pipe.Vec3{X: 4}) {
		t.Errorf("expected endpoint (4,0,0), got %v", step.End)
	}
	if len(step.Cells) != 4 {
		t.Fatalf("expected 4 claimed cells, got %d", len(step.Cells))
	}
	for i := 1; i <= 4; i++ {
		c := pipe.Vec3{X: i}
		if !g.IsOccupied(c) {
			t.Errorf("intermediate cell %v should be claimed", c)
		}
	}
}

func TestPolicySegmentLengthStaysInRange(t *testing.T) {
	gp := NewGrowthPolicy(bigBounds(), 10)
	g := NewOccupancyGrid()
	rng := NewRNG(99)

	pos := pipe.Vec3{}
	g.SetOccupied(pos)
	last := pipe.Direction{}
	hasLast := false

	for i := 0; i < 200; i++ {
		step, ok := gp.Decide(pos, last, hasLast, g, rng)
		if !ok {
			break
		}
		if n := len(step.Cells); n < 1 || n > 10 {
			t.Fatalf("segment length %d outside [1,10]", n)
		}
		pos = step.End
		last = step.Dir
		hasLast = true
	}
}
