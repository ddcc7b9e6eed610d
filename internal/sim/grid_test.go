package sim

import (
	"testing"

	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
)

func TestGridSetAndQuery(t *testing.T) {
	g := NewOccupancyGrid()
	p := pipe.Vec3{X: 1, Y: -2, Z: 3}

	if g.IsOccupied(p) {
		t.Error("fresh grid should have no occupied cells")
	}

	g.SetOccupied(p)
	if !g.IsOccupied(p) {
		t.Error("cell should be occupied immediately after SetOccupied")
	}
	if g.IsOccupied(pipe.Vec3{X: 1, Y: -2, Z: 4}) {
		t.Error("neighboring cell should not be occupied")
	}
}

func TestGridSetIsIdempotent(t *testing.T) {
	g := NewOccupancyGrid()
	p := pipe.Vec3{X: 0, Y: 0, Z: 0}

	g.SetOccupied(p)
	g.SetOccupied(p)

	if g.Len() != 1 {
		t.Errorf("double claim should count once, got %d cells", g.Len())
	}
	if !g.IsOccupied(p) {
		t.Error("cell should remain occupied")
	}
}

func TestGridOccupancyPersistsUntilClear(t *testing.T) {
	g := NewOccupancyGrid()
	cells := []pipe.Vec3{{X: 0, Y: 0, Z: 0}, {X: 5, Y: 5, Z: 5}, {X: -3, Y: 2, Z: -1}}

	for _, c := range cells {
		g.SetOccupied(c)
	}
	for _, c := range cells {
		if !g.IsOccupied(c) {
			t.Errorf("cell %v should stay occupied until Clear", c)
		}
	}

	g.Clear()
	if g.Len() != 0 {
		t.Errorf("Clear should empty the grid, %d cells left", g.Len())
	}
	for _, c := range cells {
		if g.IsOccupied(c) {
			t.Errorf("cell %v should be free after Clear", c)
		}
	}
}
