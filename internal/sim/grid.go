package sim

import (
	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
)

// Occupancy is the capability handed to agents and the growth policy.
// They depend only on this interface, never on the grid's internals or
// on the controller that owns it.
type Occupancy interface {
	IsOccupied(p pipe.Vec3) bool
	SetOccupied(p pipe.Vec3)
}

// OccupancyGrid tracks which lattice cells have been claimed by any pipe.
// Cells are never released individually; only Clear (a full reset) empties it.
type OccupancyGrid struct {
	cells map[pipe.Vec3]struct{}
}

// NewOccupancyGrid creates an empty grid.
func NewOccupancyGrid() *OccupancyGrid {
	return &OccupancyGrid{cells: make(map[pipe.Vec3]struct{})}
}

// IsOccupied reports whether the cell has been claimed.
func (g *OccupancyGrid) IsOccupied(p pipe.Vec3) bool {
	_, ok := g.cells[p]
	return ok
}

// SetOccupied idempotently claims the cell.
func (g *OccupancyGrid) SetOccupied(p pipe.Vec3) {
	g.cells[p] = struct{}{}
}

// Clear removes all occupancy. Used only by generation resets.
func (g *OccupancyGrid) Clear() {
	g.cells = make(map[pipe.Vec3]struct{})
}

// Len returns the number of claimed cells.
func (g *OccupancyGrid) Len() int { return len(g.cells) }
