// Package pipe defines the core domain types for the pipe simulation.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package pipe

import (
	"fmt"
	"math"
)

// Vec3 is an integer lattice position. It is comparable and is used
// directly as an occupancy map key.
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Add returns v translated by d.
func (v Vec3) Add(d Vec3) Vec3 {
	return Vec3{X: v.X + d.X, Y: v.Y + d.Y, Z: v.Z + d.Z}
}

// Scale returns v with every component multiplied by n.
func (v Vec3) Scale(n int) Vec3 {
	return Vec3{X: v.X * n, Y: v.Y * n, Z: v.Z * n}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

// CellOf maps continuous coordinates onto the cell lattice.
// Components are rounded half-up: ties go toward positive infinity,
// so CellOf(0.5, -0.5, 1.5) = (1, 0, 2).
func CellOf(x, y, z float64) Vec3 {
	return Vec3{X: roundHalfUp(x), Y: roundHalfUp(y), Z: roundHalfUp(z)}
}

func roundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}

// Direction is one of the six unit axis vectors.
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Directions enumerates all six axis directions a pipe can grow along.
var Directions = [6]Direction{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// Vec returns the direction as a translation vector.
func (d Direction) Vec() Vec3 {
	return Vec3{X: d.X, Y: d.Y, Z: d.Z}
}

func (d Direction) String() string {
	switch {
	case d.X == 1:
		return "+X"
	case d.X == -1:
		return "-X"
	case d.Y == 1:
		return "+Y"
	case d.Y == -1:
		return "-Y"
	case d.Z == 1:
		return "+Z"
	case d.Z == -1:
		return "-Z"
	}
	return "?"
}

// Bounds is an axis-aligned box with inclusive integer limits.
// Fixed at construction; never mutated during a run.
type Bounds struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// DefaultBounds is the [-10,10]^3 cube used when no bounds are configured.
var DefaultBounds = Bounds{
	Min: Vec3{X: -10, Y: -10, Z: -10},
	Max: Vec3{X: 10, Y: 10, Z: 10},
}

// Validate reports whether Min <= Max on every axis.
func (b Bounds) Validate() error {
	if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z {
		return fmt.Errorf("invalid bounds: min %s exceeds max %s", b.Min, b.Max)
	}
	return nil
}

// Contains reports whether p lies inside the box, inclusive on all axes.
func (b Bounds) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// CellCount returns the number of lattice cells inside the box.
func (b Bounds) CellCount() int {
	return (b.Max.X - b.Min.X + 1) * (b.Max.Y - b.Min.Y + 1) * (b.Max.Z - b.Min.Z + 1)
}

// Segment is the straight connector emitted between a pipe's position
// before and after one successful growth step.
type Segment struct {
	From Vec3 `json:"from"`
	To   Vec3 `json:"to"`
}
