package pipe

import "testing"

func TestCellOfRoundsHalfUp(t *testing.T) {
	cases := []struct {
		x, y, z float64
		want    Vec3
	}{
		{0, 0, 0, Vec3{0, 0, 0}},
		{0.4, 0.5, 0.6, Vec3{0, 1, 1}},
		{-0.4, -0.5, -0.6, Vec3{0, 0, -1}},
		{-1.5, 1.5, 2.49, Vec3{-1, 2, 2}},
		{3.0, -3.0, 10.0, Vec3{3, -3, 10}},
	}

	for _, c := range cases {
		got := CellOf(c.x, c.y, c.z)
		if got != c.want {
			t.Errorf("CellOf(%v,%v,%v) = %v, want %v", c.x, c.y, c.z, got, c.want)
		}
	}
}

func TestBoundsValidate(t *testing.T) {
	good := Bounds{Min: Vec3{-1, -1, -1}, Max: Vec3{1, 1, 1}}
	if err := good.Validate(); err != nil {
		t.Errorf("expected valid bounds, got %v", err)
	}

	bad := Bounds{Min: Vec3{2, 0, 0}, Max: Vec3{1, 1, 1}}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for min > max, got nil")
	}
}

func TestBoundsContainsInclusive(t *testing.T) {
	b := Bounds{Min: Vec3{-2, -2, -2}, Max: Vec3{2, 2, 2}}

	if !b.Contains(Vec3{-2, -2, -2}) {
		t.Error("min corner should be inside (inclusive)")
	}
	if !b.Contains(Vec3{2, 2, 2}) {
		t.Error("max corner should be inside (inclusive)")
	}
	if b.Contains(Vec3{3, 0, 0}) {
		t.Error("cell past max should be outside")
	}
	if b.Contains(Vec3{0, -3, 0}) {
		t.Error("cell past min should be outside")
	}
}

func TestBoundsCellCount(t *testing.T) {
	b := Bounds{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}
	if got := b.CellCount(); got != 8 {
		t.Errorf("2x2x2 cube should hold 8 cells, got %d", got)
	}

	if got := DefaultBounds.CellCount(); got != 21*21*21 {
		t.Errorf("default bounds should hold %d cells, got %d", 21*21*21, got)
	}
}

func TestDirectionsAreUnitAxes(t *testing.T) {
	seen := map[Direction]bool{}
	for _, d := range Directions {
		abs := d.X*d.X + d.Y*d.Y + d.Z*d.Z
		if abs != 1 {
			t.Errorf("direction %v is not a unit axis vector", d)
		}
		if seen[d] {
			t.Errorf("duplicate direction %v", d)
		}
		seen[d] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 distinct directions, got %d", len(seen))
	}
}
