package math

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}

	got := x.Cross(y)
	if got.Distance(Vec3{Z: 1}) > 0.0001 {
		t.Errorf("X cross Y should be Z, got %+v", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{X: 3, Y: 4, Z: 0}
	n := v.Normalize()

	if math.Abs(float64(n.Length()-1)) > 0.0001 {
		t.Errorf("normalized length should be 1, got %v", n.Length())
	}
	if math.Abs(float64(n.X-0.6)) > 0.0001 || math.Abs(float64(n.Y-0.8)) > 0.0001 {
		t.Errorf("normalize direction wrong: %+v", n)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	n := (Vec3{}).Normalize()
	if n != (Vec3{}) {
		t.Errorf("normalizing zero vector should return zero, got %+v", n)
	}
}

func TestVec3DistanceSq(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 6, Z: 3}

	if got := a.DistanceSq(b); got != 25 {
		t.Errorf("DistanceSq = %v, want 25", got)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{X: 1, Y: 5, Z: -2}
	b := Vec3{X: 3, Y: 2, Z: -4}

	if got := a.Min(b); got != (Vec3{X: 1, Y: 2, Z: -4}) {
		t.Errorf("Min = %+v", got)
	}
	if got := a.Max(b); got != (Vec3{X: 3, Y: 5, Z: -2}) {
		t.Errorf("Max = %+v", got)
	}
}
