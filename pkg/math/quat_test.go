package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatRotate(t *testing.T) {
	tests := []struct {
		name string
		q    Quat
		v    Vec3
		want Vec3
	}{
		{
			name: "identity leaves vector unchanged",
			q:    QuatIdentity(),
			v:    Vec3{X: 1, Y: 2, Z: 3},
			want: Vec3{X: 1, Y: 2, Z: 3},
		},
		{
			name: "90 degrees around Y maps +X to -Z",
			q:    QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2)),
			v:    Vec3{X: 1},
			want: Vec3{Z: -1},
		},
		{
			name: "90 degrees around X maps +Y to +Z",
			q:    QuatFromAxisAngle(Vec3{X: 1}, float32(math.Pi/2)),
			v:    Vec3{Y: 1},
			want: Vec3{Z: 1},
		},
		{
			name: "180 degrees around Z negates X",
			q:    QuatFromAxisAngle(Vec3{Z: 1}, float32(math.Pi)),
			v:    Vec3{X: 1},
			want: Vec3{X: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.q.Rotate(tt.v)
			if got.Distance(tt.want) > 0.0001 {
				t.Errorf("Rotate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestQuatRotatePreservesLength(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{X: 0.267, Y: 0.535, Z: 0.802}, 1.3)
	v := Vec3{X: 3, Y: -4, Z: 12}

	got := q.Rotate(v)
	if math.Abs(float64(got.Length()-v.Length())) > 0.001 {
		t.Errorf("rotation changed vector length: %v -> %v", v.Length(), got.Length())
	}
}

func TestQuatConjugateUndoesRotation(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Y: 1}, 0.7)
	v := Vec3{X: 1, Y: 2, Z: 3}

	back := q.Conjugate().Rotate(q.Rotate(v))
	if back.Distance(v) > 0.0001 {
		t.Errorf("conjugate did not undo rotation: got %+v, want %+v", back, v)
	}
}

func TestQuatMulComposesRotations(t *testing.T) {
	// Two 45 degree rotations around Y equal one 90 degree rotation.
	half := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/4))
	full := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2))

	composed := half.Mul(half)
	v := Vec3{X: 1}

	if composed.Rotate(v).Distance(full.Rotate(v)) > 0.0001 {
		t.Errorf("composed rotation disagrees with direct rotation")
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y axis
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	expectedW := float32(math.Cos(math.Pi / 4))
	expectedY := float32(math.Sin(math.Pi / 4))

	if math.Abs(float64(q.W-expectedW)) > 0.001 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if math.Abs(float64(q.Y-expectedY)) > 0.001 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}
}
