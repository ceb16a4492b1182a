package render

import (
	gomath "math"
	"math/rand"
	"testing"

	"github.com/hollowpoint-games/hollowpoint/internal/engine/geometry"
	"github.com/hollowpoint-games/hollowpoint/pkg/math"
	"github.com/hollowpoint-games/hollowpoint/pkg/simt"
)

// positionBuffer packs bare positions (stride 3) into a geometry buffer.
func positionBuffer(t *testing.T, positions []math.Vec3) *geometry.Buffer {
	t.Helper()

	var data []float32
	for _, p := range positions {
		data = append(data, p.X, p.Y, p.Z)
	}

	var buf geometry.Buffer
	buf.AppendMesh(geometry.MeshData{
		Indices:      []uint32{0, 0},
		VertexData:   data,
		VertexStride: 3,
	})
	return &buf
}

// vertexBase returns the float offset of the first vertex: two u16 indices
// then padding to 4-byte alignment.
const vertexBase = 1

func absDiff(a, b float32) float32 {
	return float32(gomath.Abs(float64(a - b)))
}

func TestBoundingSphereTwoPoints(t *testing.T) {
	p := NewBoundingSpherePipeline(simt.NewDevice(32))
	buf := positionBuffer(t, []math.Vec3{
		{X: 2, Y: 1, Z: -1},
		{X: 6, Y: 1, Z: -1},
	})

	sphere := p.Compute(buf, 2, vertexBase, 3)

	want := math.Vec3{X: 4, Y: 1, Z: -1}
	if sphere.Center.Distance(want) > 1e-4 {
		t.Errorf("center = %+v, want %+v", sphere.Center, want)
	}
	// Farthest vertex is 2 away; the squared form is stored.
	if absDiff(sphere.RadiusSq, 4) > 1e-4 {
		t.Errorf("RadiusSq = %v, want 4", sphere.RadiusSq)
	}
}

func TestBoundingSphereSingleVertex(t *testing.T) {
	p := NewBoundingSpherePipeline(simt.NewDevice(32))
	buf := positionBuffer(t, []math.Vec3{{X: 1, Y: 2, Z: 3}})

	sphere := p.Compute(buf, 1, vertexBase, 3)

	if sphere.Center.Distance(math.Vec3{X: 1, Y: 2, Z: 3}) > 1e-6 {
		t.Errorf("center = %+v, want the vertex itself", sphere.Center)
	}
	if sphere.RadiusSq != 0 {
		t.Errorf("RadiusSq = %v, want 0", sphere.RadiusSq)
	}
}

func TestBoundingSphereOutliers(t *testing.T) {
	// 29 vertices at the origin except two at +-2 on X; the average stays
	// at the origin only if the outliers cancel, which they do here.
	positions := make([]math.Vec3, 29)
	positions[4] = math.Vec3{X: -2}
	positions[23] = math.Vec3{X: 2}

	p := NewBoundingSpherePipeline(simt.NewDevice(32))
	buf := positionBuffer(t, positions)

	sphere := p.Compute(buf, 29, vertexBase, 3)

	if sphere.Center.Length() > 1e-4 {
		t.Errorf("center = %+v, want origin", sphere.Center)
	}
	if absDiff(sphere.RadiusSq, 4) > 1e-4 {
		t.Errorf("RadiusSq = %v, want 4", sphere.RadiusSq)
	}
}

func TestBoundingSphereUnitCube(t *testing.T) {
	var positions []math.Vec3
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				positions = append(positions, math.Vec3{
					X: float32(x), Y: float32(y), Z: float32(z),
				})
			}
		}
	}

	p := NewBoundingSpherePipeline(simt.NewDevice(32))
	buf := positionBuffer(t, positions)

	sphere := p.Compute(buf, 8, vertexBase, 3)

	want := math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	if sphere.Center.Distance(want) > 1e-4 {
		t.Errorf("center = %+v, want %+v", sphere.Center, want)
	}
	// Corner distance is sqrt(3)/2, so squared radius is 3/4.
	if absDiff(sphere.RadiusSq, 0.75) > 1e-4 {
		t.Errorf("RadiusSq = %v, want 0.75", sphere.RadiusSq)
	}
}

func TestBoundingSphereContainsAllVertices(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	positions := make([]math.Vec3, 10_000)
	for i := range positions {
		positions[i] = math.Vec3{
			X: rng.Float32()*20 - 10,
			Y: rng.Float32()*20 - 10,
			Z: rng.Float32()*20 - 10,
		}
	}

	p := NewBoundingSpherePipeline(simt.NewDevice(32))
	buf := positionBuffer(t, positions)

	sphere := p.Compute(buf, uint32(len(positions)), vertexBase, 3)

	// Small tolerance for the float reduction order.
	limit := sphere.RadiusSq * (1 + 1e-5)
	for i, pos := range positions {
		if sphere.Center.DistanceSq(pos) > limit {
			t.Fatalf("vertex %d outside sphere: distSq %v > %v",
				i, sphere.Center.DistanceSq(pos), sphere.RadiusSq)
		}
	}
}

func TestBoundingSphereMultiRoundReduction(t *testing.T) {
	// A narrow device forces several reduction rounds even for modest
	// vertex counts: 100 vertices, subgroup 4 -> 25 -> 7 -> 2 -> 1.
	positions := make([]math.Vec3, 100)
	for i := range positions {
		positions[i] = math.Vec3{X: float32(i)}
	}

	p := NewBoundingSpherePipeline(simt.NewDevice(4))
	buf := positionBuffer(t, positions)

	sphere := p.Compute(buf, 100, vertexBase, 3)

	if absDiff(sphere.Center.X, 49.5) > 1e-3 {
		t.Errorf("center.X = %v, want 49.5", sphere.Center.X)
	}
	if absDiff(sphere.RadiusSq, 49.5*49.5) > 1e-1 {
		t.Errorf("RadiusSq = %v, want %v", sphere.RadiusSq, 49.5*49.5)
	}
}

func TestBoundingSphereIdempotent(t *testing.T) {
	// Rerunning the pipeline on unchanged vertex data must reproduce the
	// sphere exactly: the reduction order is fixed by lane numbering, not
	// by scheduling.
	rng := rand.New(rand.NewSource(7))
	positions := make([]math.Vec3, 500)
	for i := range positions {
		positions[i] = math.Vec3{
			X: rng.Float32()*8 - 4,
			Y: rng.Float32()*8 - 4,
			Z: rng.Float32()*8 - 4,
		}
	}

	p := NewBoundingSpherePipeline(simt.NewDevice(8))
	buf := positionBuffer(t, positions)

	first := p.Compute(buf, uint32(len(positions)), vertexBase, 3)
	second := p.Compute(buf, uint32(len(positions)), vertexBase, 3)

	if first != second {
		t.Errorf("recomputed sphere differs: %+v vs %+v", first, second)
	}
}

func TestBoundingSphereStridedVertices(t *testing.T) {
	// Full 12-float vertices: only positions may influence the result.
	var data []float32
	for i := 0; i < 4; i++ {
		data = append(data,
			float32(i), 0, 0,
			0, 99, 0, // normal noise
			7, 7, // texcoord noise
			9, 9, 9, 9, // tangent noise
		)
	}

	var buf geometry.Buffer
	mesh, count := buf.AppendMesh(geometry.MeshData{
		Indices:      []uint32{0, 1, 2},
		VertexData:   data,
		VertexStride: 12,
	})

	p := NewBoundingSpherePipeline(simt.NewDevice(32))
	sphere := p.Compute(&buf, count, mesh.VertexOffset, uint32(mesh.VertexStride))

	if absDiff(sphere.Center.X, 1.5) > 1e-4 || sphere.Center.Y != 0 {
		t.Errorf("center = %+v, want (1.5, 0, 0)", sphere.Center)
	}
	if absDiff(sphere.RadiusSq, 2.25) > 1e-4 {
		t.Errorf("RadiusSq = %v, want 2.25", sphere.RadiusSq)
	}
}
