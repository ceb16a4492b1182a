package scene

import (
	"testing"

	"github.com/hollowpoint-games/hollowpoint/internal/engine/geometry"
	"github.com/hollowpoint-games/hollowpoint/pkg/math"
)

// triangleMesh returns minimal mesh data for table tests.
func triangleMesh(material uint8) geometry.MeshData {
	return geometry.MeshData{
		Indices:      []uint32{0, 1, 2},
		VertexData:   make([]float32, 3*12),
		VertexStride: 12,
		Material:     material,
	}
}

func TestAddModelAndInstances(t *testing.T) {
	s := New()
	matA := s.AddMaterial(Material{ColorIndex: 0})
	matB := s.AddMaterial(Material{ColorIndex: 1, Flags: MaterialEmissive})

	// Two-mesh model and a one-mesh model.
	twoMesh := s.AddModel([]geometry.MeshData{triangleMesh(0), triangleMesh(1)})
	oneMesh := s.AddModel([]geometry.MeshData{triangleMesh(0)})

	if twoMesh.MeshIdx != 0 || oneMesh.MeshIdx != 2 {
		t.Fatalf("mesh indices = %d, %d, want 0, 2", twoMesh.MeshIdx, oneMesh.MeshIdx)
	}

	s.AddInstance(twoMesh, []uint32{matA, matB}, math.Vec3{X: 1}, math.QuatIdentity())
	s.AddInstance(oneMesh, []uint32{matB}, math.Vec3{Z: -3}, math.QuatIdentity())
	s.AddInstance(oneMesh, []uint32{matA}, math.Vec3{}, math.QuatIdentity())

	if got := s.MeshInstanceTotal(); got != 4 {
		t.Errorf("MeshInstanceTotal = %d, want 4", got)
	}

	counts := s.MeshInstanceCounts()
	want := []uint32{1, 1, 2}
	for i, c := range counts {
		if c != want[i] {
			t.Errorf("mesh %d instance count = %d, want %d", i, c, want[i])
		}
	}

	instances := s.MeshInstances()
	if len(instances) != 4 {
		t.Fatalf("len(MeshInstances) = %d, want 4", len(instances))
	}
	// First placed instance covers meshes 0 and 1 of model 0.
	if instances[0].MeshIdx != 0 || instances[1].MeshIdx != 1 {
		t.Errorf("first instance meshes = %d, %d, want 0, 1",
			instances[0].MeshIdx, instances[1].MeshIdx)
	}
	if instances[0].ModelInstanceIdx != instances[1].ModelInstanceIdx {
		t.Errorf("split model instance across mesh instances")
	}
}

func TestMaterialSlotsRepeatFirst(t *testing.T) {
	s := New()
	model := s.AddModel([]geometry.MeshData{triangleMesh(0)})
	id := s.AddInstance(model, []uint32{7, 9}, math.Vec3{}, math.QuatIdentity())

	inst, ok := s.Instance(id)
	if !ok {
		t.Fatal("instance not found")
	}
	if inst.MaterialIndices[0] != 7 || inst.MaterialIndices[1] != 9 {
		t.Errorf("explicit slots = %v", inst.MaterialIndices[:2])
	}
	for slot := 2; slot < MaxMaterialsPerModel; slot++ {
		if inst.MaterialIndices[slot] != 7 {
			t.Errorf("slot %d = %d, want first entry 7", slot, inst.MaterialIndices[slot])
		}
	}
}

func TestRemoveInstanceSwapRemove(t *testing.T) {
	s := New()
	model := s.AddModel([]geometry.MeshData{triangleMesh(0)})

	a := s.AddInstance(model, nil, math.Vec3{X: 1}, math.QuatIdentity())
	b := s.AddInstance(model, nil, math.Vec3{X: 2}, math.QuatIdentity())
	c := s.AddInstance(model, nil, math.Vec3{X: 3}, math.QuatIdentity())

	s.RemoveInstance(a)

	if got := s.MeshInstanceTotal(); got != 2 {
		t.Errorf("MeshInstanceTotal after remove = %d, want 2", got)
	}
	if _, ok := s.Instance(a); ok {
		t.Errorf("removed instance still resolvable")
	}

	// Survivors keep their data despite the table compaction.
	instB, ok := s.Instance(b)
	if !ok || instB.Translation.X != 2 {
		t.Errorf("instance b = %+v, ok=%v", instB, ok)
	}
	instC, ok := s.Instance(c)
	if !ok || instC.Translation.X != 3 {
		t.Errorf("instance c = %+v, ok=%v", instC, ok)
	}

	// Removing twice is a no-op.
	s.RemoveInstance(a)
	if got := s.MeshInstanceTotal(); got != 2 {
		t.Errorf("MeshInstanceTotal after double remove = %d, want 2", got)
	}
}

func TestSetInstanceTransformAndMaterial(t *testing.T) {
	s := New()
	model := s.AddModel([]geometry.MeshData{triangleMesh(0)})
	id := s.AddInstance(model, []uint32{1}, math.Vec3{}, math.QuatIdentity())

	rot := math.QuatFromAxisAngle(math.Vec3{Y: 1}, 1.5)
	s.SetInstanceTransform(id, math.Vec3{X: 5, Y: 6, Z: 7}, rot)
	s.SetInstanceMaterial(id, 3, 42)

	inst, _ := s.Instance(id)
	if inst.Translation != (math.Vec3{X: 5, Y: 6, Z: 7}) {
		t.Errorf("translation = %+v", inst.Translation)
	}
	if inst.Rotation != rot {
		t.Errorf("rotation = %+v", inst.Rotation)
	}
	if inst.MaterialIndices[3] != 42 {
		t.Errorf("material slot 3 = %d, want 42", inst.MaterialIndices[3])
	}

	// Out-of-range slot is ignored.
	s.SetInstanceMaterial(id, MaxMaterialsPerModel, 99)
}
