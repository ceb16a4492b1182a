// Package scene holds the flat instance tables the rendering pipelines
// consume: materials, meshes packed into the shared geometry buffer, model
// instances (a placed model with per-instance materials and transform) and
// mesh instances (the join between one mesh asset and one placed model).
// Relationships are integer indices into parallel arrays, never pointers.
package scene

import (
	"github.com/hollowpoint-games/hollowpoint/internal/engine/geometry"
	"github.com/hollowpoint-games/hollowpoint/pkg/math"
)

// MaxMaterialsPerModel is the number of material override slots carried by
// every model instance.
const MaxMaterialsPerModel = 8

// MaterialFlags is the per-material flag byte.
type MaterialFlags uint8

// MaterialEmissive marks materials that are shaded at full brightness.
const MaterialEmissive MaterialFlags = 1 << 0

// Material references the texture a mesh is shaded with. ColorIndex points
// into the texture table; keeping it in range is the asset code's job.
type Material struct {
	ColorIndex uint32
	Flags      MaterialFlags
}

// MeshInstance joins one mesh asset to one placed model instance.
type MeshInstance struct {
	MeshIdx          uint32
	ModelInstanceIdx uint32
}

// ModelInstance places a model in the world with instance-specific material
// overrides, one per mesh material slot.
type ModelInstance struct {
	MaterialIndices [MaxMaterialsPerModel]uint32
	Rotation        math.Quat
	Translation     math.Vec3
	ModelIdx        uint32
}

// Model is a handle to a loaded model: the index of its first mesh record
// and its position in the model table.
type Model struct {
	MeshIdx  uint32
	ModelIdx uint32
}

// InstanceID is a stable handle to a placed model instance. Table indices
// shift on removal (swap-remove); IDs never do.
type InstanceID uint64

// Scene is the arena behind all instance tables.
type Scene struct {
	Geometry geometry.Buffer

	meshes       []geometry.Mesh
	vertexCounts []uint32
	materials    []Material

	modelFirstMesh []uint32
	modelMeshCount []uint32

	instances     []ModelInstance
	instanceIDs   []InstanceID
	instanceIndex map[InstanceID]int
	nextID        InstanceID

	meshInstanceCounts []uint32
	meshInstanceTotal  uint32
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		instanceIndex: make(map[InstanceID]int),
	}
}

// AddMaterial registers a material and returns its table index.
func (s *Scene) AddMaterial(m Material) uint32 {
	s.materials = append(s.materials, m)
	return uint32(len(s.materials) - 1)
}

// AddModel packs the model's meshes into the geometry buffer and returns a
// handle for placing instances.
func (s *Scene) AddModel(meshes []geometry.MeshData) Model {
	model := Model{
		MeshIdx:  uint32(len(s.meshes)),
		ModelIdx: uint32(len(s.modelMeshCount)),
	}

	for _, data := range meshes {
		mesh, vertexCount := s.Geometry.AppendMesh(data)
		s.meshes = append(s.meshes, mesh)
		s.vertexCounts = append(s.vertexCounts, vertexCount)
		s.meshInstanceCounts = append(s.meshInstanceCounts, 0)
	}
	s.modelFirstMesh = append(s.modelFirstMesh, model.MeshIdx)
	s.modelMeshCount = append(s.modelMeshCount, uint32(len(meshes)))

	return model
}

// AddInstance places a model instance. materials fills the override slots in
// order; missing slots repeat the first entry, extras are ignored.
func (s *Scene) AddInstance(model Model, materials []uint32, translation math.Vec3, rotation math.Quat) InstanceID {
	id := s.nextID
	s.nextID++

	s.instanceIndex[id] = len(s.instances)
	s.instanceIDs = append(s.instanceIDs, id)
	s.instances = append(s.instances, ModelInstance{
		MaterialIndices: materialSlots(materials),
		Rotation:        rotation,
		Translation:     translation,
		ModelIdx:        model.ModelIdx,
	})

	meshCount := s.modelMeshCount[model.ModelIdx]
	for m := model.MeshIdx; m < model.MeshIdx+meshCount; m++ {
		s.meshInstanceCounts[m]++
	}
	s.meshInstanceTotal += meshCount

	return id
}

// RemoveInstance removes a placed instance. The last instance is swapped
// into the freed table slot, so indices of other instances may change but
// their IDs remain valid.
func (s *Scene) RemoveInstance(id InstanceID) {
	idx, ok := s.instanceIndex[id]
	if !ok {
		return
	}
	delete(s.instanceIndex, id)

	removed := s.instances[idx]
	first := s.modelFirstMesh[removed.ModelIdx]
	count := s.modelMeshCount[removed.ModelIdx]
	for m := first; m < first+count; m++ {
		s.meshInstanceCounts[m]--
	}
	s.meshInstanceTotal -= count

	last := len(s.instances) - 1
	s.instances[idx] = s.instances[last]
	s.instanceIDs[idx] = s.instanceIDs[last]
	s.instances = s.instances[:last]
	s.instanceIDs = s.instanceIDs[:last]

	if idx < last {
		s.instanceIndex[s.instanceIDs[idx]] = idx
	}
}

// SetInstanceTransform updates an instance's placement.
func (s *Scene) SetInstanceTransform(id InstanceID, translation math.Vec3, rotation math.Quat) {
	if idx, ok := s.instanceIndex[id]; ok {
		s.instances[idx].Translation = translation
		s.instances[idx].Rotation = rotation
	}
}

// SetInstanceMaterial overrides one material slot of a placed instance.
func (s *Scene) SetInstanceMaterial(id InstanceID, slot int, material uint32) {
	if idx, ok := s.instanceIndex[id]; ok && slot >= 0 && slot < MaxMaterialsPerModel {
		s.instances[idx].MaterialIndices[slot] = material
	}
}

// Instance returns the current record behind a handle.
func (s *Scene) Instance(id InstanceID) (ModelInstance, bool) {
	idx, ok := s.instanceIndex[id]
	if !ok {
		return ModelInstance{}, false
	}
	return s.instances[idx], true
}

// InstanceIDAt maps a model-instance table index back to its handle.
func (s *Scene) InstanceIDAt(idx uint32) InstanceID {
	return s.instanceIDs[idx]
}

// Meshes returns the mesh record table.
func (s *Scene) Meshes() []geometry.Mesh {
	return s.meshes
}

// VertexCount returns the vertex count of a mesh, which the mesh record
// itself does not carry.
func (s *Scene) VertexCount(meshIdx uint32) uint32 {
	return s.vertexCounts[meshIdx]
}

// Materials returns the material table.
func (s *Scene) Materials() []Material {
	return s.materials
}

// ModelInstances returns the flat model-instance table.
func (s *Scene) ModelInstances() []ModelInstance {
	return s.instances
}

// MeshInstanceCounts returns the number of placed instances per mesh.
func (s *Scene) MeshInstanceCounts() []uint32 {
	return s.meshInstanceCounts
}

// MeshInstanceTotal returns the total number of mesh instances.
func (s *Scene) MeshInstanceTotal() uint32 {
	return s.meshInstanceTotal
}

// MeshInstances builds the flat mesh-instance table: one entry per
// (mesh, placed model) pair, in model-instance order.
func (s *Scene) MeshInstances() []MeshInstance {
	out := make([]MeshInstance, 0, s.meshInstanceTotal)
	for instanceIdx, instance := range s.instances {
		first := s.modelFirstMesh[instance.ModelIdx]
		count := s.modelMeshCount[instance.ModelIdx]
		for offset := uint32(0); offset < count; offset++ {
			out = append(out, MeshInstance{
				MeshIdx:          first + offset,
				ModelInstanceIdx: uint32(instanceIdx),
			})
		}
	}
	return out
}

// materialSlots pads or truncates material indices to the fixed slot count,
// repeating the first entry for unfilled slots.
func materialSlots(materials []uint32) [MaxMaterialsPerModel]uint32 {
	var slots [MaxMaterialsPerModel]uint32
	if len(materials) == 0 {
		return slots
	}
	for i := range slots {
		if i < len(materials) {
			slots[i] = materials[i]
		} else {
			slots[i] = materials[0]
		}
	}
	return slots
}
