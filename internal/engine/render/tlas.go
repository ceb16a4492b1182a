package render

import (
	gomath "math"
	"sort"

	"github.com/hollowpoint-games/hollowpoint/internal/engine/geometry"
	"github.com/hollowpoint-games/hollowpoint/internal/engine/scene"
	"github.com/hollowpoint-games/hollowpoint/pkg/math"
)

// aabb is an axis-aligned bounding box.
type aabb struct {
	min, max math.Vec3
}

func emptyAABB() aabb {
	inf := float32(gomath.Inf(1))
	return aabb{
		min: math.Vec3{X: inf, Y: inf, Z: inf},
		max: math.Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

func (b *aabb) extend(p math.Vec3) {
	b.min = b.min.Min(p)
	b.max = b.max.Max(p)
}

func (b *aabb) merge(o aabb) {
	b.min = b.min.Min(o.min)
	b.max = b.max.Max(o.max)
}

func (b aabb) centroid() math.Vec3 {
	return b.min.Add(b.max).Scale(0.5)
}

// hitSlab is the slab test; returns false when the ray misses the box within
// (0, tMax).
func (b aabb) hitSlab(origin, invDir math.Vec3, tMax float32) bool {
	t0 := (b.min.X - origin.X) * invDir.X
	t1 := (b.max.X - origin.X) * invDir.X
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	tNear, tFar := t0, t1

	t0 = (b.min.Y - origin.Y) * invDir.Y
	t1 = (b.max.Y - origin.Y) * invDir.Y
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	if t0 > tNear {
		tNear = t0
	}
	if t1 < tFar {
		tFar = t1
	}

	t0 = (b.min.Z - origin.Z) * invDir.Z
	t1 = (b.max.Z - origin.Z) * invDir.Z
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	if t0 > tNear {
		tNear = t0
	}
	if t1 < tFar {
		tFar = t1
	}

	return tNear <= tFar && tFar > 0 && tNear < tMax
}

// bvhNode is one node of a flattened median-split BVH. Leaves hold a range
// into the builder's reordered primitive list; internal nodes hold child
// indices.
type bvhNode struct {
	bounds      aabb
	left, right int32
	start       int32
	count       int32
}

const bvhLeafSize = 4

// buildBVH builds a median-split BVH over the given primitive bounds and
// returns the node list plus the primitive order. Node 0 is the root.
func buildBVH(bounds []aabb) (nodes []bvhNode, order []int32) {
	order = make([]int32, len(bounds))
	for i := range order {
		order[i] = int32(i)
	}
	if len(bounds) == 0 {
		return nil, order
	}

	var build func(start, count int32) int32
	build = func(start, count int32) int32 {
		node := bvhNode{bounds: emptyAABB(), left: -1, right: -1}
		for _, p := range order[start : start+count] {
			node.bounds.merge(bounds[p])
		}

		if count <= bvhLeafSize {
			node.start = start
			node.count = count
			nodes = append(nodes, node)
			return int32(len(nodes) - 1)
		}

		// Split at the median along the widest centroid axis.
		size := node.bounds.max.Sub(node.bounds.min)
		axis := 0
		if size.Y > size.X {
			axis = 1
		}
		if size.Z > size.X && size.Z > size.Y {
			axis = 2
		}

		slice := order[start : start+count]
		sort.Slice(slice, func(i, j int) bool {
			return axisValue(bounds[slice[i]].centroid(), axis) <
				axisValue(bounds[slice[j]].centroid(), axis)
		})

		nodeIdx := int32(len(nodes))
		nodes = append(nodes, node)

		half := count / 2
		left := build(start, half)
		right := build(start+half, count-half)
		nodes[nodeIdx].left = left
		nodes[nodeIdx].right = right
		return nodeIdx
	}

	build(0, int32(len(bounds)))
	return nodes, order
}

func axisValue(v math.Vec3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// blasTriangle is one pre-fetched triangle of a bottom-level structure.
type blasTriangle struct {
	p0, e1, e2 math.Vec3 // vertex 0 and edge vectors, Moller-Trumbore form
	prim       uint32
}

// BLAS is the per-mesh bottom-level acceleration structure: a BVH over the
// mesh's triangles in local space. Built once per mesh at load time.
type BLAS struct {
	nodes  []bvhNode
	tris   []blasTriangle
	bounds aabb
}

// BuildBLAS reads the mesh's triangles from the geometry buffer and builds
// its local-space BVH.
func BuildBLAS(buf *geometry.Buffer, mesh geometry.Mesh) *BLAS {
	primCount := mesh.IndexCount / 3

	bounds := make([]aabb, primCount)
	tris := make([]blasTriangle, primCount)
	for prim := uint32(0); prim < primCount; prim++ {
		i0, i1, i2 := buf.TriangleIndices(mesh, prim)
		stride := uint32(mesh.VertexStride)
		p0 := buf.Position(mesh.VertexOffset, stride, i0)
		p1 := buf.Position(mesh.VertexOffset, stride, i1)
		p2 := buf.Position(mesh.VertexOffset, stride, i2)

		tris[prim] = blasTriangle{p0: p0, e1: p1.Sub(p0), e2: p2.Sub(p0), prim: prim}

		b := emptyAABB()
		b.extend(p0)
		b.extend(p1)
		b.extend(p2)
		bounds[prim] = b
	}

	nodes, order := buildBVH(bounds)

	ordered := make([]blasTriangle, primCount)
	for i, p := range order {
		ordered[i] = tris[p]
	}

	root := emptyAABB()
	if len(nodes) > 0 {
		root = nodes[0].bounds
	}
	return &BLAS{nodes: nodes, tris: ordered, bounds: root}
}

// blasHit is an intersection in mesh-local space.
type blasHit struct {
	t    float32
	u, v float32 // barycentric weights of vertices 1 and 2
	prim uint32
}

// intersect finds the closest triangle hit along the local-space ray within
// (epsilon, tMax).
func (b *BLAS) intersect(origin, dir math.Vec3, tMax float32) (blasHit, bool) {
	if len(b.nodes) == 0 {
		return blasHit{}, false
	}

	invDir := math.Vec3{X: 1 / dir.X, Y: 1 / dir.Y, Z: 1 / dir.Z}
	best := blasHit{t: tMax}
	found := false

	var stack [64]int32
	top := 0
	stack[top] = 0
	top++

	for top > 0 {
		top--
		node := &b.nodes[stack[top]]
		if !node.bounds.hitSlab(origin, invDir, best.t) {
			continue
		}

		if node.left < 0 {
			for _, tri := range b.tris[node.start : node.start+node.count] {
				if t, u, v, ok := intersectTriangle(tri, origin, dir, best.t); ok {
					best = blasHit{t: t, u: u, v: v, prim: tri.prim}
					found = true
				}
			}
			continue
		}

		stack[top] = node.left
		top++
		stack[top] = node.right
		top++
	}

	return best, found
}

const rayEpsilon = 1e-4

// intersectTriangle is the Moller-Trumbore test against a precomputed
// triangle, accepting hits from either side.
func intersectTriangle(tri blasTriangle, origin, dir math.Vec3, tMax float32) (t, u, v float32, ok bool) {
	pvec := dir.Cross(tri.e2)
	det := tri.e1.Dot(pvec)
	if det > -1e-9 && det < 1e-9 {
		return 0, 0, 0, false
	}
	invDet := 1 / det

	tvec := origin.Sub(tri.p0)
	u = tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(tri.e1)
	v = dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = tri.e2.Dot(qvec) * invDet
	if t <= rayEpsilon || t >= tMax {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// tlasInstance is one placed mesh inside the top-level structure.
type tlasInstance struct {
	blas             *BLAS
	meshIdx          uint32
	modelInstanceIdx uint32
	invRotation      math.Quat
	translation      math.Vec3
}

// TLAS is the top-level acceleration structure: a BVH over the world-space
// bounds of every mesh instance, rebuilt each frame from the instance
// tables. Rays are transformed into mesh-local space at the leaves.
type TLAS struct {
	nodes     []bvhNode
	instances []tlasInstance
}

// Hit identifies the closest surface along a ray.
type Hit struct {
	T                float32
	MeshIdx          uint32
	ModelInstanceIdx uint32
	Prim             uint32
	U, V             float32
}

// BuildTLAS builds the top-level structure over all mesh instances. blases
// is indexed by mesh.
func BuildTLAS(blases []*BLAS, meshInstances []scene.MeshInstance, modelInstances []scene.ModelInstance) *TLAS {
	instances := make([]tlasInstance, len(meshInstances))
	bounds := make([]aabb, len(meshInstances))

	for i, mi := range meshInstances {
		model := modelInstances[mi.ModelInstanceIdx]
		blas := blases[mi.MeshIdx]

		instances[i] = tlasInstance{
			blas:             blas,
			meshIdx:          mi.MeshIdx,
			modelInstanceIdx: mi.ModelInstanceIdx,
			invRotation:      model.Rotation.Conjugate(),
			translation:      model.Translation,
		}

		// World bounds: rotate the eight local corners.
		world := emptyAABB()
		lb := blas.bounds
		for _, corner := range [8]math.Vec3{
			{X: lb.min.X, Y: lb.min.Y, Z: lb.min.Z},
			{X: lb.max.X, Y: lb.min.Y, Z: lb.min.Z},
			{X: lb.min.X, Y: lb.max.Y, Z: lb.min.Z},
			{X: lb.max.X, Y: lb.max.Y, Z: lb.min.Z},
			{X: lb.min.X, Y: lb.min.Y, Z: lb.max.Z},
			{X: lb.max.X, Y: lb.min.Y, Z: lb.max.Z},
			{X: lb.min.X, Y: lb.max.Y, Z: lb.max.Z},
			{X: lb.max.X, Y: lb.max.Y, Z: lb.max.Z},
		} {
			world.extend(model.Rotation.Rotate(corner).Add(model.Translation))
		}
		bounds[i] = world
	}

	nodes, order := buildBVH(bounds)

	ordered := make([]tlasInstance, len(instances))
	for i, p := range order {
		ordered[i] = instances[p]
	}

	return &TLAS{nodes: nodes, instances: ordered}
}

// Intersect finds the closest hit along the world-space ray within
// (epsilon, tMax).
func (t *TLAS) Intersect(origin, dir math.Vec3, tMax float32) (Hit, bool) {
	if len(t.nodes) == 0 {
		return Hit{}, false
	}

	invDir := math.Vec3{X: 1 / dir.X, Y: 1 / dir.Y, Z: 1 / dir.Z}
	best := Hit{T: tMax}
	found := false

	var stack [64]int32
	top := 0
	stack[top] = 0
	top++

	for top > 0 {
		top--
		node := &t.nodes[stack[top]]
		if !node.bounds.hitSlab(origin, invDir, best.T) {
			continue
		}

		if node.left < 0 {
			for i := node.start; i < node.start+node.count; i++ {
				inst := &t.instances[i]

				localOrigin := inst.invRotation.Rotate(origin.Sub(inst.translation))
				localDir := inst.invRotation.Rotate(dir)

				if hit, ok := inst.blas.intersect(localOrigin, localDir, best.T); ok {
					best = Hit{
						T:                hit.t,
						MeshIdx:          inst.meshIdx,
						ModelInstanceIdx: inst.modelInstanceIdx,
						Prim:             hit.prim,
						U:                hit.u,
						V:                hit.v,
					}
					found = true
				}
			}
			continue
		}

		stack[top] = node.left
		top++
		stack[top] = node.right
		top++
	}

	return best, found
}

// Occluded reports whether anything blocks the ray within (epsilon, tMax).
func (t *TLAS) Occluded(origin, dir math.Vec3, tMax float32) bool {
	_, hit := t.Intersect(origin, dir, tMax)
	return hit
}
