package render

import (
	"github.com/hollowpoint-games/hollowpoint/internal/engine/geometry"
	"github.com/hollowpoint-games/hollowpoint/pkg/math"
	"github.com/hollowpoint-games/hollowpoint/pkg/simt"
)

// BoundingSphere is a mesh bound: the average vertex position and the
// squared distance from it to the farthest vertex. Consumers needing the
// linear radius take the square root themselves; keeping the squared form
// lets distance tests skip the root on their side too.
type BoundingSphere struct {
	Center   math.Vec3
	RadiusSq float32
}

// Contains reports whether the point lies inside the sphere.
func (s BoundingSphere) Contains(p math.Vec3) bool {
	return s.Center.DistanceSq(p) <= s.RadiusSq
}

// BoundingSpherePipeline computes mesh bounding spheres with four kernels:
// per-workgroup partial averages, a recursive average reduction, per-workgroup
// maximum squared distances to the reduced center, and a recursive max
// reduction. Partial averages carry their vertex weight so unevenly filled
// workgroups reduce exactly.
type BoundingSpherePipeline struct {
	dev *simt.Device
}

// NewBoundingSpherePipeline creates the pipeline on the given device.
func NewBoundingSpherePipeline(dev *simt.Device) *BoundingSpherePipeline {
	return &BoundingSpherePipeline{dev: dev}
}

// weighted partial average: position sum already divided by W, weight in W.
type avgPartial struct {
	avg    math.Vec3
	weight float32
}

// Compute derives the bounding sphere of vertexCount vertices read from the
// geometry buffer at vertexOffset with the given stride (both in floats).
// vertexCount must not be zero.
func (p *BoundingSpherePipeline) Compute(buf *geometry.Buffer, vertexCount, vertexOffset, vertexStride uint32) BoundingSphere {
	if vertexCount == 0 {
		panic("render: bounding sphere of empty mesh")
	}

	workgroupCount := p.dev.WorkgroupCount(vertexCount)

	avgPartials := make([]avgPartial, workgroupCount)
	p.dev.Dispatch(workgroupCount, func(inv *simt.Invocation) {
		if inv.GlobalID() >= vertexCount {
			return
		}
		pos := buf.Position(vertexOffset, vertexStride, inv.GlobalID())

		sum := simt.Reduce(inv, pos, math.Vec3.Add)
		count := simt.Sum(inv, float32(1))
		if simt.Elect(inv) {
			avgPartials[inv.WorkgroupID()] = avgPartial{
				avg:    sum.Scale(1 / count),
				weight: count,
			}
		}
	})

	center := p.reduceAvg(avgPartials).avg

	distSqPartials := make([]float32, workgroupCount)
	p.dev.Dispatch(workgroupCount, func(inv *simt.Invocation) {
		if inv.GlobalID() >= vertexCount {
			return
		}
		pos := buf.Position(vertexOffset, vertexStride, inv.GlobalID())

		distSq := simt.Max(inv, center.DistanceSq(pos))
		if simt.Elect(inv) {
			distSqPartials[inv.WorkgroupID()] = distSq
		}
	})

	radiusSq := p.reduceDistSq(distSqPartials)

	return BoundingSphere{Center: center, RadiusSq: radiusSq}
}

// reduceAvg folds weighted partial averages until one remains, shrinking by
// the subgroup size each round.
func (p *BoundingSpherePipeline) reduceAvg(partials []avgPartial) avgPartial {
	input := partials
	for len(input) > 1 {
		inputLen := uint32(len(input))
		reduceCount := p.dev.WorkgroupCount(inputLen)
		output := make([]avgPartial, reduceCount)

		p.dev.Dispatch(reduceCount, func(inv *simt.Invocation) {
			if inv.GlobalID() >= inputLen {
				return
			}
			partial := input[inv.GlobalID()]

			weightedSum := simt.Reduce(inv, partial.avg.Scale(partial.weight), math.Vec3.Add)
			weight := simt.Sum(inv, partial.weight)
			if simt.Elect(inv) {
				output[inv.WorkgroupID()] = avgPartial{
					avg:    weightedSum.Scale(1 / weight),
					weight: weight,
				}
			}
		})

		input = output
	}
	return input[0]
}

// reduceDistSq folds per-workgroup maxima until one remains.
func (p *BoundingSpherePipeline) reduceDistSq(partials []float32) float32 {
	input := partials
	for len(input) > 1 {
		inputLen := uint32(len(input))
		reduceCount := p.dev.WorkgroupCount(inputLen)
		output := make([]float32, reduceCount)

		p.dev.Dispatch(reduceCount, func(inv *simt.Invocation) {
			if inv.GlobalID() >= inputLen {
				return
			}
			m := simt.Max(inv, input[inv.GlobalID()])
			if simt.Elect(inv) {
				output[inv.WorkgroupID()] = m
			}
		})

		input = output
	}
	return input[0]
}
