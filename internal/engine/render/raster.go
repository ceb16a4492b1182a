package render

import (
	"sync/atomic"

	"github.com/hollowpoint-games/hollowpoint/internal/engine/geometry"
	"github.com/hollowpoint-games/hollowpoint/internal/engine/scene"
	"github.com/hollowpoint-games/hollowpoint/internal/engine/texture"
	"github.com/hollowpoint-games/hollowpoint/pkg/math"
	"github.com/hollowpoint-games/hollowpoint/pkg/simt"
)

// FrameInput is the per-frame state shared by both shading paths.
type FrameInput struct {
	Geometry       *geometry.Buffer
	Meshes         []geometry.Mesh
	Materials      []scene.Material
	Textures       *texture.Table
	MeshInstances  []scene.MeshInstance
	ModelInstances []scene.ModelInstance
}

// RasterPipeline draws the culled scene through two dispatch phases. The
// vertex phase walks the indirect draw commands and appends clipped
// screen-space triangles with an atomic counter; the fragment phase gives
// each lane exclusive rows of the framebuffer, so depth test and color write
// need no synchronization.
type RasterPipeline struct {
	dev *simt.Device

	// Shading constants
	LightDir math.Vec3
	Ambient  float32
}

// NewRasterPipeline creates the pipeline on the given device.
func NewRasterPipeline(dev *simt.Device) *RasterPipeline {
	return &RasterPipeline{
		dev:      dev,
		LightDir: math.Vec3{X: 0.4, Y: 1, Z: 0.3}.Normalize(),
		Ambient:  0.35,
	}
}

type screenVertex struct {
	x, y float32 // pixel coordinates
	z    float32 // ndc depth
	invW float32
	u, v float32 // texcoord over w
	nrm  math.Vec3
}

type screenTriangle struct {
	v        [3]screenVertex
	tex      *texture.Texture
	emissive bool
}

// Record rasterizes the culled draw state into the framebuffer.
func (p *RasterPipeline) Record(fb *Framebuffer, in FrameInput, draw CullOutput, projectionView math.Mat4) {
	triangles := p.setupTriangles(fb, in, draw, projectionView)
	if len(triangles) == 0 {
		return
	}
	p.shadeRows(fb, triangles)
}

// setupTriangles runs the vertex stage: one dispatch per draw command, one
// lane per (instance, primitive) pair.
func (p *RasterPipeline) setupTriangles(fb *Framebuffer, in FrameInput, draw CullOutput, projectionView math.Mat4) []screenTriangle {
	var capacity uint32
	for _, cmd := range draw.Commands {
		capacity += cmd.InstanceCount * (cmd.IndexCount / 3)
	}
	if capacity == 0 {
		return nil
	}

	triangles := make([]screenTriangle, capacity)
	var triangleCount uint32

	width := float32(fb.Width())
	height := float32(fb.Height())

	for m, cmd := range draw.Commands {
		primCount := cmd.IndexCount / 3
		laneCount := cmd.InstanceCount * primCount
		if laneCount == 0 {
			continue
		}

		mesh := in.Meshes[m]

		p.dev.Dispatch(p.dev.WorkgroupCount(laneCount), func(inv *simt.Invocation) {
			id := inv.GlobalID()
			if id >= laneCount {
				return
			}
			slot := id / primCount
			prim := id % primCount

			// Draw instances hold global mesh-instance indices; the model
			// instance is resolved through the mesh-instance table.
			meshInstance := in.MeshInstances[draw.DrawInstances[cmd.BaseInstance+slot]]
			instance := in.ModelInstances[meshInstance.ModelInstanceIdx]
			materialIdx := instance.MaterialIndices[mesh.Material]
			material := in.Materials[materialIdx]

			i0, i1, i2 := in.Geometry.TriangleIndices(mesh, prim)

			var tri screenTriangle
			tri.tex = in.Textures.Lookup(material.ColorIndex)
			tri.emissive = material.Flags&scene.MaterialEmissive != 0

			for c, idx := range [3]uint32{i0, i1, i2} {
				vert := in.Geometry.ReadVertex(mesh, idx)
				world := instance.Rotation.Rotate(vert.Position).Add(instance.Translation)
				clip := projectionView.MulVec4(math.Vec4{world.X, world.Y, world.Z, 1})

				// Whole-triangle reject at the near plane instead of
				// clipping; demo geometry is small relative to the level.
				if clip[3] < 1e-4 {
					return
				}

				invW := 1 / clip[3]
				tri.v[c] = screenVertex{
					x:    (clip[0]*invW + 1) * 0.5 * width,
					y:    (1 - clip[1]*invW) * 0.5 * height,
					z:    clip[2] * invW,
					invW: invW,
					u:    vert.TexCoord[0] * invW,
					v:    vert.TexCoord[1] * invW,
					nrm:  instance.Rotation.Rotate(vert.Normal),
				}
			}

			out := atomic.AddUint32(&triangleCount, 1) - 1
			triangles[out] = tri
		})
	}

	return triangles[:triangleCount]
}

// shadeRows runs the fragment stage: each lane owns one framebuffer row.
func (p *RasterPipeline) shadeRows(fb *Framebuffer, triangles []screenTriangle) {
	height := fb.Height()
	width := fb.Width()

	p.dev.Dispatch(p.dev.WorkgroupCount(height), func(inv *simt.Invocation) {
		y := inv.GlobalID()
		if y >= height {
			return
		}
		rowCenter := float32(y) + 0.5

		for t := range triangles {
			tri := &triangles[t]

			minY, maxY := boundsY(tri)
			if rowCenter < minY || rowCenter > maxY {
				continue
			}

			minX, maxX := boundsX(tri, width)
			for x := minX; x <= maxX; x++ {
				p.shadePixel(fb, tri, x, y)
			}
		}
	})
}

func (p *RasterPipeline) shadePixel(fb *Framebuffer, tri *screenTriangle, x, y uint32) {
	px := float32(x) + 0.5
	py := float32(y) + 0.5

	b0, b1, b2, inside := barycentric(tri, px, py)
	if !inside {
		return
	}

	depth := b0*tri.v[0].z + b1*tri.v[1].z + b2*tri.v[2].z
	if !fb.TestAndSet(x, y, depth) {
		return
	}

	// Perspective-correct texcoords; normals interpolate linearly, which is
	// close enough at demo triangle sizes.
	invW := b0*tri.v[0].invW + b1*tri.v[1].invW + b2*tri.v[2].invW
	u := (b0*tri.v[0].u + b1*tri.v[1].u + b2*tri.v[2].u) / invW
	v := (b0*tri.v[0].v + b1*tri.v[1].v + b2*tri.v[2].v) / invW

	albedo := tri.tex.Sample(u, v)
	if tri.emissive {
		fb.SetColor(x, y, albedo)
		return
	}

	normal := tri.v[0].nrm.Scale(b0).
		Add(tri.v[1].nrm.Scale(b1)).
		Add(tri.v[2].nrm.Scale(b2)).
		Normalize()

	diffuse := normal.Dot(p.LightDir)
	if diffuse < 0 {
		diffuse = -diffuse // two-sided shading
	}

	fb.SetColor(x, y, albedo.Scale(p.Ambient+(1-p.Ambient)*diffuse))
}

// barycentric returns the barycentric weights of (px, py), accepting either
// winding order.
func barycentric(tri *screenTriangle, px, py float32) (b0, b1, b2 float32, inside bool) {
	x0, y0 := tri.v[0].x, tri.v[0].y
	x1, y1 := tri.v[1].x, tri.v[1].y
	x2, y2 := tri.v[2].x, tri.v[2].y

	area := (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
	if area == 0 {
		return 0, 0, 0, false
	}

	b0 = ((x1-px)*(y2-py) - (x2-px)*(y1-py)) / area
	b1 = ((x2-px)*(y0-py) - (x0-px)*(y2-py)) / area
	b2 = 1 - b0 - b1

	if b0 < 0 || b1 < 0 || b2 < 0 {
		return 0, 0, 0, false
	}
	return b0, b1, b2, true
}

func boundsY(tri *screenTriangle) (minY, maxY float32) {
	minY = minf3(tri.v[0].y, tri.v[1].y, tri.v[2].y)
	maxY = maxf3(tri.v[0].y, tri.v[1].y, tri.v[2].y)
	return minY, maxY
}

func boundsX(tri *screenTriangle, width uint32) (minX, maxX uint32) {
	lo := minf3(tri.v[0].x, tri.v[1].x, tri.v[2].x)
	hi := maxf3(tri.v[0].x, tri.v[1].x, tri.v[2].x)

	if lo < 0 {
		lo = 0
	}
	if hi > float32(width-1) {
		hi = float32(width - 1)
	}
	if hi < lo {
		return 1, 0 // empty range
	}
	return uint32(lo), uint32(hi)
}

func minf3(a, b, c float32) float32 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func maxf3(a, b, c float32) float32 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
