package render

import (
	"github.com/hollowpoint-games/hollowpoint/internal/engine/camera"
	"github.com/hollowpoint-games/hollowpoint/internal/engine/scene"
	"github.com/hollowpoint-games/hollowpoint/pkg/math"
	"github.com/hollowpoint-games/hollowpoint/pkg/simt"
)

// RayTracePipeline shades the scene by tracing one primary ray per pixel
// through the top-level acceleration structure, plus a shadow ray per hit.
// One dispatch covers the whole framebuffer; each lane owns one pixel, so
// no two lanes ever write the same output.
type RayTracePipeline struct {
	dev *simt.Device

	// Shading constants, matched to the raster path so switching the
	// technique mid-game does not shift the scene's look.
	LightDir math.Vec3
	Ambient  float32

	SkyZenith  math.Vec3
	SkyHorizon math.Vec3
}

// NewRayTracePipeline creates the pipeline on the given device.
func NewRayTracePipeline(dev *simt.Device) *RayTracePipeline {
	return &RayTracePipeline{
		dev:        dev,
		LightDir:   math.Vec3{X: 0.4, Y: 1, Z: 0.3}.Normalize(),
		Ambient:    0.35,
		SkyZenith:  math.Vec3{X: 0.25, Y: 0.45, Z: 0.85},
		SkyHorizon: math.Vec3{X: 0.75, Y: 0.85, Z: 0.95},
	}
}

const shadowStrength = 0.6

// Record traces the scene into the framebuffer.
func (p *RayTracePipeline) Record(fb *Framebuffer, in FrameInput, tlas *TLAS, cam *camera.FPSCamera) {
	width := fb.Width()
	height := fb.Height()
	pixelCount := width * height

	p.dev.Dispatch(p.dev.WorkgroupCount(pixelCount), func(inv *simt.Invocation) {
		id := inv.GlobalID()
		if id >= pixelCount {
			return
		}
		x := id % width
		y := id / width

		origin, dir := cam.PrimaryRay(x, y, width, height)

		hit, ok := tlas.Intersect(origin, dir, cam.Far)
		if !ok {
			fb.SetColor(x, y, p.miss(dir))
			return
		}

		fb.SetColor(x, y, p.closestHit(in, tlas, origin, dir, hit))
	})
}

// closestHit shades one intersection: interpolated vertex attributes, the
// instance's material, lambert lighting and an occlusion test toward the
// light.
func (p *RayTracePipeline) closestHit(in FrameInput, tlas *TLAS, origin, dir math.Vec3, hit Hit) math.Vec3 {
	mesh := in.Meshes[hit.MeshIdx]
	instance := in.ModelInstances[hit.ModelInstanceIdx]

	i0, i1, i2 := in.Geometry.TriangleIndices(mesh, hit.Prim)
	v0 := in.Geometry.ReadVertex(mesh, i0)
	v1 := in.Geometry.ReadVertex(mesh, i1)
	v2 := in.Geometry.ReadVertex(mesh, i2)

	w0 := 1 - hit.U - hit.V
	u := w0*v0.TexCoord[0] + hit.U*v1.TexCoord[0] + hit.V*v2.TexCoord[0]
	v := w0*v0.TexCoord[1] + hit.U*v1.TexCoord[1] + hit.V*v2.TexCoord[1]

	material := in.Materials[instance.MaterialIndices[mesh.Material]]
	albedo := in.Textures.Lookup(material.ColorIndex).Sample(u, v)
	if material.Flags&scene.MaterialEmissive != 0 {
		return albedo
	}

	localNormal := v0.Normal.Scale(w0).
		Add(v1.Normal.Scale(hit.U)).
		Add(v2.Normal.Scale(hit.V))
	normal := instance.Rotation.Rotate(localNormal).Normalize()

	diffuse := normal.Dot(p.LightDir)
	if diffuse < 0 {
		diffuse = -diffuse
	}

	// Shadow ray from just off the surface toward the light.
	point := origin.Add(dir.Scale(hit.T))
	shadowOrigin := point.Add(normal.Scale(1e-3))
	if tlas.Occluded(shadowOrigin, p.LightDir, 1000) {
		diffuse *= 1 - shadowStrength
	}

	return albedo.Scale(p.Ambient + (1-p.Ambient)*diffuse)
}

// miss returns the sky gradient for a primary ray that leaves the scene.
func (p *RayTracePipeline) miss(dir math.Vec3) math.Vec3 {
	t := (dir.Y + 1) * 0.5
	return p.SkyHorizon.Scale(1 - t).Add(p.SkyZenith.Scale(t))
}
