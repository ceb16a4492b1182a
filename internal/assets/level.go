// Package assets builds the demo level procedurally: meshes, textures,
// materials and instance placement all come from code, so the game runs
// without any data files on disk. Individual textures can be overridden
// with TGA or PNG files from a skins directory.
package assets

import (
	gomath "math"

	"github.com/hollowpoint-games/hollowpoint/internal/engine/geometry"
	"github.com/hollowpoint-games/hollowpoint/internal/engine/scene"
	"github.com/hollowpoint-games/hollowpoint/internal/engine/texture"
	"github.com/hollowpoint-games/hollowpoint/pkg/math"
)

// Level is the loaded arena: the scene tables, the texture table and the
// gameplay handles the game loop needs.
type Level struct {
	Scene    *scene.Scene
	Textures *texture.Table

	PlayerSpawn math.Vec3
	EyeHeight   float32

	// WalkExtent bounds player movement to |x|,|z| <= WalkExtent, keeping
	// the camera inside the walls.
	WalkExtent float32

	// Shootable targets by instance handle; true once the target has been
	// hit and re-skinned, so the next hit destroys it.
	Targets map[scene.InstanceID]bool

	// TargetHitMaterial is the override applied to a target on its first hit.
	TargetHitMaterial uint32
}

const (
	arenaSize  = 40.0
	wallHeight = 6.0
)

// BuildArena constructs the demo arena: a floored, walled square with
// pillars and a ring of floating target panels. skinsDir optionally names a
// directory of per-surface texture overrides; empty keeps everything
// procedural.
func BuildArena(skinsDir string) *Level {
	s := scene.New()
	textures := texture.NewTable()

	floorTex := textures.Add(skin(skinsDir, "floor", texture.Grid(128, 16,
		math.Vec3{X: 0.18, Y: 0.19, Z: 0.22},
		math.Vec3{X: 0.32, Y: 0.34, Z: 0.4})))
	wallTex := textures.Add(skin(skinsDir, "wall", texture.Bricks(128,
		math.Vec3{X: 0.45, Y: 0.28, Z: 0.2},
		math.Vec3{X: 0.6, Y: 0.58, Z: 0.55})))
	pillarTex := textures.Add(skin(skinsDir, "pillar", texture.Checker(64, 8,
		math.Vec3{X: 0.5, Y: 0.5, Z: 0.55},
		math.Vec3{X: 0.35, Y: 0.35, Z: 0.4})))
	targetTex := textures.Add(skin(skinsDir, "target", texture.Checker(32, 8,
		math.Vec3{X: 1, Y: 0.15, Z: 0.1},
		math.Vec3{X: 1, Y: 0.85, Z: 0.2})))
	targetHitTex := textures.Add(skin(skinsDir, "target_hit", texture.Solid(8,
		math.Vec3{X: 0.3, Y: 0.3, Z: 0.32})))

	floorMat := s.AddMaterial(scene.Material{ColorIndex: floorTex})
	wallMat := s.AddMaterial(scene.Material{ColorIndex: wallTex})
	pillarMat := s.AddMaterial(scene.Material{ColorIndex: pillarTex})
	targetMat := s.AddMaterial(scene.Material{
		ColorIndex: targetTex,
		Flags:      scene.MaterialEmissive,
	})
	targetHitMat := s.AddMaterial(scene.Material{ColorIndex: targetHitTex})

	level := &Level{
		Scene:       s,
		Textures:    textures,
		PlayerSpawn: math.Vec3{Z: 12},
		EyeHeight:   1.7,
		WalkExtent:  arenaSize/2 - 1,
		Targets:     make(map[scene.InstanceID]bool),

		TargetHitMaterial: targetHitMat,
	}

	half := float32(arenaSize / 2)

	floor := s.AddModel([]geometry.MeshData{Plane(arenaSize, arenaSize, 8)})
	s.AddInstance(floor, []uint32{floorMat},
		math.Vec3{X: -half, Z: -half}, math.QuatIdentity())

	// Four walls from one box model, rotated into place.
	wall := s.AddModel([]geometry.MeshData{Box(arenaSize, wallHeight, 0.5)})
	for _, angle := range []float32{0, gomath.Pi / 2, gomath.Pi, 3 * gomath.Pi / 2} {
		rot := math.QuatFromAxisAngle(math.Vec3{Y: 1}, angle)
		// Each wall's local -Z face looks into the arena.
		offset := rot.Rotate(math.Vec3{X: -half, Z: -half})
		s.AddInstance(wall, []uint32{wallMat}, offset, rot)
	}

	pillar := s.AddModel([]geometry.MeshData{Box(1.2, wallHeight, 1.2)})
	for _, pos := range []math.Vec3{
		{X: -10, Z: -10}, {X: 10, Z: -10},
		{X: -10, Z: 10}, {X: 10, Z: 10},
	} {
		s.AddInstance(pillar, []uint32{pillarMat},
			pos.Add(math.Vec3{X: -0.6, Z: -0.6}), math.QuatIdentity())
	}

	// Targets hover in a ring facing the center.
	target := s.AddModel([]geometry.MeshData{Box(1.5, 1.5, 0.2)})
	const targetCount = 8
	for i := 0; i < targetCount; i++ {
		angle := float32(i) * 2 * gomath.Pi / targetCount
		sin := float32(gomath.Sin(float64(angle)))
		cos := float32(gomath.Cos(float64(angle)))

		pos := math.Vec3{X: sin * 15, Y: 2.5, Z: cos * 15}
		rot := math.QuatFromAxisAngle(math.Vec3{Y: 1}, angle)

		id := s.AddInstance(target, []uint32{targetMat},
			pos.Add(rot.Rotate(math.Vec3{X: -0.75, Y: -0.75, Z: -0.1})), rot)
		level.Targets[id] = false
	}

	return level
}

// Plane builds a horizontal grid of quads spanning [0,width] on X and
// [0,depth] on Z at y=0, facing +Y, with texcoords repeating per cell.
func Plane(width, depth float32, cells int) geometry.MeshData {
	var data []float32
	var indices []uint32

	for row := 0; row <= cells; row++ {
		for col := 0; col <= cells; col++ {
			x := width * float32(col) / float32(cells)
			z := depth * float32(row) / float32(cells)
			data = append(data,
				x, 0, z,
				0, 1, 0,
				float32(col), float32(row),
				1, 0, 0, 1,
			)
		}
	}

	stride := uint32(cells + 1)
	for row := 0; row < cells; row++ {
		for col := 0; col < cells; col++ {
			i := uint32(row)*stride + uint32(col)
			indices = append(indices,
				i, i+1, i+stride+1,
				i+stride+1, i+stride, i,
			)
		}
	}

	return geometry.MeshData{
		Indices:      indices,
		VertexData:   data,
		VertexStride: 12,
	}
}

// Box builds an axis-aligned box spanning [0,w]x[0,h]x[0,d] with per-face
// normals and texcoords scaled to face size.
func Box(w, h, d float32) geometry.MeshData {
	var data []float32
	var indices []uint32

	addFace := func(origin, uAxis, vAxis, normal math.Vec3, uLen, vLen float32) {
		base := uint32(len(data) / 12)
		corners := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
		for _, c := range corners {
			p := origin.Add(uAxis.Scale(c[0])).Add(vAxis.Scale(c[1]))
			data = append(data,
				p.X, p.Y, p.Z,
				normal.X, normal.Y, normal.Z,
				c[0]*uLen, (1-c[1])*vLen,
				1, 0, 0, 1,
			)
		}
		indices = append(indices,
			base, base+1, base+2,
			base+2, base+3, base,
		)
	}

	// Texcoords repeat roughly once per world unit.
	addFace(math.Vec3{}, math.Vec3{X: w}, math.Vec3{Y: h}, math.Vec3{Z: -1}, w, h)                     // front (-Z)
	addFace(math.Vec3{X: w, Z: d}, math.Vec3{X: -w}, math.Vec3{Y: h}, math.Vec3{Z: 1}, w, h)           // back (+Z)
	addFace(math.Vec3{Z: d}, math.Vec3{Z: -d}, math.Vec3{Y: h}, math.Vec3{X: -1}, d, h)                // left (-X)
	addFace(math.Vec3{X: w}, math.Vec3{Z: d}, math.Vec3{Y: h}, math.Vec3{X: 1}, d, h)                  // right (+X)
	addFace(math.Vec3{Y: h}, math.Vec3{X: w}, math.Vec3{Z: d}, math.Vec3{Y: 1}, w, d)                  // top (+Y)
	addFace(math.Vec3{Z: d}, math.Vec3{X: w}, math.Vec3{Z: -d}, math.Vec3{Y: -1}, w, d)                // bottom (-Y)

	return geometry.MeshData{
		Indices:      indices,
		VertexData:   data,
		VertexStride: 12,
	}
}
