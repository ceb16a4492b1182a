// Package game wires the engine together: window, input, the software
// rendering pipelines and the arena gameplay loop.
package game

import (
	"fmt"
	gomath "math"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/hollowpoint-games/hollowpoint/internal/assets"
	"github.com/hollowpoint-games/hollowpoint/internal/config"
	"github.com/hollowpoint-games/hollowpoint/internal/engine/camera"
	"github.com/hollowpoint-games/hollowpoint/internal/engine/input"
	"github.com/hollowpoint-games/hollowpoint/internal/engine/render"
	"github.com/hollowpoint-games/hollowpoint/internal/engine/renderer"
	"github.com/hollowpoint-games/hollowpoint/internal/engine/window"
	"github.com/hollowpoint-games/hollowpoint/internal/logger"
	"github.com/hollowpoint-games/hollowpoint/pkg/math"
	"github.com/hollowpoint-games/hollowpoint/pkg/simt"
)

const windowTitle = "Hollowpoint"

// Game is the top-level application state.
type Game struct {
	cfg *config.Config

	window    *window.Window
	presenter *renderer.Presenter
	input     *input.Input

	dev      *simt.Device
	exclSum  *render.ExclusiveSumPipeline
	cull     *render.CullPipeline
	raster   *render.RasterPipeline
	raytrace *render.RayTracePipeline
	fb       *render.Framebuffer

	level  *assets.Level
	cam    *camera.FPSCamera
	player *Player

	// Per-mesh acceleration data, built once at load.
	spheres []render.BoundingSphere
	blases  []*render.BLAS

	technique string
	running   bool

	frames    int
	fpsTimer  float32
	lastTitle string
}

// New creates the game: window, GL presenter, pipelines and the arena level.
func New(cfg *config.Config) (*Game, error) {
	win, err := window.New(window.Config{
		Title:      windowTitle,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	fbWidth := uint32(cfg.Graphics.Width / cfg.Graphics.RenderScale)
	fbHeight := uint32(cfg.Graphics.Height / cfg.Graphics.RenderScale)

	presenter, err := renderer.New(renderer.Config{
		Width:  int(fbWidth),
		Height: int(fbHeight),
	})
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}

	dev := simt.NewDevice(cfg.Graphics.SubgroupSize)
	exclSum := render.NewExclusiveSumPipeline(dev)

	g := &Game{
		cfg:       cfg,
		window:    win,
		presenter: presenter,
		input:     input.New(),
		dev:       dev,
		exclSum:   exclSum,
		cull:      render.NewCullPipeline(dev, exclSum),
		raster:    render.NewRasterPipeline(dev),
		raytrace:  render.NewRayTracePipeline(dev),
		fb:        render.NewFramebuffer(fbWidth, fbHeight),
		technique: cfg.Graphics.Technique,
	}

	g.level = assets.BuildArena(cfg.Game.SkinsDir)
	g.buildMeshData()

	g.cam = camera.NewFPSCamera(cfg.Graphics.FovDegrees * gomath.Pi / 180)
	g.cam.MouseSensitivity *= cfg.Game.MouseSensitivity

	g.player = NewPlayer(g.level.PlayerSpawn, g.level.EyeHeight)
	g.player.WalkExtent = g.level.WalkExtent
	g.cam.Position = g.player.EyePosition()

	win.CaptureMouse(true)

	logger.Info("game initialized",
		zap.Uint32("fb_width", fbWidth),
		zap.Uint32("fb_height", fbHeight),
		zap.String("technique", g.technique),
		zap.Int("subgroup_size", cfg.Graphics.SubgroupSize),
		zap.Int("meshes", len(g.level.Scene.Meshes())),
		zap.Int("targets", len(g.level.Targets)),
	)

	return g, nil
}

// buildMeshData computes the per-mesh bounding spheres and ray-tracing BLASes
// for the loaded level.
func (g *Game) buildMeshData() {
	s := g.level.Scene
	spherePipeline := render.NewBoundingSpherePipeline(g.dev)

	for idx, mesh := range s.Meshes() {
		meshIdx := uint32(idx)
		g.spheres = append(g.spheres, spherePipeline.Compute(
			&s.Geometry,
			s.VertexCount(meshIdx),
			mesh.VertexOffset,
			uint32(mesh.VertexStride),
		))
		g.blases = append(g.blases, render.BuildBLAS(&s.Geometry, mesh))
	}
}

// Run drives the main loop until the player quits.
func (g *Game) Run() {
	g.running = true
	lastFrame := time.Now()

	for g.running {
		frameStart := time.Now()
		dt := float32(frameStart.Sub(lastFrame).Seconds())
		lastFrame = frameStart

		if g.input.Update() {
			break
		}
		g.update(dt)
		g.render()

		if limit := g.cfg.Graphics.FPSLimit; limit > 0 {
			frameBudget := time.Second / time.Duration(limit)
			if elapsed := time.Since(frameStart); elapsed < frameBudget {
				time.Sleep(frameBudget - elapsed)
			}
		}

		g.countFrame(dt)
	}

	logger.Info("game loop ended")
}

// Close cleans up all resources.
func (g *Game) Close() {
	g.presenter.Close()
	g.window.Close()
}

func (g *Game) update(dt float32) {
	if g.input.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		g.running = false
		return
	}
	if g.input.IsKeyPressed(sdl.SCANCODE_TAB) {
		g.toggleTechnique()
	}

	dx, dy := g.input.MouseDelta()
	if g.cfg.Game.InvertY {
		dy = -dy
	}
	g.cam.HandleMouse(dx, dy)

	g.player.Update(g.cam, g.moveCommand(), dt)

	if g.input.IsMousePressed(sdl.BUTTON_LEFT) {
		g.fire()
	}
}

// moveCommand maps the held keys to one frame of movement intent.
func (g *Game) moveCommand() MoveCommand {
	var cmd MoveCommand
	if g.input.IsKeyDown(sdl.SCANCODE_W) {
		cmd.Forward++
	}
	if g.input.IsKeyDown(sdl.SCANCODE_S) {
		cmd.Forward--
	}
	if g.input.IsKeyDown(sdl.SCANCODE_D) {
		cmd.Strafe++
	}
	if g.input.IsKeyDown(sdl.SCANCODE_A) {
		cmd.Strafe--
	}
	cmd.Sprint = g.input.IsKeyDown(sdl.SCANCODE_LSHIFT)
	return cmd
}

func (g *Game) toggleTechnique() {
	if g.technique == config.TechniqueRaster {
		g.technique = config.TechniqueRayTrace
	} else {
		g.technique = config.TechniqueRaster
	}
	logger.Info("render technique switched", zap.String("technique", g.technique))
}

// fire casts a hitscan ray from the camera.
func (g *Game) fire() {
	hitscan(g.level, g.blases, g.cam.Position, g.cam.Forward(), g.cam.Far)
}

// hitscan traces a shot through the level. The first hit on a target
// re-skins it through its material override slot; the second removes it.
func hitscan(level *assets.Level, blases []*render.BLAS, origin, dir math.Vec3, tMax float32) {
	s := level.Scene
	tlas := render.BuildTLAS(blases, s.MeshInstances(), s.ModelInstances())

	hit, ok := tlas.Intersect(origin, dir, tMax)
	if !ok {
		return
	}

	id := s.InstanceIDAt(hit.ModelInstanceIdx)
	wounded, isTarget := level.Targets[id]
	if !isTarget {
		return
	}

	if !wounded {
		s.SetInstanceMaterial(id, 0, level.TargetHitMaterial)
		level.Targets[id] = true
		logger.Info("target hit",
			zap.Uint64("instance", uint64(id)),
			zap.Float32("distance", hit.T),
		)
		return
	}

	s.RemoveInstance(id)
	delete(level.Targets, id)
	logger.Info("target destroyed",
		zap.Uint64("instance", uint64(id)),
		zap.Float32("distance", hit.T),
		zap.Int("remaining", len(level.Targets)),
	)
}

func (g *Game) render() {
	s := g.level.Scene
	frame := render.FrameInput{
		Geometry:       &s.Geometry,
		Meshes:         s.Meshes(),
		Materials:      s.Materials(),
		Textures:       g.level.Textures,
		MeshInstances:  s.MeshInstances(),
		ModelInstances: s.ModelInstances(),
	}

	switch g.technique {
	case config.TechniqueRayTrace:
		tlas := render.BuildTLAS(g.blases, s.MeshInstances(), s.ModelInstances())
		g.raytrace.Record(g.fb, frame, tlas, g.cam)

	default:
		draw := g.cull.Record(render.CullInput{
			Meshes:             s.Meshes(),
			MeshInstanceCounts: s.MeshInstanceCounts(),
			MeshInstances:      s.MeshInstances(),
			ModelInstances:     s.ModelInstances(),
			BoundingSpheres:    g.spheres,
		})

		g.fb.Clear(math.Vec3{X: 0.75, Y: 0.85, Z: 0.95})
		g.raster.Record(g.fb, frame, draw, g.cam.ProjectionView(g.fb.AspectRatio()))
	}

	windowWidth, windowHeight := g.window.GetSize()
	g.presenter.Present(g.fb.Pix(), windowWidth, windowHeight)
	g.window.SwapBuffers()
}

// countFrame tracks frames per second and mirrors it into the window title
// when enabled.
func (g *Game) countFrame(dt float32) {
	g.frames++
	g.fpsTimer += dt
	if g.fpsTimer < 1 {
		return
	}

	fps := float32(g.frames) / g.fpsTimer
	g.frames = 0
	g.fpsTimer = 0

	if !g.cfg.Game.ShowFPS {
		return
	}
	title := fmt.Sprintf("%s - %.0f fps (%s)", windowTitle, fps, g.technique)
	if title != g.lastTitle {
		g.window.SetTitle(title)
		g.lastTitle = title
	}
}
