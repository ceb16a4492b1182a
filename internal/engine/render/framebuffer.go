package render

import (
	gomath "math"

	"github.com/hollowpoint-games/hollowpoint/pkg/math"
)

// Framebuffer is the render target both shading paths write to: an RGBA8
// color plane and a float32 depth plane. Pixel (0,0) is the top-left corner;
// the pixel byte layout matches what the presenter uploads directly as a GL
// texture.
type Framebuffer struct {
	width  uint32
	height uint32
	color  []uint8
	depth  []float32
}

// NewFramebuffer allocates a cleared framebuffer.
func NewFramebuffer(width, height uint32) *Framebuffer {
	fb := &Framebuffer{
		width:  width,
		height: height,
		color:  make([]uint8, width*height*4),
		depth:  make([]float32, width*height),
	}
	fb.Clear(math.Vec3{})
	return fb
}

// Width returns the framebuffer width in pixels.
func (fb *Framebuffer) Width() uint32 { return fb.width }

// Height returns the framebuffer height in pixels.
func (fb *Framebuffer) Height() uint32 { return fb.height }

// AspectRatio returns width over height.
func (fb *Framebuffer) AspectRatio() float32 {
	return float32(fb.width) / float32(fb.height)
}

// Pix returns the raw RGBA plane, row-major from the top-left pixel.
func (fb *Framebuffer) Pix() []uint8 { return fb.color }

// Clear fills the color plane and resets every depth sample to the far
// plane.
func (fb *Framebuffer) Clear(c math.Vec3) {
	r, g, b := encodeColor(c)
	for i := 0; i < len(fb.color); i += 4 {
		fb.color[i+0] = r
		fb.color[i+1] = g
		fb.color[i+2] = b
		fb.color[i+3] = 0xff
	}
	for i := range fb.depth {
		fb.depth[i] = gomath.MaxFloat32
	}
}

// Depth returns the depth sample of a pixel.
func (fb *Framebuffer) Depth(x, y uint32) float32 {
	return fb.depth[y*fb.width+x]
}

// TestAndSet performs the depth test for a pixel and claims it when the
// fragment is closer. Callers run one goroutine per pixel region, never two
// writers on the same pixel, so no atomicity is needed here.
func (fb *Framebuffer) TestAndSet(x, y uint32, depth float32) bool {
	i := y*fb.width + x
	if depth >= fb.depth[i] {
		return false
	}
	fb.depth[i] = depth
	return true
}

// SetColor writes a pixel's color, clamping each channel to [0, 1].
func (fb *Framebuffer) SetColor(x, y uint32, c math.Vec3) {
	i := (y*fb.width + x) * 4
	r, g, b := encodeColor(c)
	fb.color[i+0] = r
	fb.color[i+1] = g
	fb.color[i+2] = b
	fb.color[i+3] = 0xff
}

// Color reads back a pixel's color.
func (fb *Framebuffer) Color(x, y uint32) math.Vec3 {
	i := (y*fb.width + x) * 4
	return math.Vec3{
		X: float32(fb.color[i+0]) / 255,
		Y: float32(fb.color[i+1]) / 255,
		Z: float32(fb.color[i+2]) / 255,
	}
}

func encodeColor(c math.Vec3) (r, g, b uint8) {
	return encodeChannel(c.X), encodeChannel(c.Y), encodeChannel(c.Z)
}

func encodeChannel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(v*255 + 0.5)
}
