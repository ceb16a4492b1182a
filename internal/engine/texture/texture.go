// Package texture provides the CPU-side texture table the shading stages
// sample from, plus decoding and procedural generation of texture content.
package texture

import (
	"image"
	gomath "math"

	"github.com/hollowpoint-games/hollowpoint/pkg/math"
)

// Texture is an RGBA8 image sampled by the fragment and hit stages.
type Texture struct {
	width  int
	height int
	pix    []uint8
}

// New allocates a black texture.
func New(width, height int) *Texture {
	return &Texture{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
}

// FromImage converts any stdlib image into a texture.
func FromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	t := New(bounds.Dx(), bounds.Dy())
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			t.SetRGBA(x, y, uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
		}
	}
	return t
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// SetRGBA writes one texel.
func (t *Texture) SetRGBA(x, y int, r, g, b, a uint8) {
	i := (y*t.width + x) * 4
	t.pix[i+0] = r
	t.pix[i+1] = g
	t.pix[i+2] = b
	t.pix[i+3] = a
}

// Set writes one texel from a linear color.
func (t *Texture) Set(x, y int, c math.Vec3) {
	t.SetRGBA(x, y, channel(c.X), channel(c.Y), channel(c.Z), 0xff)
}

// Sample returns the texel under (u, v) with repeat wrapping and nearest
// filtering. The V axis points down, matching the mesh texcoord convention.
func (t *Texture) Sample(u, v float32) math.Vec3 {
	x := wrap(u, t.width)
	y := wrap(v, t.height)
	i := (y*t.width + x) * 4
	return math.Vec3{
		X: float32(t.pix[i+0]) / 255,
		Y: float32(t.pix[i+1]) / 255,
		Z: float32(t.pix[i+2]) / 255,
	}
}

func wrap(coord float32, size int) int {
	// Floor before truncating: plain int() rounds toward zero, which maps
	// negative coordinates to the wrong texel.
	i := int(gomath.Floor(float64(coord) * float64(size)))
	i %= size
	if i < 0 {
		i += size
	}
	return i
}

func channel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(v*255 + 0.5)
}

// Table is the indexed texture array materials reference by ColorIndex.
type Table struct {
	textures []*Texture
	fallback *Texture
}

// NewTable creates a table whose out-of-range lookups resolve to a solid
// magenta texture, making a bad material index visible instead of fatal.
func NewTable() *Table {
	return &Table{
		fallback: Solid(1, math.Vec3{X: 1, Z: 1}),
	}
}

// Add appends a texture and returns its index.
func (t *Table) Add(tex *Texture) uint32 {
	t.textures = append(t.textures, tex)
	return uint32(len(t.textures) - 1)
}

// Lookup resolves a texture index.
func (t *Table) Lookup(idx uint32) *Texture {
	if int(idx) >= len(t.textures) {
		return t.fallback
	}
	return t.textures[idx]
}

// Len returns the number of registered textures.
func (t *Table) Len() int {
	return len(t.textures)
}
