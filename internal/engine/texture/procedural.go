package texture

import (
	"github.com/hollowpoint-games/hollowpoint/pkg/math"
)

// Solid returns a single-color texture.
func Solid(size int, c math.Vec3) *Texture {
	t := New(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			t.Set(x, y, c)
		}
	}
	return t
}

// Checker returns a two-color checkerboard with cells of the given texel
// size.
func Checker(size, cell int, a, b math.Vec3) *Texture {
	t := New(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				t.Set(x, y, a)
			} else {
				t.Set(x, y, b)
			}
		}
	}
	return t
}

// Bricks returns a running-bond brick pattern with mortar lines.
func Bricks(size int, brick, mortar math.Vec3) *Texture {
	const (
		brickW  = 32
		brickH  = 16
		mortarW = 2
	)

	t := New(size, size)
	for y := 0; y < size; y++ {
		row := y / brickH
		offset := 0
		if row%2 == 1 {
			offset = brickW / 2
		}
		for x := 0; x < size; x++ {
			bx := (x + offset) % brickW
			by := y % brickH
			if bx < mortarW || by < mortarW {
				t.Set(x, y, mortar)
			} else {
				t.Set(x, y, brick)
			}
		}
	}
	return t
}

// Grid returns a dark texture with bright grid lines, used for floors.
func Grid(size, cell int, base, line math.Vec3) *Texture {
	t := New(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x%cell == 0 || y%cell == 0 {
				t.Set(x, y, line)
			} else {
				t.Set(x, y, base)
			}
		}
	}
	return t
}
