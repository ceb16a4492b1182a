package texture

import (
	"fmt"
)

// TGA image types supported by DecodeTGA.
const (
	tgaTypeTrueColor = 2
	tgaTypeRLE       = 10
)

// DecodeTGA decodes an uncompressed or RLE true-color TGA file into a
// texture. 24- and 32-bit pixels are supported; color-mapped and grayscale
// files are not.
func DecodeTGA(data []byte) (*Texture, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("tga: header truncated")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	depth := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("tga: color-mapped files not supported")
	}
	if imageType != tgaTypeTrueColor && imageType != tgaTypeRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	}
	if depth != 24 && depth != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", depth)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("tga: invalid dimensions %dx%d", width, height)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("tga: id field truncated")
	}
	pixels := data[offset:]
	pixelSize := depth / 8

	// Bit 5 of the descriptor selects top-to-bottom row order; the texture
	// is always stored top-to-bottom.
	topToBottom := descriptor&0x20 != 0

	tex := New(width, height)
	writeTexel := func(i int, b, g, r, a uint8) {
		x := i % width
		y := i / width
		if !topToBottom {
			y = height - 1 - y
		}
		tex.SetRGBA(x, y, r, g, b, a)
	}

	readPixel := func(at int) (b, g, r, a uint8, ok bool) {
		if at+pixelSize > len(pixels) {
			return 0, 0, 0, 0, false
		}
		b, g, r = pixels[at], pixels[at+1], pixels[at+2]
		a = uint8(0xff)
		if pixelSize == 4 {
			a = pixels[at+3]
		}
		return b, g, r, a, true
	}

	pixelCount := width * height

	if imageType == tgaTypeTrueColor {
		if len(pixels) < pixelCount*pixelSize {
			return nil, fmt.Errorf("tga: pixel data truncated")
		}
		for i := 0; i < pixelCount; i++ {
			b, g, r, a, _ := readPixel(i * pixelSize)
			writeTexel(i, b, g, r, a)
		}
		return tex, nil
	}

	// RLE packets: high bit selects a run, low bits hold count-1.
	at := 0
	for i := 0; i < pixelCount; {
		if at >= len(pixels) {
			return nil, fmt.Errorf("tga: rle stream truncated")
		}
		packet := pixels[at]
		at++
		count := int(packet&0x7f) + 1

		if packet&0x80 != 0 {
			b, g, r, a, ok := readPixel(at)
			if !ok {
				return nil, fmt.Errorf("tga: rle run truncated")
			}
			at += pixelSize
			for ; count > 0 && i < pixelCount; count-- {
				writeTexel(i, b, g, r, a)
				i++
			}
		} else {
			for ; count > 0 && i < pixelCount; count-- {
				b, g, r, a, ok := readPixel(at)
				if !ok {
					return nil, fmt.Errorf("tga: raw packet truncated")
				}
				at += pixelSize
				writeTexel(i, b, g, r, a)
				i++
			}
		}
	}

	return tex, nil
}
