package pixel

import (
	"encoding/binary"
	"image"
	"image/color"
	"iter"
)

// Pixel is a single (coordinate, color) pair.
type Pixel struct {
	image.Point
	C CRGB16
}

// P is shorthand for a Pixel at (x, y).
func P(x, y int, c CRGB16) Pixel {
	return Pixel{Point: image.Pt(x, y), C: c}
}

// Pixels is a lazy, single-use sequence of pixels.
type Pixels = iter.Seq[Pixel]

// Colors is a lazy, single-use sequence of colors in the order they are
// written to display memory.
type Colors = iter.Seq[CRGB16]

// Repeat yields c n times.
func Repeat(c CRGB16, n int) Colors {
	return func(yield func(CRGB16) bool) {
		for i := 0; i < n; i++ {
			if !yield(c) {
				return
			}
		}
	}
}

// FromLE decodes little-endian 5-6-5 pixel data two bytes at a time. A
// trailing odd byte is ignored.
func FromLE(raw []byte) Colors {
	return func(yield func(CRGB16) bool) {
		for i := 0; i+1 < len(raw); i += 2 {
			if !yield(CRGB16{binary.LittleEndian.Uint16(raw[i:])}) {
				return
			}
		}
	}
}

// FromImage converts the pixels of src covering r (row-major) to CRGB16.
func FromImage(src image.Image, r image.Rectangle) Colors {
	if i, ok := src.(*CRGB16Image); ok {
		return i.Colors(r)
	}
	return func(yield func(CRGB16) bool) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if !yield(crgb16Model(src.At(x, y)).(CRGB16)) {
					return
				}
			}
		}
	}
}

// Solid yields every point of r with the same color.
func Solid(r image.Rectangle, c color.Color) Pixels {
	v := ToCRGB16(c)
	return func(yield func(Pixel) bool) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if !yield(P(x, y, v)) {
					return
				}
			}
		}
	}
}
