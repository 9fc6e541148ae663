// Package draw rasterizes 2-D primitives into lazy pixel sequences.
//
// Every shape is returned as a [pixel.Pixels] sequence; nothing is drawn
// until the sequence is consumed, typically by a display's DrawPixels. Shapes
// are not clipped, consumers drop pixels outside their bounds.
package draw

import (
	"image"
	"image/color"

	"github.com/BeatGlow/st7789/pixel"
)

// Shape is a rasterized primitive.
type Shape = pixel.Pixels

// plot emits a single point, reporting false when the consumer stopped.
type plot func(x, y int) bool

func shape(c color.Color, f func(set plot) bool) Shape {
	v := pixel.ToCRGB16(c)
	return func(yield func(pixel.Pixel) bool) {
		f(func(x, y int) bool {
			return yield(pixel.P(x, y, v))
		})
	}
}

// Concat joins shapes into one sequence.
func Concat(shapes ...Shape) Shape {
	return func(yield func(pixel.Pixel) bool) {
		for _, s := range shapes {
			for p := range s {
				if !yield(p) {
					return
				}
			}
		}
	}
}

// Point is a single pixel.
func Point(p image.Point, c color.Color) Shape {
	return shape(c, func(set plot) bool {
		return set(p.X, p.Y)
	})
}
