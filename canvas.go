package st7789

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"tinygo.org/x/drivers"

	"github.com/BeatGlow/st7789/pixel"
)

// Canvas is an unbuffered drawing adapter for generic graphics libraries.
// Every Set is written to the controller immediately. Since controller memory
// is not read back, At reports Background.
//
// Canvas implements image/draw.Image, the TinyGo drivers.Displayer interface
// and the tinyterm Displayer interface. The first error stops all further
// output and is reported by Err and Display.
type Canvas struct {
	d *Dev

	// Background is reported by At, used by blending draw operations.
	Background color.Color

	err error
}

// Canvas returns a drawing adapter for d.
func (d *Dev) Canvas() *Canvas {
	return &Canvas{d: d, Background: pixel.Black}
}

// Err returns the first error encountered while drawing.
func (c *Canvas) Err() error {
	return c.err
}

func (c *Canvas) ColorModel() color.Model {
	return pixel.CRGB16Model
}

func (c *Canvas) Bounds() image.Rectangle {
	return c.d.Bounds()
}

func (c *Canvas) At(x, y int) color.Color {
	return c.Background
}

func (c *Canvas) Set(x, y int, v color.Color) {
	if c.err != nil {
		return
	}
	c.err = c.d.DrawPixels(func(yield func(pixel.Pixel) bool) {
		yield(pixel.P(x, y, pixel.ToCRGB16(v)))
	})
}

// Size implements drivers.Displayer.
func (c *Canvas) Size() (x, y int16) {
	size := c.Bounds().Size()
	return int16(size.X), int16(size.Y)
}

// SetPixel implements drivers.Displayer.
func (c *Canvas) SetPixel(x, y int16, v color.RGBA) {
	c.Set(int(x), int(y), v)
}

// Display implements drivers.Displayer. Output is never buffered, so it only
// reports the first drawing error.
func (c *Canvas) Display() error {
	return c.err
}

// FillRectangle fills a rectangle, clipped to the display. Sizes below 1 are
// rejected with ErrInvalidSize.
func (c *Canvas) FillRectangle(x, y, width, height int16, v color.RGBA) error {
	if c.err != nil {
		return c.err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d at (%d,%d)", ErrInvalidSize, width, height, x, y)
	}
	r := image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height)).Intersect(c.Bounds())
	c.err = c.d.FillRect(r, v)
	return c.err
}

// SetScroll sets the hardware scroll offset, wrapping line into the scroll area.
func (c *Canvas) SetScroll(line int16) {
	if c.err != nil {
		return
	}
	area := int(c.d.ScrollState().ScrollArea)
	if area == 0 {
		return
	}
	offset := int(line) % area
	if offset < 0 {
		offset += area
	}
	c.err = c.d.SetScrollOffset(uint16(offset))
}

// SetRotation maps a TinyGo rotation onto the display.
func (c *Canvas) SetRotation(rotation drivers.Rotation) error {
	var r Rotation
	switch rotation {
	case drivers.Rotation0:
		r = NoRotation
	case drivers.Rotation90:
		r = Rotate90
	case drivers.Rotation180:
		r = Rotate180
	case drivers.Rotation270:
		r = Rotate270
	default:
		return ErrInvalidRotation
	}
	return c.d.SetRotation(r)
}

// Interface checks.
var (
	_ draw.Image        = (*Canvas)(nil)
	_ drivers.Displayer = (*Canvas)(nil)
)
