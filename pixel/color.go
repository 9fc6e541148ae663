package pixel

import "image/color"

// CRGB16Model is the model for 5-6-5 RGB colors.
var CRGB16Model color.Model = color.ModelFunc(crgb16Model)

// Common colors.
var (
	Black   = CRGB16{0x0000}
	White   = CRGB16{0xffff}
	Red     = CRGB16{0xf800}
	Green   = CRGB16{0x07e0}
	Blue    = CRGB16{0x001f}
	Yellow  = CRGB16{0xffe0}
	Cyan    = CRGB16{0x07ff}
	Magenta = CRGB16{0xf81f}
)

// CRGB16 represents a 16-bit 5-6-5 RGB color.
type CRGB16 struct {
	// CRed, 5, CGreen, 6, CBlue, 5
	V uint16
}

// RGB565 packs 8-bit components, truncating each to 5-6-5 precision.
func RGB565(r, g, b uint8) CRGB16 {
	return CRGB16{uint16(r&0xf8)<<8 | uint16(g&0xfc)<<3 | uint16(b)>>3}
}

// Bytes returns the color in wire order, most significant byte first.
func (c CRGB16) Bytes() (hi, lo byte) {
	return byte(c.V >> 8), byte(c.V)
}

func (c CRGB16) RGBA() (r, g, b, a uint32) {
	// Build a 5- or 6-bit value at the top of the low byte of each component.
	red := (c.V & 0xF800) >> 8
	grn := (c.V & 0x07E0) >> 3
	blu := (c.V & 0x001F) << 3
	// Duplicate the high bits in the low bits.
	red |= red >> 5
	grn |= grn >> 6
	blu |= blu >> 5
	// Duplicate the whole value in the high byte.
	red |= red << 8
	grn |= grn << 8
	blu |= blu << 8
	return uint32(red), uint32(grn), uint32(blu), 0xffff
}

// RGBA8 returns the color expanded to 8 bits per component.
func (c CRGB16) RGBA8() color.RGBA {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
}

// ToCRGB16 converts any color, dropping alpha and excess precision.
func ToCRGB16(c color.Color) CRGB16 {
	return crgb16Model(c).(CRGB16)
}

func crgb16Model(c color.Color) color.Color {
	switch c := c.(type) {
	case CRGB16:
		return c
	case color.RGBA:
		return RGB565(c.R, c.G, c.B)
	case color.Gray:
		return RGB565(c.Y, c.Y, c.Y)
	default:
		r, g, b, _ := c.RGBA()
		r = (r & 0xF800)
		g = (g & 0xFC00) >> 5
		b = (b & 0xF800) >> 11
		return CRGB16{uint16(r | g | b)}
	}
}
