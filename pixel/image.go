package pixel

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/draw"
)

// ErrShortBuffer is returned when raw pixel data does not cover the image.
var ErrShortBuffer = errors.New("pixel: raw data too short for image size")

type Image interface {
	draw.Image

	// Clear the image.
	Clear()

	// Fill the image with a single color.
	Fill(color.Color)
}

// Buffer holds the pixel values and is a container that is used by most image formats in this package.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Buffer) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0x00
	}
}

func makeBuffer(w, h, stride, size int) Buffer {
	return Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, size),
		Stride: stride,
	}
}

// CRGB16Image is a 16-bits per pixel 5-6-5-bit RGB image.
type CRGB16Image struct {
	Buffer
	Order binary.ByteOrder
}

// NewCRGB16Image allocates a big endian (controller wire order) image.
func NewCRGB16Image(w, h int) *CRGB16Image {
	return &CRGB16Image{
		Buffer: makeBuffer(w, h, w*2, w*2*h),
		Order:  binary.BigEndian,
	}
}

// NewRawLE wraps raw little-endian 5-6-5 pixel data in row-major order, as
// produced by most image converters for embedded targets. The data is not copied.
func NewRawLE(pix []byte, w, h int) (*CRGB16Image, error) {
	if w < 0 || h < 0 || len(pix) < w*h*2 {
		return nil, ErrShortBuffer
	}
	return &CRGB16Image{
		Buffer: Buffer{
			Rect:   image.Rect(0, 0, w, h),
			Pix:    pix[:w*h*2],
			Stride: w * 2,
		},
		Order: binary.LittleEndian,
	}, nil
}

func (p *CRGB16Image) ColorModel() color.Model {
	return CRGB16Model
}

func (p *CRGB16Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

func (p *CRGB16Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	return p.CRGB16At(x, y)
}

// CRGB16At returns the pixel at (x, y) without bounds checking against Rect.
func (p *CRGB16Image) CRGB16At(x, y int) CRGB16 {
	return CRGB16{p.Order.Uint16(p.Pix[p.PixOffset(x, y):])}
}

func (p *CRGB16Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.SetCRGB16(x, y, crgb16Model(c).(CRGB16))
}

func (p *CRGB16Image) SetCRGB16(x, y int, c CRGB16) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.Order.PutUint16(p.Pix[p.PixOffset(x, y):], c.V)
}

func (p *CRGB16Image) Fill(c color.Color) {
	value := crgb16Model(c).(CRGB16).V
	bytes := make([]byte, 2)
	p.Order.PutUint16(bytes, value)
	for i, l := 0, len(p.Pix); i < l; i += 2 {
		copy(p.Pix[i:], bytes)
	}
}

// Colors streams the pixels of r in row-major order. Points of r outside the
// image yield Black.
func (p *CRGB16Image) Colors(r image.Rectangle) Colors {
	return func(yield func(CRGB16) bool) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				c := Black
				if (image.Point{X: x, Y: y}).In(p.Rect) {
					c = p.CRGB16At(x, y)
				}
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Interface checks.
var (
	_ Image = (*CRGB16Image)(nil)
)
