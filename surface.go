package st7789

import (
	"image"
	"image/color"

	"github.com/BeatGlow/st7789/pixel"
)

// Clear fills the whole display with c, streaming one color per pixel.
func (d *Dev) Clear(c color.Color) error {
	return d.FillRect(d.Bounds(), c)
}

// DrawPixels writes every pixel of the sequence through a 1x1 window. Pixels
// outside the display bounds are dropped.
func (d *Dev) DrawPixels(pixels pixel.Pixels) error {
	if err := d.ready(); err != nil {
		return err
	}
	bounds := d.Bounds()
	for p := range pixels {
		if !p.In(bounds) {
			continue
		}
		w, err := d.window(image.Rectangle{Min: p.Point, Max: p.Point.Add(image.Pt(1, 1))})
		if err != nil {
			return err
		}
		if err = d.setAddressWindow(w); err != nil {
			return err
		}
		if err = d.memoryWritePixel(p.C); err != nil {
			return err
		}
	}
	return nil
}

// FillRect fills r, in logical coordinates, with c. Rectangles reaching
// outside the display are rejected with ErrOutOfBounds; empty rectangles are
// a no-op.
func (d *Dev) FillRect(r image.Rectangle, c color.Color) error {
	if r.Empty() {
		return nil
	}
	w, err := d.window(r)
	if err != nil {
		return err
	}
	if err = d.ready(); err != nil {
		return err
	}
	return d.write(w, pixel.Repeat(pixel.ToCRGB16(c), r.Dx()*r.Dy()))
}

// DrawImage writes a width x height image at (x, y) from raw little-endian
// 5-6-5 pixel data in row-major order.
func (d *Dev) DrawImage(x, y, width, height int, raw []byte) error {
	if width <= 0 || height <= 0 || len(raw) != width*height*2 {
		return ErrImageSize
	}
	w, err := d.window(image.Rect(x, y, x+width, y+height))
	if err != nil {
		return err
	}
	if err = d.ready(); err != nil {
		return err
	}
	return d.write(w, pixel.FromLE(raw))
}

// Draw implements display.Drawer: the part of src starting at sp is drawn
// into dst, clipped to the display bounds.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	clipped := dst.Intersect(d.Bounds())
	if clipped.Empty() {
		return nil
	}
	sp = sp.Add(clipped.Min.Sub(dst.Min))
	w, err := d.window(clipped)
	if err != nil {
		return err
	}
	if err = d.ready(); err != nil {
		return err
	}
	return d.write(w, pixel.FromImage(src, image.Rectangle{Min: sp, Max: sp.Add(clipped.Size())}))
}

// write sets the address window and streams colors into it. Nothing else may
// touch the controller between the two.
func (d *Dev) write(w Window, colors pixel.Colors) error {
	if err := d.setAddressWindow(w); err != nil {
		return err
	}
	return d.memoryWrite(colors)
}
