package st7789

import (
	"fmt"
	"image"
)

// Memory Data Access Control (MADCTL) bit fields.
const (
	_                           byte = 1 << iota // D0: reserved
	_                                            // D1: reserved
	st7789DisplayDataLatchOrder                  // D2: MH
	st7789BGROrder                               // D3: RGB/BGR
	st7789LineAddressOrder                       // D4: ML
	st7789PageColumnOrder                        // D5: MV
	st7789ColumnAddressOrder                     // D6: MX
	st7789PageAddressOrder                       // D7: MY
)

// MemoryAccessControl returns the MADCTL byte for a rotation. Mirroring flips
// the column address order regardless of rotation.
func MemoryAccessControl(rotation Rotation, mirrored bool) byte {
	var madctl byte
	switch rotation % 4 {
	case NoRotation:
		madctl = 0
	case Rotate90:
		madctl = st7789ColumnAddressOrder | st7789PageColumnOrder
	case Rotate180:
		madctl = st7789ColumnAddressOrder | st7789PageAddressOrder
	case Rotate270:
		madctl = st7789PageAddressOrder | st7789PageColumnOrder
	}
	if mirrored {
		madctl ^= st7789ColumnAddressOrder
	}
	return madctl
}

// Window is an inclusive rectangle of controller address counters: the
// region the next memory write populates.
type Window struct {
	XStart, XEnd uint16 // column address range
	YStart, YEnd uint16 // row (page) address range
}

func (w Window) String() string {
	return fmt.Sprintf("x:%d..%d y:%d..%d", w.XStart, w.XEnd, w.YStart, w.YEnd)
}

// Pixels is the number of pixels covered by the window.
func (w Window) Pixels() int {
	return (int(w.XEnd) - int(w.XStart) + 1) * (int(w.YEnd) - int(w.YStart) + 1)
}

// geometry maps logical coordinates to controller address counters.
type geometry struct {
	width, height        int // native panel size
	colOffset, rowOffset int // panel origin in controller memory
	rotation             Rotation
	mirrored             bool
}

// axisOffset is the counter offset for an axis of the given extent placed at
// origin in memory; reversed axes count from the opposite memory edge.
func axisOffset(origin, extent, memory int, reversed bool) int {
	if reversed {
		return memory - origin - extent
	}
	return origin
}

func (g geometry) madctl() byte {
	return MemoryAccessControl(g.rotation, g.mirrored)
}

// bounds of the logical drawing area.
func (g geometry) bounds() image.Rectangle {
	if g.rotation.swapsAxes() {
		return image.Rect(0, 0, g.height, g.width)
	}
	return image.Rect(0, 0, g.width, g.height)
}

// limits of the controller address counters.
func (g geometry) limits() image.Point {
	if g.rotation.swapsAxes() {
		return image.Pt(MaxHeight, MaxWidth)
	}
	return image.Pt(MaxWidth, MaxHeight)
}

// offsets returns the column and row counter offsets for logical (0, 0).
func (g geometry) offsets() (dx, dy int) {
	var (
		madctl = g.madctl()
		col    = axisOffset(g.colOffset, g.width, MaxWidth, madctl&st7789ColumnAddressOrder != 0)
		row    = axisOffset(g.rowOffset, g.height, MaxHeight, madctl&st7789PageAddressOrder != 0)
	)
	if madctl&st7789PageColumnOrder != 0 {
		// Column counter drives the panel rows.
		return row, col
	}
	return col, row
}

// window translates the logical rectangle r into controller address counters.
func (g geometry) window(r image.Rectangle) (Window, error) {
	bounds := g.bounds()
	if r.Empty() || !r.In(bounds) {
		return Window{}, outOfBounds("rectangle %s outside %s at %s", r, bounds, g.rotation)
	}
	var (
		dx, dy = g.offsets()
		limits = g.limits()
		x0, x1 = r.Min.X + dx, r.Max.X - 1 + dx
		y0, y1 = r.Min.Y + dy, r.Max.Y - 1 + dy
	)
	if x0 < 0 || y0 < 0 || x1 >= limits.X || y1 >= limits.Y {
		return Window{}, outOfBounds("window x:%d..%d y:%d..%d outside controller memory", x0, x1, y0, y1)
	}
	return Window{
		XStart: uint16(x0),
		XEnd:   uint16(x1),
		YStart: uint16(y0),
		YEnd:   uint16(y1),
	}, nil
}

// logical translates a window back into the logical rectangle it covers.
func (g geometry) logical(w Window) image.Rectangle {
	dx, dy := g.offsets()
	return image.Rect(
		int(w.XStart)-dx, int(w.YStart)-dy,
		int(w.XEnd)-dx+1, int(w.YEnd)-dy+1,
	)
}
