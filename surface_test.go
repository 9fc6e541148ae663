package st7789

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/BeatGlow/st7789/draw"
	"github.com/BeatGlow/st7789/emulator"
	"github.com/BeatGlow/st7789/pixel"
)

// testImageData returns little-endian pixel data where every pixel differs
// from its neighbours.
func testImageData(w, h int) []byte {
	raw := make([]byte, w*h*2)
	for i := 0; i < w*h; i++ {
		v := uint16(i*7 + 3)
		raw[i*2], raw[i*2+1] = byte(v), byte(v>>8)
	}
	return raw
}

func TestDrawImage(t *testing.T) {
	d, panel := newTestDev(t, nil)

	raw := testImageData(86, 64)
	if err := d.DrawImage(34, 8, 86, 64, raw); err != nil {
		t.Fatal(err)
	}

	wire := make([]byte, len(raw))
	for i := 0; i < len(raw); i += 2 {
		wire[i], wire[i+1] = raw[i+1], raw[i]
	}
	want := []emulator.Op{
		{Cmd: emulator.CASET, Data: []byte{0x00, 34, 0x00, 119}},
		{Cmd: emulator.RASET, Data: []byte{0x00, 8, 0x00, 71}},
		{Cmd: emulator.RAMWR, Data: wire},
	}
	if diff := cmp.Diff(want, panel.Ops); diff != "" {
		t.Errorf("image transfer mismatch (-want +got):\n%s", diff)
	}
	if n := len(panel.Ops[2].Data) / 2; n != 5504 {
		t.Errorf("expected 5504 pixels, got %d", n)
	}

	mem := panel.Memory()
	for _, p := range []image.Point{{34, 8}, {119, 8}, {34, 71}, {119, 71}, {50, 30}} {
		i := (p.Y-8)*86 + p.X - 34
		want := pixel.CRGB16{V: uint16(i*7 + 3)}
		if v := mem.CRGB16At(p.X, p.Y); v != want {
			t.Errorf("pixel %s is %#04x, expected %#04x", p, v.V, want.V)
		}
	}
	if v := mem.CRGB16At(33, 8); v != pixel.Black {
		t.Errorf("pixel left of the image was written: %#04x", v.V)
	}
}

func TestDrawImageErrors(t *testing.T) {
	d, panel := newTestDev(t, nil)

	tests := []struct {
		name       string
		x, y, w, h int
		raw        []byte
		err        error
	}{
		{"short", 0, 0, 10, 10, make([]byte, 199), ErrImageSize},
		{"long", 0, 0, 10, 10, make([]byte, 202), ErrImageSize},
		{"empty", 0, 0, 0, 10, nil, ErrImageSize},
		{"outside", 235, 0, 10, 10, make([]byte, 200), ErrOutOfBounds},
		{"negative", -1, 0, 10, 10, make([]byte, 200), ErrOutOfBounds},
	}
	for _, test := range tests {
		t.Run(test.name, func(it *testing.T) {
			if err := d.DrawImage(test.x, test.y, test.w, test.h, test.raw); !errors.Is(err, test.err) {
				it.Errorf("expected %v, got %v", test.err, err)
			}
			if len(panel.Ops) != 0 {
				it.Errorf("expected no traffic, got %v", panel.Ops)
			}
		})
	}
}

func TestClearThenPixel(t *testing.T) {
	d, panel := newTestDev(t, nil)

	if err := d.Clear(pixel.Red); err != nil {
		t.Fatal(err)
	}
	if err := d.DrawPixels(draw.Point(image.Pt(0, 0), pixel.Blue)); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]byte{
		emulator.CASET, emulator.RASET, emulator.RAMWR,
		emulator.CASET, emulator.RASET, emulator.RAMWR,
	}, panel.Commands()); diff != "" {
		t.Fatalf("command mismatch (-want +got):\n%s", diff)
	}
	if n := len(panel.Ops[2].Data); n != 240*240*2 {
		t.Errorf("expected %d bytes of pixel data, got %d", 240*240*2, n)
	}
	if diff := cmp.Diff([]emulator.Op{
		{Cmd: emulator.CASET, Data: []byte{0, 0, 0, 0}},
		{Cmd: emulator.RASET, Data: []byte{0, 0, 0, 0}},
		{Cmd: emulator.RAMWR, Data: []byte{0x00, 0x1f}},
	}, panel.Ops[3:]); diff != "" {
		t.Errorf("pixel write mismatch (-want +got):\n%s", diff)
	}

	mem := panel.Memory()
	for _, test := range []struct {
		x, y int
		want pixel.CRGB16
	}{
		{0, 0, pixel.Blue},
		{1, 0, pixel.Red},
		{239, 239, pixel.Red},
		{0, 240, pixel.Black},
	} {
		if v := mem.CRGB16At(test.x, test.y); v != test.want {
			t.Errorf("pixel (%d,%d) is %#04x, expected %#04x", test.x, test.y, v.V, test.want.V)
		}
	}
}

func TestFillRect(t *testing.T) {
	d, panel := newTestDev(t, nil)

	if err := d.FillRect(image.Rect(10, 10, 10, 20), pixel.Red); err != nil {
		t.Errorf("expected empty rectangle to be a no-op, got %v", err)
	}
	if err := d.FillRect(image.Rect(200, 200, 241, 210), pixel.Red); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
	if len(panel.Ops) != 0 {
		t.Fatalf("expected no traffic, got %v", panel.Ops)
	}

	if err := d.FillRect(image.Rect(10, 20, 30, 25), color.RGBA{G: 0xff, A: 0xff}); err != nil {
		t.Fatal(err)
	}
	snap := panel.Snapshot(image.Rect(0, 0, 240, 240))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			want := pixel.Black
			if (image.Point{X: x, Y: y}).In(image.Rect(10, 20, 30, 25)) {
				want = pixel.Green
			}
			if v := snap.CRGB16At(x, y); v != want {
				t.Fatalf("pixel (%d,%d) is %#04x, expected %#04x", x, y, v.V, want.V)
			}
		}
	}
}

func TestDrawPixels(t *testing.T) {
	d, panel := newTestDev(t, nil)

	pixels := draw.Concat(
		draw.Point(image.Pt(-1, 0), pixel.Red),
		draw.Point(image.Pt(240, 5), pixel.Red),
		draw.Point(image.Pt(5, 5), pixel.Green),
		draw.Point(image.Pt(5, 240), pixel.Red),
	)
	if err := d.DrawPixels(pixels); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{emulator.CASET, emulator.RASET, emulator.RAMWR}, panel.Commands()); diff != "" {
		t.Errorf("expected a single pixel write (-want +got):\n%s", diff)
	}
	if v := panel.Memory().CRGB16At(5, 5); v != pixel.Green {
		t.Errorf("pixel (5,5) is %#04x", v.V)
	}
}

func TestDraw(t *testing.T) {
	d, panel := newTestDev(t, nil)

	src := pixel.NewCRGB16Image(20, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			src.SetCRGB16(x, y, pixel.CRGB16{V: uint16(y*20 + x)})
		}
	}

	// Partially off screen: only the bottom right quarter of src is visible.
	if err := d.Draw(image.Rect(-10, -10, 10, 10), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]emulator.Op{
		{Cmd: emulator.CASET, Data: []byte{0, 0, 0, 9}},
		{Cmd: emulator.RASET, Data: []byte{0, 0, 0, 9}},
	}, panel.Ops[:2]); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
	mem := panel.Memory()
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if v, want := mem.CRGB16At(x, y), src.CRGB16At(x+10, y+10); v != want {
				t.Fatalf("pixel (%d,%d) is %#04x, expected %#04x", x, y, v.V, want.V)
			}
		}
	}

	panel.ClearOps()
	if err := d.Draw(image.Rect(300, 300, 310, 310), src, image.Point{}); err != nil {
		t.Errorf("expected off screen draw to be a no-op, got %v", err)
	}
	if len(panel.Ops) != 0 {
		t.Errorf("expected no traffic, got %v", panel.Ops)
	}
}

// nativePoint maps a logical point to native panel coordinates.
func nativePoint(p image.Point, width, height int, rotation Rotation, mirrored bool) image.Point {
	var n image.Point
	switch rotation {
	case NoRotation:
		n = p
	case Rotate90:
		n = image.Pt(width-1-p.Y, p.X)
	case Rotate180:
		n = image.Pt(width-1-p.X, height-1-p.Y)
	case Rotate270:
		n = image.Pt(p.Y, height-1-p.X)
	}
	if mirrored {
		n.X = width - 1 - n.X
	}
	return n
}

func TestOrientation(t *testing.T) {
	const (
		width, height = 135, 240
		colOffset     = 52
		rowOffset     = 40
	)
	panelRect := image.Rect(colOffset, rowOffset, colOffset+width, rowOffset+height)

	for rotation := NoRotation; rotation <= Rotate270; rotation++ {
		for _, mirrored := range []bool{false, true} {
			t.Run(rotation.String(), func(it *testing.T) {
				d, panel := newTestDev(it, &Config{
					Width:        width,
					Height:       height,
					ColumnOffset: colOffset,
					RowOffset:    rowOffset,
				})
				if err := d.SetOrientation(rotation, mirrored); err != nil {
					it.Fatal(err)
				}

				// Every logical pixel gets a unique value.
				bounds := d.Bounds()
				src := pixel.NewCRGB16Image(bounds.Dx(), bounds.Dy())
				for y := 0; y < bounds.Dy(); y++ {
					for x := 0; x < bounds.Dx(); x++ {
						src.SetCRGB16(x, y, pixel.CRGB16{V: uint16(y*bounds.Dx() + x + 1)})
					}
				}
				if err := d.Draw(bounds, src, image.Point{}); err != nil {
					it.Fatal(err)
				}

				snap := panel.Snapshot(panelRect)
				for y := 0; y < bounds.Dy(); y++ {
					for x := 0; x < bounds.Dx(); x++ {
						n := nativePoint(image.Pt(x, y), width, height, rotation, mirrored)
						if v, want := snap.CRGB16At(n.X, n.Y), src.CRGB16At(x, y); v != want {
							it.Fatalf("mirrored=%t: logical (%d,%d) shows %#04x at native %s, expected %#04x",
								mirrored, x, y, v.V, n, want.V)
						}
					}
				}

				// Nothing outside the panel is touched.
				mem := panel.Memory()
				for _, p := range []image.Point{{colOffset - 1, rowOffset}, {colOffset + width, rowOffset}, {colOffset, rowOffset - 1}, {colOffset, rowOffset + height}} {
					if v := mem.CRGB16At(p.X, p.Y); v != pixel.Black {
						it.Errorf("mirrored=%t: memory %s outside the panel was written", mirrored, p)
					}
				}
			})
		}
	}
}

func TestBoundsAfterRotation(t *testing.T) {
	d, _ := newTestDev(t, &Config{Width: 135, Height: 240, ColumnOffset: 52, RowOffset: 40})
	if err := d.SetRotation(Landscape); err != nil {
		t.Fatal(err)
	}
	if b := d.Bounds(); b != image.Rect(0, 0, 240, 135) {
		t.Errorf("expected landscape bounds, got %s", b)
	}
	if err := d.FillRect(image.Rect(0, 0, 240, 135), pixel.White); err != nil {
		t.Errorf("expected full landscape fill to succeed, got %v", err)
	}
	if err := d.FillRect(image.Rect(0, 0, 135, 240), pixel.White); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected portrait rectangle to be out of bounds, got %v", err)
	}
}

func TestSurfaceTransportError(t *testing.T) {
	for _, test := range []struct {
		name string
		draw func(*Dev) error
	}{
		{"FillRect", func(d *Dev) error { return d.FillRect(image.Rect(0, 0, 10, 10), pixel.Red) }},
		{"DrawImage", func(d *Dev) error { return d.DrawImage(0, 0, 4, 4, testImageData(4, 4)) }},
		{"DrawPixels", func(d *Dev) error { return d.DrawPixels(pixel.Solid(image.Rect(1, 1, 3, 3), pixel.Red)) }},
	} {
		for _, fault := range []struct {
			after int
			op    string
		}{
			{0, "CASET"}, // command byte
			{3, "RASET"}, // row parameters
			{5, "RAMWR"}, // pixel data
		} {
			t.Run(test.name+"/"+fault.op, func(t *testing.T) {
				d, panel := newTestDev(t, nil)
				panel.InjectFault(fault.after, nil)

				err := test.draw(d)
				var transportErr *TransportError
				if !errors.As(err, &transportErr) {
					t.Fatalf("expected TransportError, got %v", err)
				}
				if transportErr.Op != fault.op {
					t.Errorf("expected failure in %s, got %s", fault.op, transportErr.Op)
				}
				if !errors.Is(err, emulator.ErrFault) {
					t.Errorf("expected the bus fault to be wrapped, got %v", err)
				}
			})
		}
	}
}
