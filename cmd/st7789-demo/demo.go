package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/golang/freetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"

	"github.com/BeatGlow/st7789"
	"github.com/BeatGlow/st7789/draw"
	"github.com/BeatGlow/st7789/pixel"
)

var errStopped = errors.New("stopped")

type demo struct {
	name string
	run  func(*st7789.Dev, <-chan os.Signal) error
}

var demos = []demo{
	{"shapes", shapesDemo},
	{"image", imageDemo},
	{"scroll", scrollDemo},
	{"text", textDemo},
	{"tinyfont", tinyfontDemo},
	{"term", termDemo},
}

func demoNames() []string {
	names := make([]string, len(demos))
	for i, d := range demos {
		names[i] = d.name
	}
	return names
}

func stopped(stop <-chan os.Signal) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

func shapesDemo(display *st7789.Dev, _ <-chan os.Signal) error {
	if err := display.Clear(pixel.Black); err != nil {
		return err
	}

	var (
		r      = display.Bounds()
		w, h   = r.Dx(), r.Dy()
		center = image.Pt(w/2, h/2)
		radius = min(w, h) / 4
	)
	if err := display.FillRect(image.Rect(w/8, h/8, w/8+radius, h/8+radius), pixel.Blue); err != nil {
		return err
	}
	return display.DrawPixels(draw.Concat(
		draw.Rectangle(r, pixel.White),
		draw.Line(image.Pt(0, 0), image.Pt(w-1, h-1), pixel.Red),
		draw.Line(image.Pt(w-1, 0), image.Pt(0, h-1), pixel.Red),
		draw.Circle(center, radius, pixel.Green),
		draw.FilledCircle(center, radius/3, pixel.Yellow),
		draw.RoundedRectangle(image.Rect(4, 4, w-4, h-4), 12, pixel.Cyan),
		draw.FilledTriangle(image.Pt(w-w/8, h/8), image.Pt(w-w/8, h/8+radius), image.Pt(w-w/8-radius, h/8+radius), pixel.Magenta),
		draw.ThickLine(image.Pt(w/8, h-h/8), image.Pt(w-w/8, h-h/8), 5, pixel.White),
	))
}

// gradient returns little-endian 5-6-5 data, the format image converters
// for small displays produce.
func gradient(w, h int) []byte {
	raw := make([]byte, w*h*2)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := pixel.RGB565(uint8(x*255/w), uint8(y*255/h), uint8(255-x*255/w))
			i := (y*w + x) * 2
			raw[i], raw[i+1] = byte(c.V), byte(c.V>>8)
		}
	}
	return raw
}

func imageDemo(display *st7789.Dev, _ <-chan os.Signal) error {
	r := display.Bounds()
	img := image.NewRGBA(r)
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x + y), G: uint8(x - y), B: uint8(y - x), A: 0xff})
		}
	}
	if err := display.Draw(r, img, image.Point{}); err != nil {
		return err
	}

	const w, h = 86, 64
	return display.DrawImage((r.Dx()-w)/2, (r.Dy()-h)/2, w, h, gradient(w, h))
}

// restoreScroll reapplies the scroll layout s, keeping the first error.
func restoreScroll(display *st7789.Dev, s st7789.ScrollState, err *error) {
	if restoreErr := display.ConfigureScroll(s.FixedTop, s.ScrollArea, s.FixedBottom); *err == nil {
		*err = restoreErr
	}
}

func scrollDemo(display *st7789.Dev, stop <-chan os.Signal) (err error) {
	var (
		s    = display.ScrollState()
		rows = s.FixedTop + s.ScrollArea + s.FixedBottom
		r    = display.Bounds()
	)
	if err = display.ConfigureScroll(0, rows, 0); err != nil {
		return err
	}
	defer restoreScroll(display, s, &err)

	colors := []pixel.CRGB16{pixel.Red, pixel.Yellow, pixel.Green, pixel.Cyan, pixel.Blue, pixel.Magenta}
	band := max(r.Dy()/len(colors), 1)
	for i, c := range colors {
		if err := display.FillRect(image.Rect(0, i*band, r.Dx(), min((i+1)*band, r.Dy())), c); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for offset := 0; offset < int(rows)*2; offset += 2 {
		if stopped(stop) {
			return errStopped
		}
		if err := display.SetScrollOffset(uint16(offset % int(rows))); err != nil {
			return err
		}
		<-ticker.C
	}
	return nil
}

func textDemo(display *st7789.Dev, _ <-chan os.Signal) error {
	var (
		r   = display.Bounds()
		img = pixel.NewCRGB16Image(r.Dx(), r.Dy())
	)

	face := basicfont.Face7x13
	drawer := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(pixel.White),
		Face: face,
		Dot:  fixed.P(4, 4+face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(display.String())

	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return err
	}
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(f)
	ctx.SetFontSize(28)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(pixel.Yellow))
	for i, line := range []string{"Hello,", "ST7789!"} {
		if _, err = ctx.DrawString(line, freetype.Pt(4, 56+i*32)); err != nil {
			return err
		}
	}

	return display.Draw(r, img, image.Point{})
}

func tinyfontDemo(display *st7789.Dev, _ <-chan os.Signal) error {
	if err := display.Clear(pixel.Black); err != nil {
		return err
	}
	canvas := display.Canvas()
	for i, c := range []pixel.CRGB16{pixel.White, pixel.Red, pixel.Green, pixel.Blue} {
		tinyfont.WriteLine(canvas, &proggy.TinySZ8pt7b, 4, int16(14+i*12), fmt.Sprintf("tinyfont line %d", i), c.RGBA8())
	}
	return canvas.Display()
}

func termDemo(display *st7789.Dev, stop <-chan os.Signal) (err error) {
	// The controller scrolls native rows, which run sideways at 90 and 270
	// degrees.
	if r := display.Rotation(); r == st7789.Rotate90 || r == st7789.Rotate270 {
		return nil
	}

	s := display.ScrollState()
	if err = display.ConfigureScroll(0, s.FixedTop+s.ScrollArea+s.FixedBottom, 0); err != nil {
		return err
	}
	defer restoreScroll(display, s, &err)

	if err = display.Clear(pixel.Black); err != nil {
		return err
	}
	canvas := display.Canvas()
	term := tinyterm.NewTerminal(canvas)
	term.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: 10,
		FontOffset: 6,
	})
	for i := 0; i < 48; i++ {
		if stopped(stop) {
			return errStopped
		}
		fmt.Fprintf(term, "\x1b[3%dm%s\x1b[0m line %d\n", i%7+1, display, i)
		if err = canvas.Err(); err != nil {
			return err
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}
