// Command st7789-sim runs the driver against an emulated controller and shows
// the panel in a desktop window.
//
// Keys: R rotates, S toggles hardware scrolling, Escape quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/go-logr/stdr"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"

	"github.com/BeatGlow/st7789"
	"github.com/BeatGlow/st7789/draw"
	"github.com/BeatGlow/st7789/emulator"
	"github.com/BeatGlow/st7789/pixel"
)

var errQuit = errors.New("quit")

func main() {
	widthFlag := flag.Int("width", 135, "Panel width")
	heightFlag := flag.Int("height", 240, "Panel height")
	colOffsetFlag := flag.Int("col-offset", 52, "First controller column wired to the panel")
	rowOffsetFlag := flag.Int("row-offset", 40, "First controller row wired to the panel")
	scaleFlag := flag.Int("scale", 2, "Window scale")
	verboseFlag := flag.Int("v", 0, "Log verbosity")
	flag.Parse()

	stdr.SetVerbosity(*verboseFlag)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags)).WithName("st7789-sim")

	panel := emulator.New()
	panel.RecordPixels = false

	display, err := st7789.New(panel, &st7789.Config{
		Width:        *widthFlag,
		Height:       *heightFlag,
		ColumnOffset: *colOffsetFlag,
		RowOffset:    *rowOffsetFlag,
		Logger:       logger,
	})
	if err != nil {
		fatal(err)
	}
	// The emulator clock makes the init waits instant.
	if err = display.Init(panel); err != nil {
		fatal(err)
	}

	g := &game{
		display: display,
		panel:   panel,
		area:    image.Rect(*colOffsetFlag, *rowOffsetFlag, *colOffsetFlag+*widthFlag, *rowOffsetFlag+*heightFlag),
		frame:   ebiten.NewImage(*widthFlag, *heightFlag),
		img:     image.NewRGBA(image.Rect(0, 0, *widthFlag, *heightFlag)),
	}
	if err = g.reset(); err != nil {
		fatal(err)
	}

	ebiten.SetWindowTitle(fmt.Sprintf("%s (emulated)", display))
	scale := *scaleFlag
	ebiten.SetWindowSize(*widthFlag*scale, *heightFlag*scale)
	ebiten.SetTPS(30)
	if err = ebiten.RunGame(g); err != nil && !errors.Is(err, errQuit) {
		fatal(err)
	}
}

type game struct {
	display *st7789.Dev
	panel   *emulator.Panel
	canvas  *st7789.Canvas
	term    *tinyterm.Terminal
	area    image.Rectangle
	frame   *ebiten.Image
	img     *image.RGBA
	tick    int
	scroll  bool
}

// reset redraws the screen for the current rotation.
func (g *game) reset() error {
	if err := g.display.Clear(pixel.Black); err != nil {
		return err
	}
	r := g.display.Bounds()
	if err := g.display.DrawPixels(draw.Concat(
		draw.Rectangle(r, pixel.White),
		draw.RoundedBox(image.Rect(4, 4, r.Dx()-4, 20), 6, pixel.Blue),
	)); err != nil {
		return err
	}

	g.canvas = g.display.Canvas()
	g.term = tinyterm.NewTerminal(g.canvas)
	g.term.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: !g.scroll,
	})
	fmt.Fprintf(g.term, "\x1b[32m%s\x1b[0m %s\n", g.display, g.display.Rotation())
	return g.canvas.Err()
}

func (g *game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return errQuit
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := g.display.SetRotation((g.display.Rotation() + 1) % 4); err != nil {
			return err
		}
		if err := g.reset(); err != nil {
			return err
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.scroll = !g.scroll
		if err := g.display.SetScrollOffset(0); err != nil {
			return err
		}
		if err := g.reset(); err != nil {
			return err
		}
	}

	g.tick++
	if g.tick%15 == 0 {
		fmt.Fprintf(g.term, "tick %d\n", g.tick)
	}
	g.panel.ClearOps()
	return g.canvas.Err()
}

func (g *game) Draw(screen *ebiten.Image) {
	var (
		state = g.panel.State()
		snap  = g.panel.Snapshot(g.area)
		pix   = g.img.Pix
	)
	for y := 0; y < g.area.Dy(); y++ {
		for x := 0; x < g.area.Dx(); x++ {
			i := g.img.PixOffset(x, y)
			if !state.DisplayOn || state.Sleeping {
				pix[i], pix[i+1], pix[i+2], pix[i+3] = 0, 0, 0, 0xff
				continue
			}
			c := snap.CRGB16At(x, y).RGBA8()
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, 0xff
		}
	}
	g.frame.WritePixels(pix)
	screen.DrawImage(g.frame, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.area.Dx(), g.area.Dy()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
