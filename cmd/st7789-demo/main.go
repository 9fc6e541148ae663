package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/st7789"
)

func main() {
	widthFlag := flag.Int("width", st7789.DefaultWidth, "Panel width")
	heightFlag := flag.Int("height", st7789.DefaultHeight, "Panel height")
	colOffsetFlag := flag.Int("col-offset", 0, "First controller column wired to the panel")
	rowOffsetFlag := flag.Int("row-offset", 0, "First controller row wired to the panel")
	spiPortFlag := flag.String("spi", "", "SPI port (default: use first available)")
	spiFreqFlag := flag.Int64("spi-freq", int64(st7789.DefaultSPIConfig.Frequency/physic.MegaHertz), "SPI clock in MHz")
	resetPinFlag := flag.String("reset", "GPIO25", "Reset GPIO pin")
	dcPinFlag := flag.String("dc", "GPIO24", "Data/Command GPIO pin (DC)")
	csPinFlag := flag.String("cs", "", "Software chip select GPIO pin")
	blPinFlag := flag.String("bl", "GPIO19", "Backlight GPIO pin")
	rotateFlag := flag.String("rotate", "", "Display rotation")
	mirrorFlag := flag.Bool("mirror", false, "Mirror the column order")
	noInvertFlag := flag.Bool("no-invert", false, "Disable display inversion")
	verboseFlag := flag.Int("v", 0, "Log verbosity (1: commands, 2: windows and bursts)")
	demoFlag := flag.String("demo", "all", "Demo to run: "+strings.Join(demoNames(), ", ")+" or all")
	flag.Parse()

	stdr.SetVerbosity(*verboseFlag)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags)).WithName("st7789-demo")
	if *verboseFlag == 0 && os.Getenv("DISPLAY_DEBUG") == "" {
		logger = logr.Discard()
	}

	rotation, err := parseRotation(*rotateFlag)
	if err != nil {
		fatal(err)
	}

	if _, err = host.Init(); err != nil {
		fatal(err)
	}

	// The port is closed with the display.
	port, err := spireg.Open(*spiPortFlag)
	if err != nil {
		fatal(err)
	}

	config := &st7789.SPIConfig{
		Frequency: physic.Frequency(*spiFreqFlag) * physic.MegaHertz,
		Reset:     pin(*resetPinFlag),
		DC:        pin(*dcPinFlag),
		Logger:    logger,
	}
	if *csPinFlag != "" {
		config.CS = pin(*csPinFlag)
	}
	conn, err := st7789.OpenSPI(port, config)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("using connection: %s\n", conn)

	display, err := st7789.New(conn, &st7789.Config{
		Width:        *widthFlag,
		Height:       *heightFlag,
		ColumnOffset: *colOffsetFlag,
		RowOffset:    *rowOffsetFlag,
		Rotation:     rotation,
		Mirrored:     *mirrorFlag,
		NoInvert:     *noInvertFlag,
		Logger:       logger,
	})
	if err != nil {
		fatal(err)
	}
	defer display.Close()

	if err = display.Init(nil); err != nil {
		fatal(err)
	}
	if *blPinFlag != "" {
		if err = pin(*blPinFlag).Out(gpio.High); err != nil {
			fatal(err)
		}
	}
	fmt.Printf("using driver: %s, rotation %s\n", display, display.Rotation())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	fmt.Println("hit control-c to stop...")
	if err = run(display, *demoFlag, stop); err != nil && !errors.Is(err, errStopped) {
		fatal(err)
	}
}

func parseRotation(value string) (st7789.Rotation, error) {
	switch value {
	case "", "no", "0":
		return st7789.NoRotation, nil
	case "90", "right", "cw":
		return st7789.Rotate90, nil
	case "180", "flip":
		return st7789.Rotate180, nil
	case "270", "left", "ccw":
		return st7789.Rotate270, nil
	default:
		return 0, fmt.Errorf("invalid rotation %q specified", value)
	}
}

func pin(name string) gpio.PinIO {
	p := gpioreg.ByName(name)
	if p == nil {
		fatal(fmt.Errorf("no GPIO pin named %q", name))
	}
	return p
}

// run cycles through the selected demos until stop fires.
func run(display *st7789.Dev, name string, stop <-chan os.Signal) error {
	var selected []demo
	for _, d := range demos {
		if name == "all" || d.name == name {
			selected = append(selected, d)
		}
	}
	if len(selected) == 0 {
		return fmt.Errorf("unknown demo %q", name)
	}
	for {
		for _, d := range selected {
			fmt.Printf("demo: %s\n", d.name)
			if err := d.run(display, stop); err != nil {
				return fmt.Errorf("%s: %w", d.name, err)
			}
			select {
			case <-stop:
				return errStopped
			case <-time.After(2 * time.Second):
			}
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
