// Package st7789 drives ST7789 TFT display controllers over a SPI bus.
//
// The driver streams drawing operations straight into controller memory: there is no
// frame buffer. Every bounded write sets an address window in controller coordinates
// followed by one memory write burst of 5-6-5 RGB pixels.
//
// A Dev is not safe for concurrent use. It exclusively owns its Conn (bus, data/command
// line and reset line) for its lifetime; callers needing concurrent access must
// serialize their requests, for example through one owning goroutine.
package st7789

import (
	"image"
	"image/color"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/BeatGlow/st7789/pixel"
)

// Controller frame memory size.
const (
	MaxWidth  = 240
	MaxHeight = 320
)

// Default panel size, used when Config leaves Width and Height empty.
const (
	DefaultWidth  = 240
	DefaultHeight = 240
)

// Rotation defines pixel rotation.
type Rotation uint8

// Supported rotations.
const (
	NoRotation Rotation = iota
	Rotate90            // Rotate 90° clock wise
	Rotate180           // Rotate 180°
	Rotate270           // Rotate 270° clock wise
)

// Orientation names used by most panel vendors.
const (
	Portrait         = NoRotation
	Landscape        = Rotate90
	PortraitSwapped  = Rotate180
	LandscapeSwapped = Rotate270
)

func (r Rotation) String() string {
	switch r % 4 {
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	default:
		return "0°"
	}
}

// swapsAxes reports if logical x runs along the panel's native rows.
func (r Rotation) swapsAxes() bool {
	return r%4 == Rotate90 || r%4 == Rotate270
}

// Config is the display configuration.
type Config struct {
	// Width of the panel in pixels, in its native (portrait) orientation.
	Width int

	// Height of the panel in pixels, in its native (portrait) orientation.
	Height int

	// ColumnOffset is the first controller memory column wired to the panel.
	ColumnOffset int

	// RowOffset is the first controller memory row wired to the panel.
	RowOffset int

	// Rotation of the display.
	Rotation Rotation

	// Mirrored flips the column address order, independent of Rotation.
	Mirrored bool

	// NoInvert disables display inversion. Most IPS panels need inversion
	// enabled to show true colors.
	NoInvert bool

	// Logger receives command traces at V(1) and window math at V(2). When
	// unset, the DISPLAY_DEBUG environment variable enables logging to stderr.
	Logger logr.Logger
}

// Bounds returns the logical drawing area for the configured rotation.
func (config *Config) Bounds() image.Rectangle {
	if config.Rotation.swapsAxes() {
		return image.Rect(0, 0, config.Height, config.Width)
	}
	return image.Rect(0, 0, config.Width, config.Height)
}

func defaultLogger() logr.Logger {
	if os.Getenv("DISPLAY_DEBUG") == "" {
		return logr.Discard()
	}
	stdr.SetVerbosity(2)
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags)).WithName("st7789")
}

// ColorModel is the color model of all ST7789 displays.
func ColorModel() color.Model {
	return pixel.CRGB16Model
}
