package st7789

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/go-logr/logr"
	"periph.io/x/conn/v3/display"

	"github.com/BeatGlow/st7789/pixel"
)

// Delayer blocks the caller for at least the requested duration.
type Delayer interface {
	Sleep(time.Duration)
}

// DelayFunc adapts a function to Delayer.
type DelayFunc func(time.Duration)

func (f DelayFunc) Sleep(d time.Duration) { f(d) }

type state uint8

const (
	stateNew state = iota
	stateReady
	stateHalted
	stateFailed
)

// Dev is a handle to an ST7789 controller.
type Dev struct {
	c        Conn
	log      logr.Logger
	delay    Delayer
	state    state
	inverted bool
	geometry
	scroll ScrollState
}

// New creates a driver for the controller behind c. No bytes are sent until
// Init is called.
func New(c Conn, config *Config) (*Dev, error) {
	if config == nil {
		config = new(Config)
	}
	if config.Width == 0 && config.Height == 0 {
		config.Width, config.Height = DefaultWidth, DefaultHeight
	}
	if config.Width <= 0 || config.Height <= 0 ||
		config.ColumnOffset < 0 || config.RowOffset < 0 ||
		config.ColumnOffset+config.Width > MaxWidth || config.RowOffset+config.Height > MaxHeight {
		return nil, fmt.Errorf("st7789: invalid size %dx%d at offset (%d,%d), maximum size is %dx%d",
			config.Width, config.Height, config.ColumnOffset, config.RowOffset, MaxWidth, MaxHeight)
	}
	if config.Rotation > Rotate270 {
		return nil, fmt.Errorf("%w %d", ErrInvalidRotation, config.Rotation)
	}

	logger := config.Logger
	if logger.GetSink() == nil {
		logger = defaultLogger()
	}

	return &Dev{
		c:        c,
		log:      logger,
		inverted: !config.NoInvert,
		geometry: geometry{
			width:     config.Width,
			height:    config.Height,
			colOffset: config.ColumnOffset,
			rowOffset: config.RowOffset,
			rotation:  config.Rotation,
			mirrored:  config.Mirrored,
		},
		scroll: ScrollState{ScrollArea: uint16(config.Height)},
	}, nil
}

// Init resets and configures the controller. A nil delay uses time.Sleep.
// After a failed Init the Dev is unusable and must be created again.
func (d *Dev) Init(delay Delayer) error {
	if d.state == stateFailed {
		return ErrNotInitialized
	}
	if delay == nil {
		delay = DelayFunc(time.Sleep)
	}
	d.delay = delay

	steps := []struct {
		name string
		run  func() error
	}{
		{"reset", func() error { return d.resetSequence(delay) }},
		{"software reset", func() error { return d.softReset(delay) }},
		{"sleep out", func() error { return d.sleepOut(delay) }},
		{"color mode", func() error {
			if err := d.setColorMode(); err != nil {
				return err
			}
			delay.Sleep(settleWait)
			return nil
		}},
		{"panel setup", func() error {
			for _, setup := range panelSetup {
				if err := d.exec(setup.op, setup.params...); err != nil {
					return err
				}
			}
			return nil
		}},
		{"memory access control", func() error { return d.setMemoryAccessControl(d.madctl()) }},
		{"inversion", func() error { return d.setInversion(d.inverted) }},
		{"normal mode", func() error { return d.exec(opNormalMode) }},
		{"scroll area", func() error { return d.resetScroll() }},
		{"display on", func() error { return d.displayOn(delay) }},
	}

	d.state = stateNew
	for _, step := range steps {
		if err := step.run(); err != nil {
			d.state = stateFailed
			d.log.Error(err, "init failed", "step", step.name)
			return &InitError{Step: step.name, Err: err}
		}
	}
	d.state = stateReady
	d.log.Info("initialized", "display", d.String(), "conn", d.c.String())
	return nil
}

// ready reports whether drawing operations may be issued.
func (d *Dev) ready() error {
	switch d.state {
	case stateReady:
		return nil
	case stateHalted:
		return ErrHalted
	default:
		return ErrNotInitialized
	}
}

func (d *Dev) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("ST7789 %dx%d", bounds.Dx(), bounds.Dy())
}

// Bounds is the logical drawing area for the current rotation.
func (d *Dev) Bounds() image.Rectangle {
	return d.bounds()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return pixel.CRGB16Model
}

// Rotation returns the current rotation.
func (d *Dev) Rotation() Rotation {
	return d.rotation
}

// SetRotation changes the orientation, keeping the mirrored setting.
func (d *Dev) SetRotation(rotation Rotation) error {
	return d.SetOrientation(rotation, d.mirrored)
}

// SetOrientation updates the memory access control for rotation and mirroring.
// Subsequent coordinates are interpreted in the new logical space.
func (d *Dev) SetOrientation(rotation Rotation, mirrored bool) error {
	if rotation > Rotate270 {
		return fmt.Errorf("%w %d", ErrInvalidRotation, rotation)
	}
	if err := d.ready(); err != nil {
		return err
	}
	g := d.geometry
	g.rotation, g.mirrored = rotation, mirrored
	if err := d.setMemoryAccessControl(g.madctl()); err != nil {
		return err
	}
	d.geometry = g
	return nil
}

// Show toggles the display on or off. Memory contents are kept.
func (d *Dev) Show(show bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	if show {
		return d.exec(opDisplayOn)
	}
	return d.exec(opDisplayOff)
}

// Invert toggles display inversion.
func (d *Dev) Invert(invert bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	return d.setInversion(invert)
}

func (d *Dev) setInversion(invert bool) error {
	op := opInversionOff
	if invert {
		op = opInversionOn
	}
	if err := d.exec(op); err != nil {
		return err
	}
	d.inverted = invert
	return nil
}

// Idle toggles idle mode (8 colors, reduced power).
func (d *Dev) Idle(idle bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	if idle {
		return d.exec(opIdleOn)
	}
	return d.exec(opIdleOff)
}

// Tearing enables the tearing effect output line (V-blank only).
func (d *Dev) Tearing(enable bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	if enable {
		return d.exec(opTearingOn, 0x00)
	}
	return d.exec(opTearingOff)
}

// Halt turns the display off and puts the controller to sleep, implementing
// conn.Resource. Wake resumes.
func (d *Dev) Halt() error {
	if d.state != stateReady {
		return nil
	}
	if err := d.exec(opDisplayOff); err != nil {
		return err
	}
	if err := d.sleepIn(d.delay); err != nil {
		return err
	}
	d.state = stateHalted
	return nil
}

// Wake brings a halted controller out of sleep and turns the display on.
func (d *Dev) Wake() error {
	if d.state != stateHalted {
		return d.ready()
	}
	// SLPIN to SLPOUT needs the full settle time.
	d.delay.Sleep(resetSettle)
	if err := d.sleepOut(d.delay); err != nil {
		return err
	}
	if err := d.displayOn(d.delay); err != nil {
		return err
	}
	d.state = stateReady
	return nil
}

// Close halts the controller and closes the connection.
func (d *Dev) Close() error {
	if err := d.Halt(); err != nil {
		_ = d.c.Close()
		return err
	}
	return d.c.Close()
}

var _ display.Drawer = (*Dev)(nil)
