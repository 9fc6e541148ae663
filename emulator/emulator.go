// Package emulator models an ST7789 controller in software.
//
// A Panel decodes the command/data byte stream the way the controller does:
// address counters, memory access control, memory writes and the vertical
// scroll registers are applied to a 240x320 frame memory. It implements the
// st7789.Conn and st7789.Delayer interfaces, with a virtual clock that
// enforces the reset and sleep-out timing.
package emulator

import (
	"errors"
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/st7789/pixel"
)

// Frame memory size.
const (
	Width  = 240
	Height = 320
)

// Command codes understood by the emulator.
const (
	NOP      = 0x00
	SWRESET  = 0x01
	SLPIN    = 0x10
	SLPOUT   = 0x11
	NORON    = 0x13
	INVOFF   = 0x20
	INVON    = 0x21
	DISPOFF  = 0x28
	DISPON   = 0x29
	CASET    = 0x2A
	RASET    = 0x2B
	RAMWR    = 0x2C
	VSCRDEF  = 0x33
	TEOFF    = 0x34
	TEON     = 0x35
	MADCTL   = 0x36
	VSCRSADD = 0x37
	IDMOFF   = 0x38
	IDMON    = 0x39
	COLMOD   = 0x3A
)

// MADCTL bits.
const (
	madctlMV = 0x20
	madctlMX = 0x40
	madctlMY = 0x80
)

// Timing enforced by the virtual clock.
const (
	ResetSettle  = 120 * time.Millisecond
	CommandDelay = 5 * time.Millisecond
)

// Errors
var (
	ErrInReset   = errors.New("emulator: command while reset is asserted")
	ErrNotReady  = errors.New("emulator: command before the controller settled")
	ErrNoCommand = errors.New("emulator: data without a command")
	ErrClosed    = errors.New("emulator: connection closed")
	ErrFault     = errors.New("emulator: injected bus fault")
)

// Op is one command with the data bytes that followed it.
type Op struct {
	Cmd  byte
	Data []byte
}

func (op Op) String() string {
	if len(op.Data) > 16 {
		return fmt.Sprintf("%#02x [%d bytes]", op.Cmd, len(op.Data))
	}
	return fmt.Sprintf("%#02x % x", op.Cmd, op.Data)
}

// Panel is an emulated controller.
type Panel struct {
	// Ops records the command stream since the last ClearOps.
	Ops []Op

	// RecordPixels keeps memory write data in Ops.
	RecordPixels bool

	mem *pixel.CRGB16Image
	now time.Duration

	inReset bool
	readyAt time.Duration
	powered bool // a reset pulse has completed

	sleeping  bool
	displayOn bool
	inverted  bool
	idle      bool
	tearing   bool
	madctl    byte
	colmod    byte

	xs, xe, ys, ye uint16
	col, row       uint16
	half           int // buffered high byte during memory write, -1 if none

	tfa, vsa, bfa, vsp uint16

	faultAfter int
	fault      error
	closed     bool
}

// New returns a powered panel that still needs a hardware reset.
func New() *Panel {
	p := &Panel{
		RecordPixels: true,
		mem:          pixel.NewCRGB16Image(Width, Height),
		faultAfter:   -1,
	}
	p.defaults()
	return p
}

func (p *Panel) defaults() {
	p.sleeping = true
	p.displayOn = false
	p.inverted = false
	p.idle = false
	p.tearing = false
	p.madctl = 0
	p.colmod = 0x66
	p.xs, p.xe = 0, Width-1
	p.ys, p.ye = 0, Height-1
	p.tfa, p.vsa, p.bfa, p.vsp = 0, Height, 0, 0
	p.half = -1
}

func (p *Panel) String() string {
	return "emulated ST7789"
}

// Close the connection; further transfers fail.
func (p *Panel) Close() error {
	p.closed = true
	return nil
}

// InjectFault makes every transfer fail with err once after transfers have
// succeeded. A nil err fails with ErrFault.
func (p *Panel) InjectFault(after int, err error) {
	if err == nil {
		err = ErrFault
	}
	p.faultAfter, p.fault = after, err
}

func (p *Panel) transfer() error {
	if p.closed {
		return ErrClosed
	}
	if p.faultAfter == 0 {
		return p.fault
	}
	if p.faultAfter > 0 {
		p.faultAfter--
	}
	return nil
}

// Sleep advances the virtual clock.
func (p *Panel) Sleep(d time.Duration) {
	p.now += d
}

// Now is the virtual clock.
func (p *Panel) Now() time.Duration {
	return p.now
}

// Reset drives the reset line. A low level resets all registers; memory
// contents are undefined afterwards and kept as is.
func (p *Panel) Reset(level gpio.Level) error {
	if err := p.transfer(); err != nil {
		return err
	}
	if level == gpio.Low {
		p.inReset = true
		p.defaults()
		return nil
	}
	if p.inReset {
		p.inReset = false
		p.powered = true
		p.readyAt = p.now + ResetSettle
	}
	return nil
}

// Command starts a new command.
func (p *Panel) Command(cmd byte) error {
	if err := p.transfer(); err != nil {
		return err
	}
	switch {
	case p.inReset:
		return ErrInReset
	case !p.powered || p.now < p.readyAt:
		return ErrNotReady
	}
	p.Ops = append(p.Ops, Op{Cmd: cmd})
	p.half = -1

	switch cmd {
	case SWRESET:
		p.defaults()
		p.readyAt = p.now + CommandDelay
	case SLPIN:
		p.sleeping = true
		p.readyAt = p.now + CommandDelay
	case SLPOUT:
		p.sleeping = false
		p.readyAt = p.now + CommandDelay
	case INVOFF:
		p.inverted = false
	case INVON:
		p.inverted = true
	case DISPOFF:
		p.displayOn = false
	case DISPON:
		p.displayOn = true
	case TEOFF:
		p.tearing = false
	case IDMOFF:
		p.idle = false
	case IDMON:
		p.idle = true
	case RAMWR:
		p.col, p.row = p.xs, p.ys
	}
	return nil
}

// Data sends parameter or pixel bytes for the current command.
func (p *Panel) Data(data ...byte) error {
	if err := p.transfer(); err != nil {
		return err
	}
	op, err := p.current()
	if err != nil {
		return err
	}
	if op.Cmd == RAMWR {
		for _, b := range data {
			p.memoryByte(op, b)
		}
		return nil
	}
	op.Data = append(op.Data, data...)
	p.parameters(op)
	return nil
}

// Pixels streams colors as memory write data.
func (p *Panel) Pixels(colors pixel.Colors) error {
	if err := p.transfer(); err != nil {
		return err
	}
	op, err := p.current()
	if err != nil {
		return err
	}
	for c := range colors {
		hi, lo := c.Bytes()
		if op.Cmd != RAMWR {
			op.Data = append(op.Data, hi, lo)
			continue
		}
		p.memoryByte(op, hi)
		p.memoryByte(op, lo)
	}
	if op.Cmd != RAMWR {
		p.parameters(op)
	}
	return nil
}

func (p *Panel) current() (*Op, error) {
	if p.inReset {
		return nil, ErrInReset
	}
	if len(p.Ops) == 0 {
		return nil, ErrNoCommand
	}
	return &p.Ops[len(p.Ops)-1], nil
}

func be16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// parameters applies a register once its payload is complete.
func (p *Panel) parameters(op *Op) {
	d := op.Data
	switch op.Cmd {
	case CASET:
		if len(d) >= 4 {
			p.xs, p.xe = be16(d[0:]), be16(d[2:])
		}
	case RASET:
		if len(d) >= 4 {
			p.ys, p.ye = be16(d[0:]), be16(d[2:])
		}
	case MADCTL:
		if len(d) >= 1 {
			p.madctl = d[0]
		}
	case COLMOD:
		if len(d) >= 1 {
			p.colmod = d[0]
		}
	case TEON:
		if len(d) >= 1 {
			p.tearing = true
		}
	case VSCRDEF:
		if len(d) >= 6 {
			p.tfa, p.vsa, p.bfa = be16(d[0:]), be16(d[2:]), be16(d[4:])
		}
	case VSCRSADD:
		if len(d) >= 2 {
			p.vsp = be16(d)
		}
	}
}

func (p *Panel) memoryByte(op *Op, b byte) {
	if p.RecordPixels {
		op.Data = append(op.Data, b)
	}
	if p.half < 0 {
		p.half = int(b)
		return
	}
	v := pixel.CRGB16{V: uint16(p.half)<<8 | uint16(b)}
	p.half = -1
	if x, y, ok := p.physical(p.col, p.row); ok {
		p.mem.SetCRGB16(x, y, v)
	}
	// Column counter first, then page, wrapping within the window.
	if p.col >= p.xe {
		p.col = p.xs
		if p.row >= p.ye {
			p.row = p.ys
		} else {
			p.row++
		}
	} else {
		p.col++
	}
}

// physical maps address counters to a frame memory location.
func (p *Panel) physical(c, r uint16) (x, y int, ok bool) {
	u, v := int(c), int(r)
	if p.madctl&madctlMV != 0 {
		u, v = v, u
	}
	if u >= Width || v >= Height {
		return 0, 0, false
	}
	if p.madctl&madctlMX != 0 {
		u = Width - 1 - u
	}
	if p.madctl&madctlMY != 0 {
		v = Height - 1 - v
	}
	return u, v, true
}

// Memory is the raw frame memory, in native orientation.
func (p *Panel) Memory() *pixel.CRGB16Image {
	return p.mem
}

// Line returns the frame memory row shown on display line l, applying the
// vertical scroll registers.
func (p *Panel) Line(l int) int {
	var (
		tfa = int(p.tfa)
		vsa = int(p.vsa)
		vsp = int(p.vsp)
	)
	if vsa == 0 || l < tfa || l >= tfa+vsa {
		return l
	}
	start := (vsp - tfa) % vsa
	if start < 0 {
		start += vsa
	}
	return tfa + (start+l-tfa)%vsa
}

// Snapshot returns what the display shows in r, in frame memory coordinates.
func (p *Panel) Snapshot(r image.Rectangle) *pixel.CRGB16Image {
	r = r.Intersect(p.mem.Bounds())
	out := pixel.NewCRGB16Image(r.Dx(), r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		line := p.Line(y)
		for x := r.Min.X; x < r.Max.X; x++ {
			out.SetCRGB16(x-r.Min.X, y-r.Min.Y, p.mem.CRGB16At(x, line))
		}
	}
	return out
}

// ClearOps forgets the recorded command stream.
func (p *Panel) ClearOps() {
	p.Ops = p.Ops[:0]
}

// Commands lists the recorded command codes.
func (p *Panel) Commands() []byte {
	cmds := make([]byte, len(p.Ops))
	for i, op := range p.Ops {
		cmds[i] = op.Cmd
	}
	return cmds
}

// State is a snapshot of the controller registers.
type State struct {
	Sleeping, DisplayOn, Inverted, Idle, Tearing bool

	MADCTL, COLMOD byte

	Window [4]uint16 // XS, XE, YS, YE

	Scroll [4]uint16 // TFA, VSA, BFA, VSP
}

// State returns the controller registers.
func (p *Panel) State() State {
	return State{
		Sleeping:  p.sleeping,
		DisplayOn: p.displayOn,
		Inverted:  p.inverted,
		Idle:      p.idle,
		Tearing:   p.tearing,
		MADCTL:    p.madctl,
		COLMOD:    p.colmod,
		Window:    [4]uint16{p.xs, p.xe, p.ys, p.ye},
		Scroll:    [4]uint16{p.tfa, p.vsa, p.bfa, p.vsp},
	}
}
