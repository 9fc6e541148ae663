package st7789

import (
	"errors"
	"image"
	"io"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/BeatGlow/st7789/pixel"
)

// pinEvent is a level change with the number of bus transactions before it.
type pinEvent struct {
	Level gpio.Level
	Tx    int
}

type recordPin struct {
	gpiotest.Pin
	bus    *spitest.Record
	events []pinEvent
}

func (p *recordPin) Out(level gpio.Level) error {
	p.events = append(p.events, pinEvent{Level: level, Tx: len(p.bus.Ops)})
	return p.Pin.Out(level)
}

func writes(bus *spitest.Record) [][]byte {
	var out [][]byte
	for _, op := range bus.Ops {
		out = append(out, op.W)
	}
	return out
}

func openTestSPI(t *testing.T, dataLow bool) (Conn, *spitest.Record, *recordPin, *recordPin, *gpiotest.Pin) {
	t.Helper()
	var (
		bus   = new(spitest.Record)
		dc    = &recordPin{Pin: gpiotest.Pin{N: "DC"}, bus: bus}
		cs    = &recordPin{Pin: gpiotest.Pin{N: "CS"}, bus: bus}
		reset = &gpiotest.Pin{N: "RESET"}
	)
	c, err := OpenSPI(bus, &SPIConfig{
		BatchSize: 5,
		DataLow:   dataLow,
		Reset:     reset,
		DC:        dc,
		CS:        cs,
		Logger:    testr.NewWithOptions(t, testr.Options{Verbosity: 2}),
	})
	if err != nil {
		t.Fatal(err)
	}
	return c, bus, dc, cs, reset
}

func TestOpenSPIPins(t *testing.T) {
	var (
		bus = new(spitest.Record)
		pin = &gpiotest.Pin{N: "GPIO"}
	)
	if _, err := OpenSPI(bus, &SPIConfig{DC: pin}); !errors.Is(err, ErrResetPin) {
		t.Errorf("expected ErrResetPin, got %v", err)
	}
	if _, err := OpenSPI(bus, &SPIConfig{Reset: pin, DC: gpio.INVALID}); !errors.Is(err, ErrDCPin) {
		t.Errorf("expected ErrDCPin, got %v", err)
	}
}

func TestSPIConn(t *testing.T) {
	c, bus, dc, cs, reset := openTestSPI(t, false)

	if err := c.Reset(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if reset.L != gpio.Low {
		t.Errorf("expected reset low")
	}
	if err := c.Command(0x2a); err != nil {
		t.Fatal(err)
	}
	if err := c.Data(0x00, 0x01, 0x00, 0xef); err != nil {
		t.Fatal(err)
	}
	if err := c.Command(0x2c); err != nil {
		t.Fatal(err)
	}
	// 5 pixels in batches of 4 bytes: the batch size is rounded down to
	// keep pixels whole.
	if err := c.Pixels(pixel.Repeat(pixel.Red, 5)); err != nil {
		t.Fatal(err)
	}

	wantWrites := [][]byte{
		{0x2a},
		{0x00, 0x01, 0x00, 0xef},
		{0x2c},
		{0xf8, 0x00, 0xf8, 0x00},
		{0xf8, 0x00, 0xf8, 0x00},
		{0xf8, 0x00},
	}
	if diff := cmp.Diff(wantWrites, writes(bus)); diff != "" {
		t.Errorf("bus writes mismatch (-want +got):\n%s", diff)
	}

	// DC only changes between transfers, never inside one.
	wantDC := []pinEvent{
		{gpio.Low, 0},
		{gpio.High, 1},
		{gpio.Low, 2},
		{gpio.High, 3},
	}
	if diff := cmp.Diff(wantDC, dc.events); diff != "" {
		t.Errorf("DC level mismatch (-want +got):\n%s", diff)
	}

	wantCS := []pinEvent{
		{gpio.High, 0}, // deselected on open
		{gpio.Low, 0}, {gpio.High, 1},
		{gpio.Low, 1}, {gpio.High, 2},
		{gpio.Low, 2}, {gpio.High, 3},
		{gpio.Low, 3}, {gpio.High, 6},
	}
	if diff := cmp.Diff(wantCS, cs.events); diff != "" {
		t.Errorf("CS mismatch (-want +got):\n%s", diff)
	}
}

func TestSPIConnDataLow(t *testing.T) {
	c, _, dc, _, _ := openTestSPI(t, true)
	if err := c.Command(0x29); err != nil {
		t.Fatal(err)
	}
	if err := c.Data(0x01); err != nil {
		t.Fatal(err)
	}
	if err := c.Data(0x02); err != nil {
		t.Fatal(err)
	}
	want := []pinEvent{{gpio.High, 0}, {gpio.Low, 1}}
	if diff := cmp.Diff(want, dc.events); diff != "" {
		t.Errorf("DC level mismatch (-want +got):\n%s", diff)
	}
}

func TestSPIConnChunkedData(t *testing.T) {
	c, bus, _, _, _ := openTestSPI(t, false)
	if err := c.Data(1, 2, 3, 4, 5, 6, 7, 8, 9); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}, {9}}, writes(bus)); diff != "" {
		t.Errorf("chunked writes mismatch (-want +got):\n%s", diff)
	}

	// Empty data is not sent at all.
	if err := c.Data(); err != nil {
		t.Fatal(err)
	}
	if n := len(bus.Ops); n != 3 {
		t.Errorf("expected 3 transactions, got %d", n)
	}
}

func TestDevOverSPI(t *testing.T) {
	c, bus, _, _, reset := openTestSPI(t, false)
	d, err := New(c, &Config{Logger: testr.New(t)})
	if err != nil {
		t.Fatal(err)
	}
	if err = d.Init(DelayFunc(func(time.Duration) {})); err != nil {
		t.Fatal(err)
	}
	if reset.L != gpio.High {
		t.Error("expected reset released after init")
	}

	bus.Ops = bus.Ops[:0]
	if err = d.FillRect(image.Rect(0, 0, 2, 1), pixel.White); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{
		{0x2a}, {0x00, 0x00, 0x00, 0x01},
		{0x2b}, {0x00, 0x00, 0x00, 0x00},
		{0x2c}, {0xff, 0xff, 0xff, 0xff},
	}
	if diff := cmp.Diff(want, writes(bus)); diff != "" {
		t.Errorf("bus writes mismatch (-want +got):\n%s", diff)
	}
}

type closeCounter struct {
	spi.PortCloser
	closed int
}

func (p *closeCounter) Close() error {
	p.closed++
	return p.PortCloser.Close()
}

func TestSPIConnClose(t *testing.T) {
	var (
		port = &closeCounter{PortCloser: spitest.NewRecordRaw(io.Discard)}
		bus  = &spitest.Record{Port: port}
		cs   = &recordPin{Pin: gpiotest.Pin{N: "CS"}, bus: bus}
	)
	c, err := OpenSPI(bus, &SPIConfig{
		Reset: &gpiotest.Pin{N: "RESET"},
		DC:    &gpiotest.Pin{N: "DC"},
		CS:    cs,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err = c.Command(0x29); err != nil {
		t.Fatal(err)
	}
	if err = c.Close(); err != nil {
		t.Fatal(err)
	}
	if port.closed != 1 {
		t.Errorf("expected the port to be closed once, got %d", port.closed)
	}
	if last := cs.events[len(cs.events)-1]; last.Level != gpio.High {
		t.Errorf("expected chip select released, got %v", last)
	}
}
