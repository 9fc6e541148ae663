package st7789

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/BeatGlow/st7789/pixel"
)

// Conn errors.
var (
	ErrResetPin = errors.New("st7789: reset GPIO pin is invalid")
	ErrDCPin    = errors.New("st7789: data/command (DC) GPIO pin is invalid")
)

// Conn is the command/data transport to the controller.
//
// The data/command line is set before a transfer starts and stays at that
// level until the transfer completes; command and data bytes are never mixed
// within one transfer.
type Conn interface {
	String() string

	// Close the connection.
	Close() error

	// Reset sets the reset pin to the provided level.
	Reset(gpio.Level) error

	// Command sends one command byte with the data/command line at command level.
	Command(byte) error

	// Data sends parameter bytes with the data/command line at data level.
	Data(...byte) error

	// Pixels streams colors, most significant byte first, as one data burst.
	Pixels(pixel.Colors) error
}

// SPIConfig describes the SPI bus configuration.
type SPIConfig struct {
	// Frequency of the SPI clock.
	Frequency physic.Frequency

	// DataLow inverts the data/command line: data is sent with DC low.
	DataLow bool

	// BatchSize is the maximum number of bytes per bus transaction.
	BatchSize int

	// Reset pin (required).
	Reset gpio.PinOut

	// DC is the data/command pin (required).
	DC gpio.PinOut

	// CS is an optional chip select driven by software, active low.
	CS gpio.PinOut

	// Logger for bus traces.
	Logger logr.Logger
}

// DefaultSPIConfig are the default configuration values.
var DefaultSPIConfig = SPIConfig{
	Frequency: 40 * physic.MegaHertz,
	BatchSize: 4096,
}

type spiConn struct {
	port      spi.Port
	bus       spi.Conn
	name      string
	log       logr.Logger
	reset     gpio.PinOut
	dc        gpio.PinOut
	dcLevel   gpio.Level
	dcValid   bool
	cs        gpio.PinOut
	dataLow   bool
	batchSize int
	buf       []byte
}

// OpenSPI connects to the controller on port in SPI mode 3. Closing the
// returned Conn closes port if it is an spi.PortCloser, such as the ports
// returned by spireg.Open.
func OpenSPI(port spi.Port, config *SPIConfig) (Conn, error) {
	if config == nil {
		config = new(SPIConfig)
	}
	if config.Reset == nil || config.Reset == gpio.INVALID {
		return nil, ErrResetPin
	}
	if config.DC == nil || config.DC == gpio.INVALID {
		return nil, ErrDCPin
	}

	var (
		freq      = config.Frequency
		batchSize = config.BatchSize
		logger    = config.Logger
	)
	if freq == 0 {
		freq = DefaultSPIConfig.Frequency
	}
	if batchSize <= 0 {
		batchSize = DefaultSPIConfig.BatchSize
	}
	if logger.GetSink() == nil {
		logger = defaultLogger()
	}

	bus, err := port.Connect(freq, spi.Mode3, 8)
	if err != nil {
		return nil, fmt.Errorf("st7789: connect %s: %w", port, err)
	}
	if l, ok := bus.(conn.Limits); ok {
		if limit := l.MaxTxSize(); limit > 0 && limit < batchSize {
			batchSize = limit
		}
	}
	if batchSize&1 == 1 && batchSize > 1 {
		// keep both bytes of a pixel in the same transaction
		batchSize--
	}

	c := &spiConn{
		port:      port,
		bus:       bus,
		name:      port.String(),
		log:       logger.WithName("spi"),
		reset:     config.Reset,
		dc:        config.DC,
		cs:        config.CS,
		dataLow:   config.DataLow,
		batchSize: batchSize,
		buf:       make([]byte, 0, batchSize),
	}
	if err = c.updateCS(gpio.High); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *spiConn) String() string {
	return fmt.Sprintf("SPI bus %s", c.name)
}

func (c *spiConn) Close() error {
	err := c.updateCS(gpio.High)
	if closer, ok := c.port.(spi.PortCloser); ok {
		if closeErr := closer.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

func (c *spiConn) Reset(level gpio.Level) error {
	return c.reset.Out(level)
}

func (c *spiConn) commandLevel() gpio.Level {
	return gpio.Level(c.dataLow)
}

func (c *spiConn) dataLevel() gpio.Level {
	return gpio.Level(!c.dataLow)
}

func (c *spiConn) updateDC(level gpio.Level) error {
	if !c.dcValid || c.dcLevel != level {
		if err := c.dc.Out(level); err != nil {
			return err
		}
		c.dcLevel = level
		c.dcValid = true
	}
	return nil
}

func (c *spiConn) updateCS(level gpio.Level) error {
	if c.cs == nil {
		return nil
	}
	return c.cs.Out(level)
}

// begin selects the chip with the data/command line at level.
func (c *spiConn) begin(level gpio.Level) error {
	if err := c.updateDC(level); err != nil {
		return err
	}
	return c.updateCS(gpio.Low)
}

// end deselects the chip, keeping the first error.
func (c *spiConn) end(err error) error {
	if csErr := c.updateCS(gpio.High); err == nil {
		err = csErr
	}
	return err
}

func (c *spiConn) Command(cmnd byte) (err error) {
	if err = c.begin(c.commandLevel()); err != nil {
		return
	}
	return c.end(c.bus.Tx([]byte{cmnd}, nil))
}

func (c *spiConn) Data(data ...byte) (err error) {
	if len(data) == 0 {
		return
	}
	if err = c.begin(c.dataLevel()); err != nil {
		return
	}
	return c.end(c.writeChunked(data))
}

func (c *spiConn) Pixels(colors pixel.Colors) (err error) {
	if err = c.begin(c.dataLevel()); err != nil {
		return
	}
	defer func() { err = c.end(err) }()

	var (
		buf    = c.buf[:0]
		count  int
		chunks int
	)
	for v := range colors {
		hi, lo := v.Bytes()
		buf = append(buf, hi, lo)
		count++
		if len(buf) >= c.batchSize {
			if err = c.bus.Tx(buf, nil); err != nil {
				return
			}
			buf = buf[:0]
			chunks++
		}
	}
	if len(buf) > 0 {
		if err = c.bus.Tx(buf, nil); err != nil {
			return
		}
		chunks++
	}
	c.log.V(2).Info("pixel burst", "pixels", count, "chunks", chunks)
	return
}

func (c *spiConn) writeChunked(data []byte) (err error) {
	if len(data) <= c.batchSize {
		return c.bus.Tx(data, nil)
	}

	c.log.V(2).Info("chunked write", "bytes", len(data), "chunks", (len(data)+c.batchSize-1)/c.batchSize)
	for buffer := data; len(buffer) > 0; {
		n := min(len(buffer), c.batchSize)
		if err = c.bus.Tx(buffer[:n], nil); err != nil {
			return
		}
		buffer = buffer[n:]
	}
	return
}

var _ Conn = (*spiConn)(nil)
