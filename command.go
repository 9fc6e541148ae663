package st7789

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/st7789/pixel"
)

// Registers (from st7789.pdf).
const (
	st7789SWRESET   = 0x01 // Software Reset
	st7789SLPIN     = 0x10 // Sleep In
	st7789SLPOUT    = 0x11 // Sleep Out
	st7789NORON     = 0x13 // Normal Display Mode On
	st7789INVOFF    = 0x20 // Display Inversion Off
	st7789INVON     = 0x21 // Display Inversion On
	st7789DISPOFF   = 0x28 // Display Off
	st7789DISPON    = 0x29 // Display On
	st7789CASET     = 0x2A // Column Address Set
	st7789RASET     = 0x2B // Row Address Set
	st7789RAMWR     = 0x2C // Memory Write
	st7789VSCRDEF   = 0x33 // Vertical Scrolling Definition
	st7789TEOFF     = 0x34 // Tearing Effect Line Off
	st7789TEON      = 0x35 // Tearing Effect Line On
	st7789MADCTL    = 0x36 // Memory Data Access Control
	st7789VSCRSADD  = 0x37 // Vertical Scroll Start Address of RAM
	st7789IDMOFF    = 0x38 // Idle Mode Off
	st7789IDMON     = 0x39 // Idle Mode On
	st7789COLMOD    = 0x3A // Interface Pixel Format
	st7789PORCTRL   = 0xB2 // Porch Setting
	st7789GCTRL     = 0xB7 // Gate Control
	st7789VCOMS     = 0xBB // VCOM Setting
	st7789LCMCTRL   = 0xC0 // LCM Control
	st7789VDVVRHEN  = 0xC2 // VDV and VRH Command Enable
	st7789VRHS      = 0xC3 // VRH Set
	st7789VDVSET    = 0xC4 // VDV Set
	st7789VCMOFSET  = 0xC5 // VCOM Offset Set
	st7789FRCTR2    = 0xC6 // Frame Rate Control in Normal Mode
	st7789PWCTRL1   = 0xD0 // Power Control 1
	st7789PVGAMCTRL = 0xE0 // Positive Voltage Gamma Control
	st7789NVGAMCTRL = 0xE1 // Negative Voltage Gamma Control
)

// Interface Pixel Format (COLMOD): 65K RGB interface, 16 bits per pixel.
const st7789ColorMode16 = 0x55

// Timing (from st7789.pdf).
const (
	resetPulse   = 1 * time.Millisecond   // TRW >= 10µs
	resetSettle  = 120 * time.Millisecond // TRT, also covers sleep out after reset
	softReset    = 150 * time.Millisecond
	sleepOutWait = 10 * time.Millisecond // >= 5ms before the next command
	sleepInWait  = 5 * time.Millisecond
	settleWait   = 10 * time.Millisecond
)

// operation is a controller capability used by the driver.
type operation uint8

const (
	opSoftReset operation = iota
	opSleepIn
	opSleepOut
	opNormalMode
	opInversionOff
	opInversionOn
	opDisplayOff
	opDisplayOn
	opColumnAddress
	opRowAddress
	opMemoryWrite
	opScrollArea
	opTearingOff
	opTearingOn
	opMemoryAccessControl
	opScrollStart
	opIdleOff
	opIdleOn
	opColorMode
	opPorchSetting
	opGateControl
	opVCOMSetting
	opLCMControl
	opVDVVRHEnable
	opVRHSet
	opVDVSet
	opVCOMOffset
	opFrameRate
	opPowerControl
	opPositiveGamma
	opNegativeGamma
	numOperations
)

// command describes the wire encoding of an operation.
type command struct {
	name string
	code byte
	// params is the fixed payload length; -1 means a pixel stream follows.
	params int
}

var commands = [numOperations]command{
	opSoftReset:           {"SWRESET", st7789SWRESET, 0},
	opSleepIn:             {"SLPIN", st7789SLPIN, 0},
	opSleepOut:            {"SLPOUT", st7789SLPOUT, 0},
	opNormalMode:          {"NORON", st7789NORON, 0},
	opInversionOff:        {"INVOFF", st7789INVOFF, 0},
	opInversionOn:         {"INVON", st7789INVON, 0},
	opDisplayOff:          {"DISPOFF", st7789DISPOFF, 0},
	opDisplayOn:           {"DISPON", st7789DISPON, 0},
	opColumnAddress:       {"CASET", st7789CASET, 4},
	opRowAddress:          {"RASET", st7789RASET, 4},
	opMemoryWrite:         {"RAMWR", st7789RAMWR, -1},
	opScrollArea:          {"VSCRDEF", st7789VSCRDEF, 6},
	opTearingOff:          {"TEOFF", st7789TEOFF, 0},
	opTearingOn:           {"TEON", st7789TEON, 1},
	opMemoryAccessControl: {"MADCTL", st7789MADCTL, 1},
	opScrollStart:         {"VSCRSADD", st7789VSCRSADD, 2},
	opIdleOff:             {"IDMOFF", st7789IDMOFF, 0},
	opIdleOn:              {"IDMON", st7789IDMON, 0},
	opColorMode:           {"COLMOD", st7789COLMOD, 1},
	opPorchSetting:        {"PORCTRL", st7789PORCTRL, 5},
	opGateControl:         {"GCTRL", st7789GCTRL, 1},
	opVCOMSetting:         {"VCOMS", st7789VCOMS, 1},
	opLCMControl:          {"LCMCTRL", st7789LCMCTRL, 1},
	opVDVVRHEnable:        {"VDVVRHEN", st7789VDVVRHEN, 1},
	opVRHSet:              {"VRHS", st7789VRHS, 1},
	opVDVSet:              {"VDVSET", st7789VDVSET, 1},
	opVCOMOffset:          {"VCMOFSET", st7789VCMOFSET, 1},
	opFrameRate:           {"FRCTR2", st7789FRCTR2, 1},
	opPowerControl:        {"PWCTRL1", st7789PWCTRL1, 2},
	opPositiveGamma:       {"PVGAMCTRL", st7789PVGAMCTRL, 14},
	opNegativeGamma:       {"NVGAMCTRL", st7789NVGAMCTRL, 14},
}

func (op operation) String() string {
	if op < numOperations {
		return commands[op].name
	}
	return fmt.Sprintf("operation(%d)", uint8(op))
}

// panelSetup holds the power and gamma defaults sent after the color mode.
var panelSetup = []struct {
	op     operation
	params []byte
}{
	{opPorchSetting, []byte{0x0C, 0x0C, 0x00, 0x33, 0x33}}, // default
	{opGateControl, []byte{0x35}},                          // 13.26V / -10.43V (default)
	{opVCOMSetting, []byte{0x1A}},                          // 0.75V (default is 0x20 / 0.9V)
	{opLCMControl, []byte{0x2C}},                           // default
	{opVDVVRHEnable, []byte{0x01}},                         // default
	{opVRHSet, []byte{0x0B}},                               // default (4.1V+( vcom+vcom offset+vdv))
	{opVDVSet, []byte{0x20}},                               // default (0V)
	{opVCOMOffset, []byte{0x20}},                           // default (0V)
	{opFrameRate, []byte{0x0F}},                            // 60Hz (default)
	{opPowerControl, []byte{0xA4, 0xA1}},                   // default
	{opPositiveGamma, []byte{0x00, 0x19, 0x1E, 0x0A, 0x09, 0x15, 0x3D, 0x44, 0x51, 0x12, 0x03, 0x00, 0x3F, 0x3F}},
	{opNegativeGamma, []byte{0x00, 0x18, 0x1E, 0x0A, 0x09, 0x25, 0x3F, 0x43, 0x52, 0x33, 0x03, 0x00, 0x3F, 0x3F}},
}

// send issues one command with its parameter payload.
func (d *Dev) send(code byte, name string, params ...byte) error {
	if d.log.V(1).Enabled() {
		d.log.V(1).Info("command", "cmd", name, "code", fmt.Sprintf("%#02x", code), "params", fmt.Sprintf("% x", params))
	}
	if err := d.c.Command(code); err != nil {
		return transportError(name, err)
	}
	if len(params) > 0 {
		if err := d.c.Data(params...); err != nil {
			return transportError(name, err)
		}
	}
	return nil
}

// exec issues op, checking its payload against the command table.
func (d *Dev) exec(op operation, params ...byte) error {
	cmd := commands[op]
	if cmd.params < 0 || len(params) != cmd.params {
		return fmt.Errorf("st7789: %s takes %d parameter bytes, got %d", cmd.name, cmd.params, len(params))
	}
	return d.send(cmd.code, cmd.name, params...)
}

// resetSequence pulses the reset line and waits for the controller to settle.
func (d *Dev) resetSequence(delay Delayer) error {
	for _, step := range []struct {
		level gpio.Level
		wait  time.Duration
	}{
		{gpio.Low, resetPulse},
		{gpio.High, resetSettle},
	} {
		if err := d.c.Reset(step.level); err != nil {
			return transportError("reset", err)
		}
		delay.Sleep(step.wait)
	}
	return nil
}

func (d *Dev) softReset(delay Delayer) error {
	if err := d.exec(opSoftReset); err != nil {
		return err
	}
	delay.Sleep(softReset)
	return nil
}

func (d *Dev) sleepOut(delay Delayer) error {
	if err := d.exec(opSleepOut); err != nil {
		return err
	}
	delay.Sleep(sleepOutWait)
	return nil
}

func (d *Dev) sleepIn(delay Delayer) error {
	if err := d.exec(opSleepIn); err != nil {
		return err
	}
	delay.Sleep(sleepInWait)
	return nil
}

func (d *Dev) setColorMode() error {
	return d.exec(opColorMode, st7789ColorMode16)
}

func (d *Dev) setMemoryAccessControl(madctl byte) error {
	return d.exec(opMemoryAccessControl, madctl)
}

func (d *Dev) setAddressWindow(w Window) error {
	if d.log.V(2).Enabled() {
		d.log.V(2).Info("window", "rotation", d.rotation.String(), "window", w.String())
	}
	var buf [4]byte
	binary.BigEndian.PutUint16(buf[0:], w.XStart)
	binary.BigEndian.PutUint16(buf[2:], w.XEnd)
	if err := d.exec(opColumnAddress, buf[:]...); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(buf[0:], w.YStart)
	binary.BigEndian.PutUint16(buf[2:], w.YEnd)
	return d.exec(opRowAddress, buf[:]...)
}

// memoryWrite streams colors into the current address window.
func (d *Dev) memoryWrite(colors pixel.Colors) error {
	cmd := commands[opMemoryWrite]
	if err := d.send(cmd.code, cmd.name); err != nil {
		return err
	}
	return transportError(cmd.name, d.c.Pixels(colors))
}

// memoryWritePixel writes a single pixel into the current address window.
func (d *Dev) memoryWritePixel(c pixel.CRGB16) error {
	cmd := commands[opMemoryWrite]
	if err := d.send(cmd.code, cmd.name); err != nil {
		return err
	}
	hi, lo := c.Bytes()
	return transportError(cmd.name, d.c.Data(hi, lo))
}

func (d *Dev) setScrollArea(top, area, bottom uint16) error {
	var buf [6]byte
	binary.BigEndian.PutUint16(buf[0:], top)
	binary.BigEndian.PutUint16(buf[2:], area)
	binary.BigEndian.PutUint16(buf[4:], bottom)
	return d.exec(opScrollArea, buf[:]...)
}

func (d *Dev) setScrollOffset(line uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], line)
	return d.exec(opScrollStart, buf[:]...)
}

func (d *Dev) displayOn(delay Delayer) error {
	if err := d.exec(opDisplayOn); err != nil {
		return err
	}
	delay.Sleep(settleWait)
	return nil
}
