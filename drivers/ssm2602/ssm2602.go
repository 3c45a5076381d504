// Package ssm2602 provides the clocking side of the ADI SSM2602 audio codec.
// Only soft reset is written here. SetClockSource validates and records the
// system clock; sampling-control, mixer and power registers are programmed
// by the codec's own stream setup from the recorded clock and the stream
// rate.
//
// Control writes are 16-bit words on I2C: 7 address bits followed by 9 data
// bits, MSB first.
package ssm2602

import (
	"errors"

	"tinygo.org/x/drivers"

	"zybo-sound/soc"
)

// I2C addresses (CSB pin low/high).
const (
	Address    = 0x1A
	AddressAlt = 0x1B
)

// DAIName is the codec's only digital audio interface.
const DAIName = "ssm2602-hifi"

const regReset = 0x0F

const (
	// Master clocks the sample-clock generator can lock to.
	MCLK48k   = 48000 * 1024
	MCLK44k1  = 44100 * 1024
	usbRefClk = 12000000
)

// Codec-internal routing pins.
var pins = []string{"LOUT", "ROUT", "LHPOUT", "RHPOUT", "LLINEIN", "RLINEIN", "MICIN"}

var (
	ErrUnsupportedClock = errors.New("ssm2602: unsupported clock")
	ErrNotConfigured    = errors.New("ssm2602: not configured")
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x1A if zero.
	Address uint16
}

// Device wraps an I2C connection to an SSM2602.
type Device struct {
	bus     drivers.I2C
	Address uint16

	configured bool
	sysclk     soc.ClockRequest
	buf        [2]byte
}

// New creates a Device. The I2C bus must already be configured.
// It does not touch the device.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, Address: Address}
}

// Configure applies cfg and soft-resets the codec.
func (d *Device) Configure(cfgs ...Config) error {
	if len(cfgs) > 0 && cfgs[0].Address != 0 {
		d.Address = cfgs[0].Address
	}
	if err := d.write(regReset, 0); err != nil {
		return err
	}
	d.configured = true
	d.sysclk = soc.ClockRequest{}
	return nil
}

// DAIName returns the name of the codec's digital audio interface.
func (d *Device) DAIName() string { return DAIName }

// Pins returns the codec routing namespace.
func (d *Device) Pins() []string { return append([]string(nil), pins...) }

// Sysclk reports the last accepted clock request (zero before any).
func (d *Device) Sysclk() soc.ClockRequest { return d.sysclk }

// SetClockSource validates req and records it as the system clock. It does
// not touch the bus.
func (d *Device) SetClockSource(req soc.ClockRequest) error {
	if !d.configured {
		return ErrNotConfigured
	}
	if req.Source != soc.SourceSysclk || req.Dir != soc.ClockIn {
		return ErrUnsupportedClock
	}
	if !clockSupported(req.InputHz, req.TargetHz) {
		return ErrUnsupportedClock
	}
	d.sysclk = req
	return nil
}

// clockSupported reports whether the codec can derive target from a
// reference. A 12 MHz reference runs in USB mode and serves both families;
// any other reference serves one family only.
func clockSupported(inputHz, targetHz uint32) bool {
	switch inputHz {
	case usbRefClk:
		return targetHz == MCLK48k || targetHz == MCLK44k1
	case 12288000, 18432000:
		return targetHz == MCLK48k
	case 11289600, 16934400:
		return targetHz == MCLK44k1
	}
	return false
}

func (d *Device) write(reg uint8, val uint16) error {
	d.buf[0] = reg<<1 | uint8(val>>8)&0x01
	d.buf[1] = uint8(val)
	return d.bus.Tx(d.Address, d.buf[:], nil)
}
