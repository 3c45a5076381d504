package ssm2602

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers"

	"zybo-sound/soc"
)

// Compile-time checks.
var (
	_ drivers.I2C = (*fakeI2C)(nil)
	_ soc.Codec   = (*Device)(nil)
)

type write struct {
	addr uint16
	reg  uint8
	val  uint16
}

type fakeI2C struct {
	writes []write
	err    error
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if f.err != nil {
		return f.err
	}
	if len(w) != 2 || len(r) != 0 {
		return errors.New("unexpected transfer shape")
	}
	f.writes = append(f.writes, write{
		addr: addr,
		reg:  w[0] >> 1,
		val:  uint16(w[0]&0x01)<<8 | uint16(w[1]),
	})
	return nil
}

func usbReq(target uint32) soc.ClockRequest {
	return soc.ClockRequest{Source: soc.SourceSysclk, InputHz: 12000000, TargetHz: target, Dir: soc.ClockIn}
}

func TestConfigureResets(t *testing.T) {
	bus := &fakeI2C{}
	d := New(bus)
	require.NoError(t, d.Configure(Config{Address: AddressAlt}))
	assert.Equal(t, []write{{addr: AddressAlt, reg: regReset}}, bus.writes)
}

func TestConfigureBusError(t *testing.T) {
	bus := &fakeI2C{err: errors.New("nack")}
	d := New(bus)
	assert.ErrorIs(t, d.Configure(), bus.err)
	assert.ErrorIs(t, d.SetClockSource(usbReq(MCLK48k)), ErrNotConfigured)
}

func TestSetClockSourceRecordsWithoutBusTraffic(t *testing.T) {
	bus := &fakeI2C{}
	d := New(bus)
	require.NoError(t, d.Configure())

	require.NoError(t, d.SetClockSource(usbReq(MCLK48k)))
	assert.Equal(t, usbReq(MCLK48k), d.Sysclk())

	require.NoError(t, d.SetClockSource(usbReq(MCLK44k1)))
	assert.Equal(t, usbReq(MCLK44k1), d.Sysclk())

	assert.Len(t, bus.writes, 1, "only the reset is written")
}

func TestSetClockSourceRejects(t *testing.T) {
	bus := &fakeI2C{}
	d := New(bus)
	assert.ErrorIs(t, d.SetClockSource(usbReq(MCLK48k)), ErrNotConfigured)
	require.NoError(t, d.Configure())
	require.NoError(t, d.SetClockSource(usbReq(MCLK48k)))

	bad := []soc.ClockRequest{
		usbReq(12345678),
		{Source: soc.SourceSysclk, InputHz: 24000000, TargetHz: MCLK48k, Dir: soc.ClockIn},
		{Source: soc.SourceSysclk, InputHz: 11289600, TargetHz: MCLK48k, Dir: soc.ClockIn},
		{Source: soc.SourceSysclk, InputHz: 12000000, TargetHz: MCLK48k, Dir: soc.ClockOut},
		{InputHz: 12000000, TargetHz: MCLK48k, Dir: soc.ClockIn},
	}
	for _, r := range bad {
		assert.ErrorIs(t, d.SetClockSource(r), ErrUnsupportedClock, "%+v", r)
	}
	assert.Equal(t, usbReq(MCLK48k), d.Sysclk(), "rejected requests must not replace the sysclk")
}

func TestConfigureClearsSysclk(t *testing.T) {
	d := New(&fakeI2C{})
	require.NoError(t, d.Configure())
	require.NoError(t, d.SetClockSource(usbReq(MCLK44k1)))
	require.NoError(t, d.Configure())
	assert.Equal(t, soc.ClockRequest{}, d.Sysclk())
}

func TestClockSupported(t *testing.T) {
	cases := []struct {
		in, target uint32
		ok         bool
	}{
		{12000000, MCLK48k, true},
		{12000000, MCLK44k1, true},
		{12288000, MCLK48k, true},
		{18432000, MCLK48k, true},
		{11289600, MCLK44k1, true},
		{16934400, MCLK44k1, true},
		{12288000, MCLK44k1, false},
		{16934400, MCLK48k, false},
		{12000000, 12288000, false},
		{24576000, MCLK48k, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, clockSupported(tc.in, tc.target), "%d->%d", tc.in, tc.target)
	}
}
