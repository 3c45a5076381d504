package card

import (
	"fmt"

	"zybo-sound/errcode"
	"zybo-sound/soc"
	"zybo-sound/x/metrics"
)

const (
	// RefClockHz is the oscillator feeding the codec MCLK pin on the board.
	RefClockHz = 12000000

	MCLK48k  = 48000 * 1024 // 49.152 MHz
	MCLK44k1 = 44100 * 1024 // 45.1584 MHz
)

// Family groups sample rates that share a master clock.
type Family uint8

const (
	FamilyNone Family = iota
	Family48k
	Family44k1
)

func (f Family) String() string {
	switch f {
	case Family48k:
		return "48k"
	case Family44k1:
		return "44k1"
	}
	return ""
}

// MCLK returns the master clock for the family, 0 for FamilyNone.
func (f Family) MCLK() uint32 {
	switch f {
	case Family48k:
		return MCLK48k
	case Family44k1:
		return MCLK44k1
	}
	return 0
}

// FamilyOf classifies a sample rate. Only the listed rates are accepted;
// there is no nearest-rate fallback.
func FamilyOf(rate uint32) Family {
	switch rate {
	case 8000, 12000, 16000, 24000, 32000, 48000, 96000:
		return Family48k
	case 7350, 11025, 14700, 22050, 29400, 44100, 88200:
		return Family44k1
	}
	return FamilyNone
}

// ClockFor computes the codec clock request for a rate without touching
// hardware.
func ClockFor(rate uint32) (soc.ClockRequest, error) {
	f := FamilyOf(rate)
	if f == FamilyNone {
		return soc.ClockRequest{}, &errcode.E{
			C:   errcode.InvalidArgument,
			Op:  "negotiate",
			Msg: fmt.Sprintf("unsupported sample rate %d", rate),
		}
	}
	return soc.ClockRequest{
		Source:   soc.SourceSysclk,
		InputHz:  RefClockHz,
		TargetHz: f.MCLK(),
		Dir:      soc.ClockIn,
	}, nil
}

// Negotiate programs the codec clock for rate with exactly one
// SetClockSource call on success and none on invalid input. Codec failures
// come back wrapped as clock_config_failed with the cause intact. No retry.
func Negotiate(codec soc.ClockSetter, rate uint32) (soc.ClockRequest, error) {
	req, err := ClockFor(rate)
	if err != nil {
		return soc.ClockRequest{}, err
	}
	if codec == nil {
		return soc.ClockRequest{}, &errcode.E{C: errcode.ClockConfigFailed, Op: "negotiate", Msg: "no codec"}
	}
	if err := codec.SetClockSource(req); err != nil {
		return soc.ClockRequest{}, errcode.Wrap(errcode.ClockConfigFailed, "negotiate", err)
	}
	return req, nil
}

// linkOps is the DAI link callback set; it runs Negotiate on every
// hw_params event.
type linkOps struct {
	metrics *metrics.Card
}

func (o linkOps) HWParams(rt *soc.Runtime, p soc.HWParams) error {
	var codec soc.ClockSetter
	if rt != nil && rt.Codec != nil {
		codec = rt.Codec
	}
	_, err := Negotiate(codec, p.Rate)
	o.metrics.Negotiated(FamilyOf(p.Rate).String(), err)
	return err
}
