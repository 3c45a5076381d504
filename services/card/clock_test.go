package card

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zybo-sound/errcode"
	"zybo-sound/soc"
)

type recordingCodec struct {
	reqs []soc.ClockRequest
	err  error
}

func (r *recordingCodec) SetClockSource(req soc.ClockRequest) error {
	r.reqs = append(r.reqs, req)
	return r.err
}

func TestNegotiateFamilies(t *testing.T) {
	families := map[uint32][]uint32{
		49152000: {8000, 12000, 16000, 24000, 32000, 48000, 96000},
		45158400: {7350, 11025, 14700, 22050, 29400, 44100, 88200},
	}
	for mclk, rates := range families {
		for _, rate := range rates {
			codec := &recordingCodec{}
			req, err := Negotiate(codec, rate)
			require.NoError(t, err, rate)
			assert.Equal(t, mclk, req.TargetHz, rate)
			require.Len(t, codec.reqs, 1, rate)
			assert.Equal(t, soc.ClockRequest{
				Source:   soc.SourceSysclk,
				InputHz:  12000000,
				TargetHz: mclk,
				Dir:      soc.ClockIn,
			}, codec.reqs[0])
		}
	}
}

func TestNegotiateRejectsUnknownRates(t *testing.T) {
	for _, rate := range []uint32{11111, 0, 192000, 176400, 44101, 47999} {
		codec := &recordingCodec{}
		_, err := Negotiate(codec, rate)
		assert.ErrorIs(t, err, errcode.InvalidArgument, rate)
		assert.Equal(t, errcode.InvalidArgument, errcode.Of(err))
		assert.Empty(t, codec.reqs, "no codec call for rate %d", rate)
	}
}

func TestNegotiatePropagatesCodecFailure(t *testing.T) {
	cause := errors.New("unsupported pll ratio")
	codec := &recordingCodec{err: cause}

	_, err := Negotiate(codec, 48000)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, errcode.ClockConfigFailed, errcode.Of(err))
	assert.Len(t, codec.reqs, 1, "no retry")

	// A later valid negotiation is unaffected.
	codec.err = nil
	req, err := Negotiate(codec, 44100)
	require.NoError(t, err)
	assert.Equal(t, uint32(MCLK44k1), req.TargetHz)
}

func TestNegotiateWithoutCodec(t *testing.T) {
	_, err := Negotiate(nil, 48000)
	assert.Equal(t, errcode.ClockConfigFailed, errcode.Of(err))
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, Family48k, FamilyOf(48000))
	assert.Equal(t, Family44k1, FamilyOf(44100))
	assert.Equal(t, FamilyNone, FamilyOf(192000))
	assert.Equal(t, uint32(0), FamilyNone.MCLK())
	assert.Equal(t, "", FamilyNone.String())
	assert.Equal(t, "48k", Family48k.String())
}

func TestClockForIsPure(t *testing.T) {
	a, err := ClockFor(96000)
	require.NoError(t, err)
	b, err := ClockFor(8000)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
