// Package soc holds the host audio framework contracts a machine driver
// binds against, plus Core, an in-process implementation of that framework.
package soc

import "zybo-sound/hwdesc"

// ------------------------
// Widgets & routes
// ------------------------

type WidgetKind uint8

const (
	Speaker WidgetKind = iota + 1
	Headphone
	Microphone
	LineInput
)

func (k WidgetKind) String() string {
	switch k {
	case Speaker:
		return "speaker"
	case Headphone:
		return "headphone"
	case Microphone:
		return "microphone"
	case LineInput:
		return "line_input"
	}
	return "unknown"
}

// Widget is an externally reachable endpoint (jack/connector).
type Widget struct {
	Name string
	Kind WidgetKind
}

// Route is a directed edge. Either side is a widget name or a codec pin.
type Route struct {
	Sink   string
	Source string
}

// ------------------------
// DAI format
// ------------------------

type Framing uint8

const (
	FramingI2S Framing = iota + 1
	FramingLeftJ
	FramingRightJ
	FramingDSPA
)

type Inversion uint8

const (
	NormalBitNormalFrame Inversion = iota + 1 // NB_NF
	NormalBitInvFrame
	InvBitNormalFrame
	InvBitInvFrame
)

// Clocking names which side drives bit and frame clocks.
type Clocking uint8

const (
	CodecConsumer Clocking = iota + 1 // CBS_CFS: transport drives BCLK/LRCLK
	CodecProvider                     // CBM_CFM
)

type DAIFormat struct {
	Framing   Framing
	Inversion Inversion
	Clocking  Clocking
}

// ------------------------
// Clocking requests
// ------------------------

type ClockSource uint8

const (
	// SourceSysclk is the codec's external reference input (MCLK pin).
	SourceSysclk ClockSource = iota + 1
)

type ClockDir uint8

const (
	ClockIn ClockDir = iota + 1
	ClockOut
)

// ClockRequest is one clock-source configuration handed to a codec.
type ClockRequest struct {
	Source   ClockSource
	InputHz  uint32 // reference fed to the codec
	TargetHz uint32 // master clock the codec must derive
	Dir      ClockDir
}

// ClockSetter is the single codec call a machine driver may make.
type ClockSetter interface {
	SetClockSource(req ClockRequest) error
}

// Codec is a codec component as seen by the framework.
type Codec interface {
	ClockSetter
	DAIName() string
	// Pins is the codec-internal routing namespace.
	Pins() []string
}

// ------------------------
// Streams
// ------------------------

type Stream uint8

const (
	Playback Stream = iota
	Capture
)

// HWParams is one stream-parameter negotiation event.
type HWParams struct {
	Stream   Stream
	Rate     uint32
	Channels uint8
}

// Runtime is what link ops see on each event.
type Runtime struct {
	Card  *Card
	Link  *DAILink
	Codec Codec
}

// LinkOps are the per-link callbacks.
type LinkOps interface {
	HWParams(rt *Runtime, p HWParams) error
}

// ------------------------
// Card
// ------------------------

type DAILink struct {
	Name         string
	StreamName   string
	CodecDAIName string
	Format       DAIFormat
	Ops          LinkOps

	Codec    *hwdesc.Node
	CPU      *hwdesc.Node
	Platform *hwdesc.Node
}

// Card is the descriptor handed to Framework.Register. The framework keeps
// the pointer until Unregister; callers must not mutate it meanwhile.
type Card struct {
	Name        string
	Links       []DAILink
	Widgets     []Widget
	Routes      []Route
	FullyRouted bool
}

// Framework is the registration surface of the host audio framework.
type Framework interface {
	Register(card *Card) error
	Unregister(card *Card)
}
