// Package card is the ZYBO SSM2602 machine driver: it binds the codec and the
// I2S transport named in the board description into one sound card, and
// programs the codec master clock on every stream setup.
//
// One Controller serves one physical device instance. The host serialises
// probe, remove and hw_params per instance, so Controller holds no locks.
package card

import (
	"log/slog"

	"zybo-sound/errcode"
	"zybo-sound/hwdesc"
	"zybo-sound/soc"
	"zybo-sound/x/logx"
	"zybo-sound/x/metrics"
)

const (
	DefaultCardName = "ZYBO SSM2602"
	Compatible      = "zybo-ssm2602-snd"
	LinkName        = "ssm2602"
	CodecDAIName    = "ssm2602-hifi"

	// Reference properties on the card node.
	PropCodec = "audio-codec"
	PropCPU   = "cpu-dai"
)

// LinkFormat is the I2S agreement between transport and codec: standard I2S
// framing, normal bit and frame clock polarity, codec clocked by the transport.
var LinkFormat = soc.DAIFormat{
	Framing:   soc.FramingI2S,
	Inversion: soc.NormalBitNormalFrame,
	Clocking:  soc.CodecConsumer,
}

// State is the lifecycle stage of one device instance.
type State uint8

const (
	Unbound State = iota
	Resolving
	Bound
	Registered
	Unregistered
	Failed
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Resolving:
		return "resolving"
	case Bound:
		return "bound"
	case Registered:
		return "registered"
	case Unregistered:
		return "unregistered"
	case Failed:
		return "error"
	}
	return "unknown"
}

// Config tunes a Controller. Zero values pick the ZYBO defaults.
type Config struct {
	CardName string
	Topology *Topology
	Resolver hwdesc.Resolver
	Metrics  *metrics.Card
	Log      *slog.Logger
}

// Controller drives one device instance from probe to remove.
type Controller struct {
	fw       soc.Framework
	name     string
	topo     Topology
	resolver hwdesc.Resolver
	metrics  *metrics.Card
	log      *slog.Logger

	state State
	err   error
	codec *hwdesc.Node
	cpu   *hwdesc.Node
	card  *soc.Card
}

// NewController returns an Unbound controller registering cards with fw.
func NewController(fw soc.Framework, cfg Config) *Controller {
	c := &Controller{
		fw:       fw,
		name:     cfg.CardName,
		resolver: cfg.Resolver,
		metrics:  cfg.Metrics,
		log:      cfg.Log,
	}
	if c.name == "" {
		c.name = DefaultCardName
	}
	if cfg.Topology != nil {
		c.topo = *cfg.Topology
	} else {
		c.topo = Zybo()
	}
	if c.resolver == nil {
		c.resolver = hwdesc.Phandles{}
	}
	if c.log == nil {
		c.log = logx.Discard()
	}
	return c
}

// State returns the current lifecycle stage.
func (c *Controller) State() State { return c.state }

// Err is the fault that moved the controller to Failed.
func (c *Controller) Err() error { return c.err }

// Card is the descriptor built by Bind; nil before that or after a failed
// resolve.
func (c *Controller) Card() *soc.Card { return c.card }

// Probe is Bind followed by Register.
func (c *Controller) Probe(node *hwdesc.Node) error {
	if err := c.Bind(node); err != nil {
		return err
	}
	return c.Register()
}

// Bind resolves the codec and transport references of node and builds a
// fresh card descriptor. Either reference missing ends in Failed with
// missing_hardware_reference and no descriptor.
func (c *Controller) Bind(node *hwdesc.Node) error {
	if c.state != Unbound {
		return c.rejected("bind")
	}
	c.transition(Resolving)

	if node == nil {
		return c.fail(&errcode.E{C: errcode.MissingHardwareReference, Op: "bind", Msg: "no hardware description node"})
	}
	codec, okCodec := c.resolver.ResolveReference(node, PropCodec)
	cpu, okCPU := c.resolver.ResolveReference(node, PropCPU)
	switch {
	case !okCodec || codec == nil:
		return c.fail(&errcode.E{C: errcode.MissingHardwareReference, Op: "bind", Msg: PropCodec})
	case !okCPU || cpu == nil:
		return c.fail(&errcode.E{C: errcode.MissingHardwareReference, Op: "bind", Msg: PropCPU})
	}

	c.codec, c.cpu = codec, cpu
	c.card = c.buildCard()
	c.transition(Bound)
	return nil
}

// buildCard assembles a new descriptor per bind; nothing is shared between
// instances.
func (c *Controller) buildCard() *soc.Card {
	return &soc.Card{
		Name: c.name,
		Links: []soc.DAILink{{
			Name:         LinkName,
			StreamName:   LinkName,
			CodecDAIName: CodecDAIName,
			Format:       LinkFormat,
			Ops:          linkOps{metrics: c.metrics},
			Codec:        c.codec,
			CPU:          c.cpu,
			Platform:     c.cpu, // I2S controller doubles as the DMA platform
		}},
		Widgets:     c.topo.Widgets(),
		Routes:      c.topo.Routes(),
		FullyRouted: true,
	}
}

// Register hands the bound card to the framework. A rejection ends in Failed
// with registration_failed wrapping the framework error; nothing stays
// registered.
func (c *Controller) Register() error {
	if c.state != Bound {
		return c.rejected("register")
	}
	if err := c.fw.Register(c.card); err != nil {
		return c.fail(errcode.Wrap(errcode.RegistrationFailed, "register", err))
	}
	c.transition(Registered)
	return nil
}

// Teardown unregisters the card exactly once. Any further call, or a call
// in any state but Registered, is rejected with invalid_state and does not
// reach the framework.
func (c *Controller) Teardown() error {
	if c.state != Registered {
		return c.rejected("teardown")
	}
	c.fw.Unregister(c.card)
	c.transition(Unregistered)
	return nil
}

func (c *Controller) rejected(op string) error {
	return &errcode.E{C: errcode.InvalidState, Op: op, Msg: c.state.String()}
}

func (c *Controller) fail(err error) error {
	c.err = err
	c.transition(Failed)
	return err
}

func (c *Controller) transition(s State) {
	c.log.Debug("card state", "card", c.name, "from", c.state.String(), "to", s.String())
	c.state = s
	c.metrics.Transition(s.String())
}
