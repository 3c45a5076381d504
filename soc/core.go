package soc

import (
	"errors"
	"fmt"
	"sync"

	"zybo-sound/hwdesc"
)

var (
	ErrInvalidCard   = errors.New("invalid_card")
	ErrDuplicateCard = errors.New("duplicate_card")
	ErrCodecBound    = errors.New("codec_already_bound")
	ErrNoComponent   = errors.New("no_component")
	ErrUnknownPin    = errors.New("unknown_pin")
	ErrUnknownCard   = errors.New("unknown_card")
)

// Core is an in-process Framework. Codec drivers add their components,
// machine drivers register cards against them, and stream setup is driven
// through HWParams.
type Core struct {
	mu     sync.Mutex
	codecs map[*hwdesc.Node]Codec
	cards  map[string]*registered
}

type registered struct {
	card *Card
	// widgets no route touches; only populated for fully routed cards
	disconnected map[string]bool
}

func NewCore() *Core {
	return &Core{
		codecs: map[*hwdesc.Node]Codec{},
		cards:  map[string]*registered{},
	}
}

// AddCodec publishes a codec component bound to its hardware node.
func (c *Core) AddCodec(node *hwdesc.Node, codec Codec) error {
	if node == nil || codec == nil {
		return ErrNoComponent
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.codecs[node]; exists {
		return fmt.Errorf("%w: %s", ErrCodecBound, node)
	}
	c.codecs[node] = codec
	return nil
}

// Register validates the card against the bound components and records it.
// Nothing is recorded when validation fails.
func (c *Core) Register(card *Card) error {
	if card == nil || card.Name == "" || len(card.Links) == 0 {
		return ErrInvalidCard
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cards[card.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCard, card.Name)
	}
	pins := map[string]bool{}
	for i := range card.Links {
		l := &card.Links[i]
		if l.CPU == nil || l.Platform == nil {
			return fmt.Errorf("%w: link %q has no transport", ErrInvalidCard, l.Name)
		}
		codec, ok := c.codecs[l.Codec]
		if !ok || codec.DAIName() != l.CodecDAIName {
			return fmt.Errorf("%w: %q on %s", ErrNoComponent, l.CodecDAIName, l.Codec)
		}
		for _, p := range codec.Pins() {
			pins[p] = true
		}
	}
	disconnected, err := checkRoutes(card, pins)
	if err != nil {
		return err
	}
	c.cards[card.Name] = &registered{card: card, disconnected: disconnected}
	return nil
}

// checkRoutes verifies every route side names a widget or a codec pin. For a
// fully routed card it returns the widgets with no route path to any codec
// pin; those stay unreachable instead of being connected implicitly. Routes
// are walked in both directions: playback runs pin to jack, capture jack to
// pin.
func checkRoutes(card *Card, pins map[string]bool) (map[string]bool, error) {
	widgets := make(map[string]bool, len(card.Widgets))
	for _, w := range card.Widgets {
		widgets[w.Name] = true
	}
	adj := map[string][]string{}
	for _, r := range card.Routes {
		for _, side := range [...]string{r.Sink, r.Source} {
			if !widgets[side] && !pins[side] {
				return nil, fmt.Errorf("%w: %q", ErrUnknownPin, side)
			}
		}
		adj[r.Sink] = append(adj[r.Sink], r.Source)
		adj[r.Source] = append(adj[r.Source], r.Sink)
	}
	if !card.FullyRouted {
		return nil, nil
	}

	seen := map[string]bool{}
	var queue []string
	for p := range pins {
		seen[p] = true
		queue = append(queue, p)
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range adj[n] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	disconnected := map[string]bool{}
	for name := range widgets {
		if !seen[name] {
			disconnected[name] = true
		}
	}
	return disconnected, nil
}

// Unregister drops the card if it is the one registered under its name.
func (c *Core) Unregister(card *Card) {
	if card == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.cards[card.Name]; ok && cur.card == card {
		delete(c.cards, card.Name)
	}
}

// Lookup returns a registered card.
func (c *Core) Lookup(name string) (*Card, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.cards[name]
	if !ok {
		return nil, false
	}
	return r.card, true
}

// Reachable reports whether a widget of a registered card can carry audio.
// On a fully routed card that needs a route path to a codec pin.
func (c *Core) Reachable(cardName, widget string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.cards[cardName]
	if !ok {
		return false
	}
	for _, w := range r.card.Widgets {
		if w.Name == widget {
			return !r.disconnected[widget]
		}
	}
	return false
}

// HWParams runs one stream-parameter negotiation on every link of a card,
// stopping at the first failing link.
func (c *Core) HWParams(name string, p HWParams) error {
	c.mu.Lock()
	r, ok := c.cards[name]
	var card *Card
	var codecs []Codec
	if ok {
		card = r.card
		codecs = make([]Codec, len(card.Links))
		for i := range card.Links {
			codecs[i] = c.codecs[card.Links[i].Codec]
		}
	}
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCard, name)
	}

	for i := range card.Links {
		l := &card.Links[i]
		if l.Ops == nil {
			continue
		}
		if err := l.Ops.HWParams(&Runtime{Card: card, Link: l, Codec: codecs[i]}, p); err != nil {
			return err
		}
	}
	return nil
}
