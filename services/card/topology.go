package card

import (
	"errors"
	"fmt"

	"zybo-sound/soc"
)

var (
	ErrDuplicateWidget = errors.New("duplicate_widget")
	ErrOrphanWidget    = errors.New("orphan_widget")
)

// Topology is the closed set of external endpoints and routes for one board
// variant. It is immutable once built; accessors hand out copies.
type Topology struct {
	widgets []soc.Widget
	routes  []soc.Route
}

// NewTopology copies widgets and routes into a new Topology.
func NewTopology(widgets []soc.Widget, routes []soc.Route) Topology {
	return Topology{
		widgets: append([]soc.Widget(nil), widgets...),
		routes:  append([]soc.Route(nil), routes...),
	}
}

// Zybo is the ZYBO board: line out and line in are wired to the codec.
// Headphone and mic jacks are declared but carry no routes on this board,
// so the codec's HP and MIC paths are unreachable.
func Zybo() Topology {
	return NewTopology(
		[]soc.Widget{
			{Name: "Line Out", Kind: soc.Speaker},
			{Name: "Headphone Out", Kind: soc.Headphone},
			{Name: "Mic In", Kind: soc.Microphone},
			{Name: "Line In", Kind: soc.LineInput},
		},
		[]soc.Route{
			{Sink: "Line Out", Source: "LOUT"},
			{Sink: "Line Out", Source: "ROUT"},
			{Sink: "LLINEIN", Source: "Line In"},
			{Sink: "RLINEIN", Source: "Line In"},
		},
	)
}

// Widgets returns a copy of the external endpoints.
func (t Topology) Widgets() []soc.Widget { return append([]soc.Widget(nil), t.widgets...) }

// Routes returns a copy of the route edges.
func (t Topology) Routes() []soc.Route { return append([]soc.Route(nil), t.routes...) }

// Orphans lists widgets that no route touches.
func (t Topology) Orphans() []string {
	used := map[string]bool{}
	for _, r := range t.routes {
		used[r.Sink] = true
		used[r.Source] = true
	}
	var out []string
	for _, w := range t.widgets {
		if !used[w.Name] {
			out = append(out, w.Name)
		}
	}
	return out
}

// Validate checks what can be checked without the codec's pin namespace:
// unique widget names and, when strict, no orphan widgets. Pin names are
// checked by the framework at registration.
func (t Topology) Validate(strict bool) error {
	seen := make(map[string]bool, len(t.widgets))
	for _, w := range t.widgets {
		if seen[w.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateWidget, w.Name)
		}
		seen[w.Name] = true
	}
	if !strict {
		return nil
	}
	if o := t.Orphans(); len(o) > 0 {
		return fmt.Errorf("%w: %q", ErrOrphanWidget, o)
	}
	return nil
}
