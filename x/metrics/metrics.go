// Package metrics exposes card lifecycle and clock negotiation counters.
// A nil *Card is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"zybo-sound/errcode"
)

const namespace = "zybo_sound"

type Card struct {
	negotiations *prometheus.CounterVec
	transitions  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Card {
	m := &Card{
		negotiations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clock_negotiations_total",
			Help:      "Stream clock negotiations by clock family and result code.",
		}, []string{"family", "result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "card_transitions_total",
			Help:      "Binding lifecycle transitions by destination state.",
		}, []string{"state"}),
	}
	if reg != nil {
		reg.MustRegister(m.negotiations, m.transitions)
	}
	return m
}

// Negotiated records one negotiation outcome. family is empty when the rate
// matched no family.
func (m *Card) Negotiated(family string, err error) {
	if m == nil {
		return
	}
	if family == "" {
		family = "none"
	}
	m.negotiations.WithLabelValues(family, string(errcode.Of(err))).Inc()
}

// Transition records entry into state.
func (m *Card) Transition(state string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(state).Inc()
}
