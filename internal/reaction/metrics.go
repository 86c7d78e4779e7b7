package reaction

import "github.com/prometheus/client_golang/prometheus"

// Transition labels.
const (
	transitionSet    = "set"
	transitionClear  = "clear"
	transitionSwitch = "switch"
)

// Outcome labels.
const (
	outcomeOK         = "ok"
	outcomeConflict   = "conflict"
	outcomeFailed     = "failed"
	outcomeIncomplete = "incomplete"
	outcomeInFlight   = "in_flight"
)

var transitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reaction_transitions_total",
		Help: "Reaction toggles by transition kind and outcome.",
	},
	[]string{"transition", "outcome"},
)

func init() {
	prometheus.MustRegister(transitions)
}

func observe(transition, outcome string) {
	transitions.WithLabelValues(transition, outcome).Inc()
}
