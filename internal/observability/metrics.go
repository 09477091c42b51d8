package observability

import "github.com/prometheus/client_golang/prometheus"

// Handoff flows.
const (
	FlowQR       = "qr"
	FlowTransfer = "transfer"
)

var handoffEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pawbook_handoff_events_total",
		Help: "Vaccine QR and pet transfer handoff events by flow and outcome.",
	},
	[]string{"flow", "outcome"},
)

func init() {
	prometheus.MustRegister(handoffEvents)
}

// RecordHandoff counts one handoff event. Outcomes are short snake_case
// words such as "issued", "consumed", "expired" or "claimed".
func RecordHandoff(flow, outcome string) {
	handoffEvents.WithLabelValues(flow, outcome).Inc()
}
