package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"launchpad/core/events"
)

type eventMetrics struct {
	emitted   *prometheus.CounterVec
	transfers *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking committed module events.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "events",
				Name:      "emitted_total",
				Help:      "Count of committed events segmented by type.",
			}, []string{"type"}),
			transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "events",
				Name:      "transfers_total",
				Help:      "Count of ledger transfers segmented by token symbol.",
			}, []string{"asset"}),
		}
		prometheus.MustRegister(eventRegistry.emitted, eventRegistry.transfers)
	})
	return eventRegistry
}

// RecordTransfer increments the transfer counter for the supplied symbol.
func (m *eventMetrics) RecordTransfer(asset string) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(strings.ToUpper(asset))
	if normalized == "" {
		normalized = "UNKNOWN"
	}
	m.transfers.WithLabelValues(normalized).Inc()
}

// Emit implements events.Emitter, feeding the event and offering counters.
func (m *eventMetrics) Emit(evt events.Event) {
	if m == nil || evt == nil {
		return
	}
	m.emitted.WithLabelValues(evt.EventType()).Inc()
	lp := Launchpad()
	switch e := evt.(type) {
	case events.TokenTransfer:
		m.RecordTransfer(e.Symbol)
	case events.OfferingCreated:
		lp.RecordCreated()
	case events.OfferingFunded:
		lp.RecordFund(e.Phase, e.Amount)
	case events.OfferingClaimed:
		lp.RecordClaim()
	case events.OfferingRefunded:
		lp.RecordRefund()
	case events.OfferingFinalized:
		lp.RecordFinalized(e.State)
	case events.OfferingEmergencyRefund:
		lp.RecordFinalized("emergency")
	case events.OfferingSaleReclaimed:
		lp.RecordReclaim()
	}
}
