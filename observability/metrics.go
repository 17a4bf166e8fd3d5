package observability

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics

	launchpadOnce sync.Once
	launchpadReg  *LaunchpadMetrics
)

// ModuleMetrics returns the lazily-initialised registry used to record API
// activity per module and route.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total API requests segmented by module and route.",
			}, []string{"module", "method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "api",
				Name:      "errors_total",
				Help:      "Total API errors segmented by module, route, and status code.",
			}, []string{"module", "method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "launchpad",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for API handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"module", "method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "api",
				Name:      "throttles_total",
				Help:      "Count of API requests rejected due to throttling policies.",
			}, []string{"module", "reason"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.errors,
			moduleRegistry.latency,
			moduleRegistry.throttles,
		)
	})
	return moduleRegistry
}

// Observe records the outcome of a request. The status code should be the
// HTTP status that was ultimately written to the response writer.
func (m *moduleMetrics) Observe(module, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	outcome := "success"
	if status >= 400 {
		outcome = "error"
	}
	m.requests.WithLabelValues(module, method, outcome).Inc()
	if status >= 400 {
		m.errors.WithLabelValues(module, method, fmt.Sprintf("%d", status)).Inc()
	}
	m.latency.WithLabelValues(module, method).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter for the supplied module and
// reason. Reasons should be stable strings such as "rate_limit".
func (m *moduleMetrics) RecordThrottle(module, reason string) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(module, reason).Inc()
}

// LaunchpadMetrics tracks offering lifecycle activity.
type LaunchpadMetrics struct {
	created   prometheus.Counter
	funds     *prometheus.CounterVec
	fundSize  *prometheus.HistogramVec
	claims    prometheus.Counter
	refunds   prometheus.Counter
	finalized *prometheus.CounterVec
	reclaims  prometheus.Counter
}

// Launchpad returns the singleton offering metrics registry.
func Launchpad() *LaunchpadMetrics {
	launchpadOnce.Do(func() {
		launchpadReg = &LaunchpadMetrics{
			created: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "ido",
				Name:      "offerings_created_total",
				Help:      "Count of offerings created through the registry.",
			}),
			funds: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "ido",
				Name:      "fund_operations_total",
				Help:      "Count of accepted contributions segmented by sale phase.",
			}, []string{"phase"}),
			fundSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "launchpad",
				Subsystem: "ido",
				Name:      "fund_amount",
				Help:      "Distribution of contribution sizes in payment token base units.",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 12),
			}, []string{"phase"}),
			claims: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "ido",
				Name:      "claims_total",
				Help:      "Count of vesting claims.",
			}),
			refunds: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "ido",
				Name:      "refunds_total",
				Help:      "Count of refunds paid out of failed offerings.",
			}),
			finalized: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "ido",
				Name:      "finalized_total",
				Help:      "Count of terminal offering outcomes.",
			}, []string{"outcome"}),
			reclaims: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "ido",
				Name:      "sale_reclaims_total",
				Help:      "Count of sale deposits returned after a failed offering.",
			}),
		}
		prometheus.MustRegister(
			launchpadReg.created,
			launchpadReg.funds,
			launchpadReg.fundSize,
			launchpadReg.claims,
			launchpadReg.refunds,
			launchpadReg.finalized,
			launchpadReg.reclaims,
		)
	})
	return launchpadReg
}

// RecordCreated increments the offering counter.
func (m *LaunchpadMetrics) RecordCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

// RecordFund records an accepted contribution.
func (m *LaunchpadMetrics) RecordFund(phase string, amount *big.Int) {
	if m == nil {
		return
	}
	phase = labelValue(phase)
	m.funds.WithLabelValues(phase).Inc()
	m.fundSize.WithLabelValues(phase).Observe(bigToFloat(amount))
}

// RecordClaim increments the claim counter.
func (m *LaunchpadMetrics) RecordClaim() {
	if m == nil {
		return
	}
	m.claims.Inc()
}

// RecordRefund increments the refund counter.
func (m *LaunchpadMetrics) RecordRefund() {
	if m == nil {
		return
	}
	m.refunds.Inc()
}

// RecordFinalized records the outcome of a finalized or force-failed offering.
func (m *LaunchpadMetrics) RecordFinalized(outcome string) {
	if m == nil {
		return
	}
	m.finalized.WithLabelValues(labelValue(outcome)).Inc()
}

// RecordReclaim increments the sale reclaim counter.
func (m *LaunchpadMetrics) RecordReclaim() {
	if m == nil {
		return
	}
	m.reclaims.Inc()
}

func labelValue(v string) string {
	trimmed := strings.TrimSpace(strings.ToLower(v))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}

func bigToFloat(value *big.Int) float64 {
	if value == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(value).Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}
