package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutQuoteTotal counts checkout quotes by destination zone and outcome.
	CheckoutQuoteTotal *prometheus.CounterVec
	// CheckoutQuoteLatency records quote computation latency in milliseconds.
	CheckoutQuoteLatency *prometheus.HistogramVec
	// ShippingOptionsCacheTotal counts shipping option cache lookups by result.
	ShippingOptionsCacheTotal *prometheus.CounterVec
	// PaymentMethodsOffered records how many payment methods a quote offered.
	PaymentMethodsOffered prometheus.Histogram
	// AuditRecordsTotal counts audit log writes by action and result.
	AuditRecordsTotal *prometheus.CounterVec
	// RateLimitedTotal counts requests rejected by the rate limiter per route.
	RateLimitedTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics creates the domain collectors and registers them
// with reg. Only the first call has an effect.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutQuoteTotal = MustRegisterOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_quote_total",
			Help:      "Count of checkout quotes by zone and outcome.",
		}, []string{"zone", "outcome"}))
		CheckoutQuoteLatency = MustRegisterOrReuse(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_quote_duration_ms",
			Help:      "Latency for checkout quote computation in milliseconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		}, []string{"outcome"}))
		ShippingOptionsCacheTotal = MustRegisterOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipping_options_cache_total",
			Help:      "Count of shipping option cache lookups by result.",
		}, []string{"result"}))
		PaymentMethodsOffered = MustRegisterOrReuse(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_methods_offered",
			Help:      "Number of payment methods offered per checkout quote.",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8},
		}))
		AuditRecordsTotal = MustRegisterOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_records_total",
			Help:      "Count of audit log writes by action and result.",
		}, []string{"action", "result"}))
		RateLimitedTotal = MustRegisterOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"route"}))
	})
}
