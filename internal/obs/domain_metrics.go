package obs

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// DiscountEvaluationsTotal counts discount evaluations by mode, type and outcome.
	DiscountEvaluationsTotal *prometheus.CounterVec
	// DiscountRejectionsTotal counts refused discount codes by reason.
	DiscountRejectionsTotal *prometheus.CounterVec
	// TaxCalculationsTotal counts tax calculations by kind and whether a zone matched.
	TaxCalculationsTotal *prometheus.CounterVec
	// CacheLookupsTotal counts Redis cache lookups by cache name and result.
	CacheLookupsTotal *prometheus.CounterVec
	// JobsTotal counts background task outcomes.
	JobsTotal *prometheus.CounterVec
	// PricingLatency records pricing operation latency in milliseconds.
	PricingLatency *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		DiscountEvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_evaluations_total",
			Help:      "Count of discount evaluations by outcome.",
		}, []string{"mode", "type", "result"})
		DiscountRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_rejections_total",
			Help:      "Count of rejected discount codes by reason.",
		}, []string{"reason"})
		TaxCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_calculations_total",
			Help:      "Count of tax calculations by kind and zone match.",
		}, []string{"kind", "zone"})
		CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Count of cache lookups by cache and result.",
		}, []string{"cache", "result"})
		JobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Count of background task outcomes.",
		}, []string{"task", "result"})
		PricingLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pricing_operation_duration_ms",
			Help:      "Latency of pricing operations in milliseconds.",
			Buckets:   []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"operation"})

		DiscountEvaluationsTotal = registerOrReuse(reg, DiscountEvaluationsTotal)
		DiscountRejectionsTotal = registerOrReuse(reg, DiscountRejectionsTotal)
		TaxCalculationsTotal = registerOrReuse(reg, TaxCalculationsTotal)
		CacheLookupsTotal = registerOrReuse(reg, CacheLookupsTotal)
		JobsTotal = registerOrReuse(reg, JobsTotal)
		PricingLatency = registerOrReuse(reg, PricingLatency)
	})
}

// ObserveDiscountEvaluation records one evaluation. It is a no-op until the
// domain metrics are registered.
func ObserveDiscountEvaluation(mode, discountType, result string) {
	if DiscountEvaluationsTotal == nil {
		return
	}
	DiscountEvaluationsTotal.WithLabelValues(mode, discountType, result).Inc()
}

// ObserveDiscountRejection records a refused code.
func ObserveDiscountRejection(reason string) {
	if DiscountRejectionsTotal == nil {
		return
	}
	DiscountRejectionsTotal.WithLabelValues(reason).Inc()
}

// ObserveTaxCalculation records a tax computation.
func ObserveTaxCalculation(kind string, zoneMatched bool) {
	if TaxCalculationsTotal == nil {
		return
	}
	zone := "none"
	if zoneMatched {
		zone = "matched"
	}
	TaxCalculationsTotal.WithLabelValues(kind, zone).Inc()
}

// ObserveCacheLookup records a cache hit, miss or error.
func ObserveCacheLookup(cache, result string) {
	if CacheLookupsTotal == nil {
		return
	}
	CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// ObserveJob records a background task outcome.
func ObserveJob(task, result string) {
	if JobsTotal == nil {
		return
	}
	JobsTotal.WithLabelValues(task, result).Inc()
}

// ObserveLatency records the time elapsed since start for operation.
func ObserveLatency(operation string, start time.Time) {
	if PricingLatency == nil {
		return
	}
	PricingLatency.WithLabelValues(operation).Observe(DurationMillis(time.Since(start)))
}
