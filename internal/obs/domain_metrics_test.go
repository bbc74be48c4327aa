package obs_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/noah-isme/toko-pricing/internal/obs"
)

func TestDomainMetricsRecordOutcomes(t *testing.T) {
	registry := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics("pricing", registry)

	obs.ObserveDiscountEvaluation("code", "order", "ok")
	obs.ObserveDiscountEvaluation("code", "order", "ok")
	obs.ObserveDiscountRejection("invalid_code")
	obs.ObserveTaxCalculation("forward", false)
	obs.ObserveCacheLookup("discounts", "hit")
	obs.ObserveJob("pricing:cache:warm", "ok")
	obs.ObserveLatency("quote", time.Now())

	if got := testutil.ToFloat64(obs.DiscountEvaluationsTotal.WithLabelValues("code", "order", "ok")); got != 2 {
		t.Fatalf("expected 2 evaluations, got %v", got)
	}
	if got := testutil.ToFloat64(obs.DiscountRejectionsTotal.WithLabelValues("invalid_code")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(obs.TaxCalculationsTotal.WithLabelValues("forward", "none")); got != 1 {
		t.Fatalf("expected 1 tax calculation, got %v", got)
	}
	if got := testutil.ToFloat64(obs.CacheLookupsTotal.WithLabelValues("discounts", "hit")); got != 1 {
		t.Fatalf("expected 1 cache hit, got %v", got)
	}
	if got := testutil.ToFloat64(obs.JobsTotal.WithLabelValues("pricing:cache:warm", "ok")); got != 1 {
		t.Fatalf("expected 1 job, got %v", got)
	}
	if testutil.CollectAndCount(obs.PricingLatency) == 0 {
		t.Fatalf("expected latency sample")
	}

	// A second registration reuses the existing collectors.
	obs.MustRegisterDomainMetrics("pricing", registry)
}
