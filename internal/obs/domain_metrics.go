package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartMutationTotal counts cart mutation outcomes by operation.
	CartMutationTotal *prometheus.CounterVec
	// RewardAppliedTotal counts reward redemption attempts by outcome.
	RewardAppliedTotal *prometheus.CounterVec
	// RewardDroppedTotal counts rewards dropped by revalidation cascades.
	RewardDroppedTotal prometheus.Counter
	// QuickAddTotal counts quick-add attempts by outcome.
	QuickAddTotal *prometheus.CounterVec
	// ReviewSubmittedTotal counts submitted trip reviews.
	ReviewSubmittedTotal prometheus.Counter
	// CartSummaryLatency records cart summarize latency in milliseconds.
	CartSummaryLatency prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartMutationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutation_total",
			Help:      "Count of cart mutation outcomes by operation.",
		}, []string{"operation", "result"})
		RewardAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reward_applied_total",
			Help:      "Count of reward redemption attempts by outcome.",
		}, []string{"result"})
		RewardDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reward_dropped_total",
			Help:      "Number of applied rewards dropped when their phase re-locked.",
		})
		QuickAddTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quick_add_total",
			Help:      "Count of quick-add attempts by outcome.",
		}, []string{"result"})
		ReviewSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_submitted_total",
			Help:      "Number of trip reviews accepted.",
		})
		CartSummaryLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cart_summary_duration_ms",
			Help:      "Latency of cart summary recomputation in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		})

		mustRegisterCollector(reg, CartMutationTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartMutationTotal = v
			}
		})
		mustRegisterCollector(reg, RewardAppliedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RewardAppliedTotal = v
			}
		})
		mustRegisterCollector(reg, RewardDroppedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				RewardDroppedTotal = v
			}
		})
		mustRegisterCollector(reg, QuickAddTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuickAddTotal = v
			}
		})
		mustRegisterCollector(reg, ReviewSubmittedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				ReviewSubmittedTotal = v
			}
		})
		mustRegisterCollector(reg, CartSummaryLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				CartSummaryLatency = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
