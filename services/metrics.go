package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics instruments bill generation. A nil *BillingMetrics is valid
// and records nothing.
type BillingMetrics struct {
	runs            *prometheus.CounterVec
	duration        prometheus.Histogram
	daysSkipped     prometheus.Counter
	overridesMarked prometheus.Counter
	billedAmount    prometheus.Counter
}

func NewBillingMetrics(registerer prometheus.Registerer) *BillingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &BillingMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dairyflow",
			Subsystem: "billing",
			Name:      "runs_total",
			Help:      "Bill generation attempts by outcome.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dairyflow",
			Subsystem: "billing",
			Name:      "generation_duration_seconds",
			Help:      "Time spent generating one bill.",
			Buckets:   prometheus.DefBuckets,
		}),
		daysSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dairyflow",
			Subsystem: "billing",
			Name:      "days_skipped_total",
			Help:      "Days dropped from a bill because they could not be resolved.",
		}),
		overridesMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dairyflow",
			Subsystem: "billing",
			Name:      "overrides_marked_total",
			Help:      "Day overrides consumed by generated bills.",
		}),
		billedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dairyflow",
			Subsystem: "billing",
			Name:      "billed_amount_total",
			Help:      "Sum of generated bill totals.",
		}),
	}

	registerer.MustRegister(m.runs, m.duration, m.daysSkipped, m.overridesMarked, m.billedAmount)
	return m
}

func (m *BillingMetrics) observeRun(result string, started time.Time) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
	m.duration.Observe(time.Since(started).Seconds())
}

func (m *BillingMetrics) daySkipped() {
	if m == nil {
		return
	}
	m.daysSkipped.Inc()
}

func (m *BillingMetrics) billCommitted(marked int64, amount float64) {
	if m == nil {
		return
	}
	m.overridesMarked.Add(float64(marked))
	m.billedAmount.Add(amount)
}
