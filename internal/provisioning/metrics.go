package provisioning

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	provisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mosaic",
			Subsystem: "provisioner",
			Name:      "provisions_total",
			Help:      "Total number of provisioning runs by result",
		},
		[]string{"result"},
	)

	provisionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mosaic",
			Subsystem: "provisioner",
			Name:      "provision_duration_seconds",
			Help:      "Duration of full provisioning runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		},
	)

	compensationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mosaic",
			Subsystem: "provisioner",
			Name:      "compensations_total",
			Help:      "Total number of compensating table deletes by outcome",
		},
		[]string{"outcome"},
	)

	deprovisionDeletesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mosaic",
			Subsystem: "provisioner",
			Name:      "deprovision_deletes_total",
			Help:      "Total number of best-effort deprovision deletes by resource and outcome",
		},
		[]string{"resource", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		provisionsTotal,
		provisionDuration,
		compensationsTotal,
		deprovisionDeletesTotal,
	)
}
