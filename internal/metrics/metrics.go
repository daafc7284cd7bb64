package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_engine_operations_total",
			Help: "Total engine operations by name",
		},
		[]string{"operation"},
	)
	FailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_engine_failures_total",
			Help: "Total failed engine operations by name and failure kind",
		},
		[]string{"operation", "kind"},
	)
)

func init() {
	prometheus.MustRegister(OperationsTotal)
	prometheus.MustRegister(FailuresTotal)
}
