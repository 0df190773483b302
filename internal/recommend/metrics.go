package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recommendationsServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "matchmaker",
			Subsystem: "recommend",
			Name:      "served_total",
			Help:      "Total recommendation rankings computed",
		},
	)

	recommendationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "matchmaker",
			Subsystem: "recommend",
			Name:      "failures_total",
			Help:      "Total recommendation requests degraded by store or provider failures",
		},
	)
)
