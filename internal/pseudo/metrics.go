package pseudo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clustersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchmaker",
			Subsystem: "pseudo",
			Name:      "clusters_processed_total",
			Help:      "Clusters processed by the generation pipeline, by outcome",
		},
		[]string{"status"},
	)

	candidateScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "matchmaker",
			Subsystem: "pseudo",
			Name:      "selected_candidate_score",
			Help:      "Mean-similarity score of the winning candidate per cluster",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)
)
