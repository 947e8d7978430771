package incidents

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	modeSingle  = "single"
	modeBatch   = "batch"
	modeIndexed = "indexed"
	modeCached  = "cached"
)

var (
	riskScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scamwatch",
			Name:      "risk_scores_computed_total",
			Help:      "Risk scores computed, by computation mode",
		},
		[]string{"mode"},
	)

	riskBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scamwatch",
			Name:      "risk_batch_duration_seconds",
			Help:      "Time spent computing a batch of risk scores",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	riskCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scamwatch",
			Name:      "risk_cache_lookups_total",
			Help:      "Batch score cache lookups, by result",
		},
		[]string{"result"},
	)
)
