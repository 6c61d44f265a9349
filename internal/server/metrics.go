package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the study service, exposed on /metrics.
var (
	studiesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "diffevo_studies_started_total",
		Help: "Number of study jobs launched.",
	})

	studiesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "diffevo_studies_completed_total",
		Help: "Number of study jobs that finished successfully.",
	})

	studiesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "diffevo_studies_failed_total",
		Help: "Number of study jobs that ended in an error.",
	})

	studiesCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "diffevo_studies_cancelled_total",
		Help: "Number of study jobs cancelled by a client.",
	})

	generationsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "diffevo_generations_total",
		Help: "Total generations evolved across all studies.",
	})
)
