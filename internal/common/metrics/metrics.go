// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExamplesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_examples_generated_total",
			Help: "Total number of training examples generated",
		},
		[]string{"start_category"},
	)

	ExamplesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_examples_failed_total",
			Help: "Total number of examples skipped, by error code",
		},
		[]string{"start_category", "error_code"},
	)

	ExampleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "generator_example_duration_seconds",
			Help: "Duration of one generate+compose+serialize unit in seconds",
		},
		[]string{"start_category"},
	)

	WorkersActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "generator_workers_active",
			Help: "Number of active batch workers",
		},
		[]string{"start_category"},
	)
)
