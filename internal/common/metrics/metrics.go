package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	InterpreterCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interpreter_commands_total",
			Help: "Total number of voice commands interpreted, by intent",
		},
		[]string{"intent"},
	)

	InterpreterClarifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interpreter_clarifications_total",
			Help: "Total number of commands that needed clarification, by reason",
		},
		[]string{"reason"},
	)

	InterpreterConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interpreter_confidence",
			Help:    "Confidence score of interpreted commands",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)
)

// ObserveCommand records one interpreted command. reason is empty when no
// clarification was needed.
func ObserveCommand(intent string, confidence float64, reason string) {
	InterpreterCommands.WithLabelValues(intent).Inc()
	InterpreterConfidence.Observe(confidence)
	if reason != "" {
		InterpreterClarifications.WithLabelValues(reason).Inc()
	}
}
