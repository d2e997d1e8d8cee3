package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "novaforge"
	// Subsystem for engine metrics
	subsystem = "engine"
)

// JobMetricsCollector records scheduling engine metrics into a Prometheus
// registry. It implements scheduler.MetricsRecorder.
type JobMetricsCollector struct {
	jobsStarted   *prometheus.CounterVec
	jobsCompleted *prometheus.CounterVec
	jobsCancelled *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	jobsRecovered prometheus.Counter
	yieldTotal    *prometheus.CounterVec
}

// NewJobMetricsCollector creates a collector and registers its metrics
func NewJobMetricsCollector(registry *prometheus.Registry) *JobMetricsCollector {
	collector := &JobMetricsCollector{
		jobsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_started_total",
				Help:      "Total number of jobs admitted by kind",
			},
			[]string{"kind"},
		),
		jobsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_completed_total",
				Help:      "Total number of jobs completed by kind",
			},
			[]string{"kind"},
		),
		jobsCancelled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_cancelled_total",
				Help:      "Total number of jobs cancelled by kind",
			},
			[]string{"kind"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "job_duration_seconds",
				Help:      "Wall-clock job duration distribution",
				Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
			},
			[]string{"kind"},
		),
		jobsRecovered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_recovered_total",
				Help:      "Total number of active jobs recovered at startup",
			},
		),
		yieldTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "yield_units_total",
				Help:      "Total units produced or extracted by resource kind",
			},
			[]string{"resource_kind"},
		),
	}

	registry.MustRegister(
		collector.jobsStarted,
		collector.jobsCompleted,
		collector.jobsCancelled,
		collector.jobDuration,
		collector.jobsRecovered,
		collector.yieldTotal,
	)
	return collector
}

// RecordJobStarted records a job admission
func (c *JobMetricsCollector) RecordJobStarted(kind string) {
	c.jobsStarted.WithLabelValues(kind).Inc()
}

// RecordJobCompleted records a job completion and its duration
func (c *JobMetricsCollector) RecordJobCompleted(kind string, durationSeconds float64) {
	c.jobsCompleted.WithLabelValues(kind).Inc()
	c.jobDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordJobCancelled records a job cancellation
func (c *JobMetricsCollector) RecordJobCancelled(kind string) {
	c.jobsCancelled.WithLabelValues(kind).Inc()
}

// RecordJobsRecovered records how many jobs the startup sweep recovered
func (c *JobMetricsCollector) RecordJobsRecovered(count int) {
	c.jobsRecovered.Add(float64(count))
}

// RecordYield records extracted or produced units
func (c *JobMetricsCollector) RecordYield(resourceKind string, amount int) {
	c.yieldTotal.WithLabelValues(resourceKind).Add(float64(amount))
}
