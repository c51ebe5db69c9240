package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// JobMetrics tracks the runs of one scheduled job.
//
//   - <name>_job_runs_total{status}: started, success, failure, skipped
//   - <name>_job_duration_seconds
//   - <name>_job_last_success_timestamp
type JobMetrics struct {
	RunsTotal            *prometheus.CounterVec
	DurationSeconds      prometheus.Histogram
	LastSuccessTimestamp prometheus.Gauge
}

// NewJobMetrics registers the metrics of job name with reg. A nil reg uses
// the default registerer.
func NewJobMetrics(reg prometheus.Registerer, name string) *JobMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &JobMetrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: name + "_job_runs_total",
			Help: "Total scheduled job runs by status",
		}, []string{"status"}),
		DurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    name + "_job_duration_seconds",
			Help:    "Duration of scheduled job runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60},
		}),
		LastSuccessTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: name + "_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run",
		}),
	}
}

// RecordRun increments the run counter for status.
func (m *JobMetrics) RecordRun(status string) {
	m.RunsTotal.WithLabelValues(status).Inc()
}

// RecordDuration observes the duration of one run in seconds.
func (m *JobMetrics) RecordDuration(seconds float64) {
	m.DurationSeconds.Observe(seconds)
}

// RecordLastSuccess stamps the current time as the last success.
func (m *JobMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
