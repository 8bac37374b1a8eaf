package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics records runs of the maintenance worker's scheduled jobs.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	rows     *prometheus.CounterVec
}

// NewCronJobMetrics registers the maintenance job metrics on the provided registerer.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "maintenance_job_duration_seconds",
		Help:    "Duration of maintenance jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maintenance_job_runs_total",
		Help: "Maintenance job executions by result.",
	}, []string{"job", "result"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maintenance_job_rows_total",
		Help: "Rows changed by maintenance jobs.",
	}, []string{"job"})
	reg.MustRegister(duration, runs, rows)
	return &CronJobMetrics{
		duration: duration,
		runs:     runs,
		rows:     rows,
	}
}

func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

func (c *CronJobMetrics) IncSuccess(job string) {
	c.incRun(job, "success")
}

func (c *CronJobMetrics) IncFailure(job string) {
	c.incRun(job, "failure")
}

// AddRows counts rows a job expired or purged.
func (c *CronJobMetrics) AddRows(job string, n int64) {
	if c == nil || c.rows == nil || n <= 0 {
		return
	}
	c.rows.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}

func (c *CronJobMetrics) incRun(job, result string) {
	if c == nil || c.runs == nil {
		return
	}
	c.runs.WithLabelValues(normalizeLabel(job), result).Inc()
}
