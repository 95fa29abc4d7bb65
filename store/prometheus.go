package store

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lammesen/netrust/model"
)

// PrometheusStore is a concrete JobStore sink recording job counts,
// per-status task counters, and a task-duration histogram — a testable
// instance of the "metrics consumer" SPEC_FULL.md §4.I names, grounded on
// the teacher pack's prometheus/client_golang dependency.
type PrometheusStore struct {
	jobsCreated   prometheus.Counter
	jobsCompleted prometheus.Counter
	tasksByStatus *prometheus.CounterVec
	taskDuration  prometheus.Histogram
}

// NewPrometheusStore registers its collectors with reg and returns a
// ready-to-use JobStore.
func NewPrometheusStore(reg prometheus.Registerer) *PrometheusStore {
	p := &PrometheusStore{
		jobsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netrust_jobs_created_total",
			Help: "Number of jobs handed to the Job Engine.",
		}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netrust_jobs_completed_total",
			Help: "Number of jobs the Job Engine finished executing.",
		}),
		tasksByStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netrust_tasks_total",
			Help: "Per-device task outcomes, labeled by status.",
		}, []string{"status"}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "netrust_task_duration_seconds",
			Help:    "Per-device task duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(p.jobsCreated, p.jobsCompleted, p.tasksByStatus, p.taskDuration)
	return p
}

func (p *PrometheusStore) CreateJob(ctx context.Context, job model.Job) error {
	p.jobsCreated.Inc()
	return nil
}

func (p *PrometheusStore) UpdateTaskSummary(ctx context.Context, jobID string, summary model.TaskSummary) error {
	p.tasksByStatus.WithLabelValues(string(summary.Status)).Inc()
	p.taskDuration.Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	return nil
}

func (p *PrometheusStore) CompleteJob(ctx context.Context, result model.JobResult) error {
	p.jobsCompleted.Inc()
	return nil
}
