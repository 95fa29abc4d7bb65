// Package store defines the Job Store observer interface (SPEC_FULL.md
// §4.I), grounded on original_source/crates/nauto_engine/src/store.rs.
package store

import (
	"context"

	"github.com/lammesen/netrust/model"
)

// JobStore is invoked on job-lifecycle transitions for persistence or
// metrics. The engine must never block its critical path on an observer
// error: implementations should treat their own errors as logged, not
// fatal to the job.
type JobStore interface {
	CreateJob(ctx context.Context, job model.Job) error
	UpdateTaskSummary(ctx context.Context, jobID string, summary model.TaskSummary) error
	CompleteJob(ctx context.Context, result model.JobResult) error
}

// NoOp is the default JobStore: every call succeeds trivially.
type NoOp struct{}

func (NoOp) CreateJob(context.Context, model.Job) error                      { return nil }
func (NoOp) UpdateTaskSummary(context.Context, string, model.TaskSummary) error { return nil }
func (NoOp) CompleteJob(context.Context, model.JobResult) error              { return nil }
