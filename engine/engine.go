package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/semaphore"

	"github.com/lammesen/netrust/compliance"
	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/model"
	"github.com/lammesen/netrust/store"
)

// DefaultParallel is the parallelism cap used when a job does not specify
// max_parallel.
const DefaultParallel = 32

// DefaultTaskTimeout is the hard per-device-task timeout (spec §4.E item 4.d).
const DefaultTaskTimeout = 300 * time.Second

const (
	logNoDriver            = "No driver available"
	logDryRunSkipped       = "Dry run skipped (not supported)"
	logTimedOut            = "Job execution timed out"
	logDryRunNotSupported  = "dry run not supported"
	logNoComplianceInputs  = "no config provided for compliance evaluation"
)

// Engine is the Job Execution Core (SPEC_FULL.md §4.E), grounded on
// original_source/crates/nauto_engine/src/lib.rs.
type Engine struct {
	registry    *drivers.Registry
	store       store.JobStore
	log         hclog.Logger
	taskTimeout time.Duration
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithTaskTimeout overrides DefaultTaskTimeout — the test hook spec §8
// calls for so the 300s-timeout seed scenario can run in milliseconds.
func WithTaskTimeout(d time.Duration) Option {
	return func(e *Engine) { e.taskTimeout = d }
}

// New builds a Job Engine.
func New(registry *drivers.Registry, st store.JobStore, log hclog.Logger, opts ...Option) *Engine {
	if st == nil {
		st = store.NoOp{}
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	e := &Engine{registry: registry, store: st, log: log.Named("engine"), taskTimeout: DefaultTaskTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// taskTimeoutFor returns the per-job override from parameters.task_timeout_secs
// when present (a REDESIGN promoted from the source's own forward-looking
// comment, see DESIGN.md), else the engine's configured default.
func (e *Engine) taskTimeoutFor(job model.Job) time.Duration {
	if raw, ok := job.Param("task_timeout_secs"); ok {
		switch v := raw.(type) {
		case int:
			return time.Duration(v) * time.Second
		case int64:
			return time.Duration(v) * time.Second
		case float64:
			return time.Duration(v) * time.Second
		}
	}
	return e.taskTimeout
}

func maxParallelFor(job model.Job) int {
	if job.MaxParallel != nil && *job.MaxParallel > 0 {
		return *job.MaxParallel
	}
	return DefaultParallel
}

// Execute fans a job out to its resolved targets. It never returns an
// error for transport/driver failures — those are reported per device in
// the returned JobResult's DeviceResults.
func (e *Engine) Execute(ctx context.Context, job model.Job, inv *Inventory) model.JobResult {
	startedAt := time.Now()
	targets := inv.ResolveTargets(job.Targets)

	if err := e.store.CreateJob(ctx, job); err != nil {
		e.log.Warn("job store CreateJob failed", "job_id", job.ID, "error", err)
	}

	var summaries []model.TaskSummary
	if job.Kind.Type == model.JobKindComplianceCheck {
		summaries = e.runComplianceCheck(ctx, job, targets)
	} else {
		summaries = e.runFanOut(ctx, job, targets)
	}

	for _, s := range summaries {
		if err := e.store.UpdateTaskSummary(ctx, job.ID.String(), s); err != nil {
			e.log.Warn("job store UpdateTaskSummary failed", "job_id", job.ID, "device_id", s.DeviceID, "error", err)
		}
	}

	result := model.JobResult{
		JobID:         job.ID,
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
		DeviceResults: summaries,
	}

	if err := e.store.CompleteJob(ctx, result); err != nil {
		e.log.Warn("job store CompleteJob failed", "job_id", job.ID, "error", err)
	}

	return result
}

// runComplianceCheck implements the compliance short-circuit: no driver
// is ever invoked for a compliance-check job.
func (e *Engine) runComplianceCheck(ctx context.Context, job model.Job, targets []model.Device) []model.TaskSummary {
	corpus, err := loadComplianceCorpus(job.Parameters)
	if err != nil {
		e.log.Warn("loading compliance corpus failed", "job_id", job.ID, "error", err)
		corpus = map[string]string{}
	}

	ids := make([]string, len(targets))
	for i, d := range targets {
		ids[i] = d.ID
	}

	evals := compliance.EvaluateFleet(ctx, job.Kind.Rules, corpus, ids, runtime.GOMAXPROCS(0))

	summaries := make([]model.TaskSummary, len(evals))
	for i, ev := range evals {
		start := time.Now()
		var logs []string
		status := model.TaskSuccess
		for _, r := range ev.Results {
			if r.Passed {
				logs = append(logs, fmt.Sprintf("%s: pass", r.RuleName))
			} else {
				status = model.TaskFailed
				logs = append(logs, fmt.Sprintf("%s: fail (%s)", r.RuleName, r.Reason))
			}
		}
		if _, ok := corpus[ev.DeviceID]; !ok || len(ev.Results) == 0 {
			// device absent from the corpus, or no rule result for it
			status = model.TaskFailed
			logs = []string{logNoComplianceInputs}
		}
		summaries[i] = model.TaskSummary{
			DeviceID:   ev.DeviceID,
			Status:     status,
			StartedAt:  start,
			FinishedAt: time.Now(),
			Logs:       logs,
		}
	}
	return summaries
}

// runFanOut implements §4.E steps 4-5: concurrent per-device dispatch
// under a parallelism-capped semaphore, each task bounded by a hard
// per-task timeout, collected in completion order.
func (e *Engine) runFanOut(ctx context.Context, job model.Job, targets []model.Device) []model.TaskSummary {
	if len(targets) == 0 {
		return nil
	}

	sem := semaphore.NewWeighted(int64(maxParallelFor(job)))
	results := make(chan model.TaskSummary, len(targets))
	timeout := e.taskTimeoutFor(job)

	for _, device := range targets {
		device := device
		go e.runDeviceTask(ctx, job, device, sem, timeout, results)
	}

	summaries := make([]model.TaskSummary, 0, len(targets))
	for range targets {
		summaries = append(summaries, <-results)
	}
	return summaries
}

func (e *Engine) runDeviceTask(ctx context.Context, job model.Job, device model.Device, sem *semaphore.Weighted, timeout time.Duration, results chan<- model.TaskSummary) {
	startedAt := time.Now()

	summary := model.TaskSummary{DeviceID: device.ID, Status: model.TaskPending, StartedAt: startedAt}

	defer func() {
		if r := recover(); r != nil {
			summary.Status = model.TaskFailed
			summary.Logs = append(summary.Logs, fmt.Sprintf("panic: %v", r))
			summary.FinishedAt = time.Now()
			results <- summary
		}
	}()

	if err := sem.Acquire(ctx, 1); err != nil {
		summary.Status = model.TaskFailed
		summary.Logs = []string{fmt.Sprintf("error: %v", err)}
		summary.FinishedAt = time.Now()
		results <- summary
		return
	}
	defer sem.Release(1)

	summary.Status = model.TaskRunning

	driver, ok := e.registry.Find(device.Type)
	if !ok {
		summary.Status = model.TaskSkipped
		summary.Logs = []string{logNoDriver}
		summary.FinishedAt = time.Now()
		results <- summary
		return
	}

	if job.DryRun && !driver.Capabilities().DryRun {
		summary.Status = model.TaskSuccess
		summary.Logs = []string{logDryRunSkipped}
		summary.FinishedAt = time.Now()
		results <- summary
		return
	}

	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	action := drivers.JobAction{Kind: job.Kind, Parameters: job.Parameters, DryRun: job.DryRun}
	res, err := driver.Execute(taskCtx, device, action)

	if taskCtx.Err() == context.DeadlineExceeded {
		summary.Status = model.TaskFailed
		summary.Logs = []string{logTimedOut}
		summary.FinishedAt = time.Now()
		results <- summary
		return
	}

	if err != nil {
		summary.Status = model.TaskFailed
		summary.Logs = append(summary.Logs, fmt.Sprintf("error: %v", err))
		summary.FinishedAt = time.Now()
		results <- summary
		return
	}

	summary.Status = model.TaskSuccess
	summary.Logs = append(summary.Logs, res.Logs...)
	summary.Diff = res.Diff
	summary.FinishedAt = time.Now()
	results <- summary
}
