package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the per-device task state machine:
// pending -> running -> (success | failed | skipped); rolled-back is
// reserved for a follow-up rollback invocation, never produced by Execute.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskRunning    TaskStatus = "running"
	TaskSuccess    TaskStatus = "success"
	TaskFailed     TaskStatus = "failed"
	TaskSkipped    TaskStatus = "skipped"
	TaskRolledBack TaskStatus = "rolled_back"
)

// TaskSummary is the per-device outcome of a job execution.
type TaskSummary struct {
	DeviceID   string     `json:"device_id"`
	Status     TaskStatus `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Logs       []string   `json:"logs,omitempty"`
	Diff       *string    `json:"diff,omitempty"`
}

// JobResult aggregates every TaskSummary produced by one Job Engine
// execution: in completion order for driver-dispatched jobs, in target
// order for compliance-check jobs.
type JobResult struct {
	JobID         uuid.UUID     `json:"job_id"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	DeviceResults []TaskSummary `json:"device_results"`
}

// SuccessCount returns the number of tasks with status=success.
func (r JobResult) SuccessCount() int {
	n := 0
	for _, t := range r.DeviceResults {
		if t.Status == TaskSuccess {
			n++
		}
	}
	return n
}

// FailedDeviceIDs returns the device ids of every failed task, in result order.
func (r JobResult) FailedDeviceIDs() []string {
	var ids []string
	for _, t := range r.DeviceResults {
		if t.Status == TaskFailed {
			ids = append(ids, t.DeviceID)
		}
	}
	return ids
}
