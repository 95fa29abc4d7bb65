// Package audit implements the two-file append-only JSONL recorder
// described in SPEC_FULL.md §4.F, grounded on
// original_source/apps/nauto_cli/src/audit.rs (summary log only; the
// per-device log is an addition spec §4.F requires).
package audit

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/hashstructure"

	"github.com/lammesen/netrust/model"
)

// SummaryRecord is one line of the summary log: one per job run.
type SummaryRecord struct {
	JobID         string   `json:"job_id"`
	Name          string   `json:"name"`
	SuccessCount  int      `json:"success_count"`
	FailureCount  int      `json:"failure_count"`
	StartedAt     string   `json:"started_at"`
	FinishedAt    string   `json:"finished_at"`
	FailedDevices []string `json:"failed_devices"`
	Fingerprint   uint64   `json:"fingerprint"`
}

// DeviceRecord is one line of the device log: one per device per job run.
type DeviceRecord struct {
	JobID      string            `json:"job_id"`
	DeviceID   string            `json:"device_id"`
	Status     model.TaskStatus  `json:"status"`
	Logs       []string          `json:"logs,omitempty"`
	HadDiff    bool              `json:"had_diff"`
}

// DevicesLogPath derives the per-device sibling log path from the base
// summary-log path, per spec §4.F: "<base>.devices.jsonl".
func DevicesLogPath(base string) string {
	return base + ".devices.jsonl"
}

// fingerprint hashes a job's kind+targets+params so repeated runs of the
// same job definition can be correlated across queue retries (a
// supplemental field described in SPEC_FULL.md §4.F).
func fingerprint(job model.Job) uint64 {
	h, err := hashstructure.Hash(struct {
		Kind    model.JobKind
		Targets model.TargetSelector
		Params  map[string]interface{}
	}{job.Kind, job.Targets, job.Parameters}, nil)
	if err != nil {
		return 0
	}
	return h
}

// Record appends a SummaryRecord to basePath and one DeviceRecord per
// device to its ".devices.jsonl" sibling. Writes are append-only with a
// fresh file handle per call, so concurrent writers serialize on the OS
// append boundary without producing partial lines.
func Record(basePath string, job model.Job, result model.JobResult) error {
	summary := SummaryRecord{
		JobID:         job.ID.String(),
		Name:          job.Name,
		SuccessCount:  result.SuccessCount(),
		FailureCount:  len(result.DeviceResults) - result.SuccessCount(),
		StartedAt:     result.StartedAt.Format(timeLayout),
		FinishedAt:    result.FinishedAt.Format(timeLayout),
		FailedDevices: result.FailedDeviceIDs(),
		Fingerprint:   fingerprint(job),
	}
	if err := appendLine(basePath, summary); err != nil {
		return fmt.Errorf("audit: writing summary record: %w", err)
	}

	devicePath := DevicesLogPath(basePath)
	for _, task := range result.DeviceResults {
		rec := DeviceRecord{
			JobID:    job.ID.String(),
			DeviceID: task.DeviceID,
			Status:   task.Status,
			Logs:     task.Logs,
			HadDiff:  task.Diff != nil,
		}
		if err := appendLine(devicePath, rec); err != nil {
			return fmt.Errorf("audit: writing device record for %s: %w", task.DeviceID, err)
		}
	}
	return nil
}

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func appendLine(path string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(b)
	return err
}
