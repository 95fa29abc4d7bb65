package queue

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/copystructure"

	"github.com/lammesen/netrust/approvals"
	"github.com/lammesen/netrust/audit"
	"github.com/lammesen/netrust/docs"
	"github.com/lammesen/netrust/engine"
	"github.com/lammesen/netrust/model"
)

// Stats reports one worker iteration's outcome, matching spec §8 seed
// scenario 6's literal shape: {processed, remaining, pending_approvals}.
type Stats struct {
	Processed        int `json:"processed"`
	Remaining        int `json:"remaining"`
	PendingApprovals int `json:"pending_approvals"`
}

// Worker drives one queue file against the Job Engine, gating on the
// Approval Ledger, grounded on
// original_source/apps/nauto_cli/src/worker.rs.
type Worker struct {
	Engine          *engine.Engine
	Approvals       *approvals.Store
	ResultsDir      string
	DefaultAuditLog string
	Log             hclog.Logger
}

const logMalformedEntry = "Skipping malformed queue entry"

// RunIteration processes up to limit non-blank queue entries from
// queuePath, in file order, and rewrites the queue file with whatever
// remains (spec §4.G).
func (w *Worker) RunIteration(ctx context.Context, queuePath string, limit int) (Stats, error) {
	log := w.Log
	if log == nil {
		log = hclog.NewNullLogger()
	}

	lines, err := readLines(queuePath)
	if err != nil {
		return Stats{}, err
	}

	var remaining []string
	var stats Stats
	processedThisIteration := 0

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if processedThisIteration >= limit {
			remaining = append(remaining, raw)
			continue
		}

		entry, err := parseEntry(line)
		if err != nil {
			log.Warn(logMalformedEntry, "line", line, "error", err)
			processedThisIteration++
			continue
		}

		kept, gated, err := w.processEntry(ctx, entry, raw)
		processedThisIteration++
		switch {
		case err != nil:
			log.Warn("engine error processing queue entry, retaining for retry", "job", entry.Job, "error", err)
			remaining = append(remaining, raw)
		case gated:
			stats.PendingApprovals++
			remaining = append(remaining, raw)
		case kept:
			remaining = append(remaining, raw)
		default:
			stats.Processed++
			if err := appendLine(processedLogPath(queuePath), raw); err != nil {
				return stats, fmt.Errorf("queue: appending to processed log: %w", err)
			}
		}
	}

	if err := writeLines(queuePath, remaining); err != nil {
		return stats, err
	}
	stats.Remaining = len(remaining)
	return stats, nil
}

func processedLogPath(queuePath string) string {
	return queuePath + ".processed"
}

func writeJobResult(path string, result model.JobResult) error {
	b, err := jsonMarshalIndent(result)
	if err != nil {
		return fmt.Errorf("queue: marshaling job result: %w", err)
	}
	if err := writeFileCreatingDirs(path, b); err != nil {
		return fmt.Errorf("queue: writing job result %s: %w", path, err)
	}
	return nil
}

// processEntry executes one queue entry. Return values: kept (retained
// due to a non-approval reason — currently unused but reserved for future
// retry policies), gated (approval pending), err (load/engine failure;
// entry is retained for retry).
func (w *Worker) processEntry(ctx context.Context, entry model.QueueEntry, raw string) (kept bool, gated bool, err error) {
	job, err := docs.LoadJob(entry.Job)
	if err != nil {
		return false, false, fmt.Errorf("loading job %s: %w", entry.Job, err)
	}

	if job.ApprovalID != nil {
		approved, err := w.Approvals.IsApproved(*job.ApprovalID)
		if err != nil {
			return false, false, fmt.Errorf("checking approval %s: %w", job.ApprovalID, err)
		}
		if !approved {
			return false, true, nil
		}
	}

	devices, err := docs.LoadInventory(entry.Inventory)
	if err != nil {
		return false, false, fmt.Errorf("loading inventory %s: %w", entry.Inventory, err)
	}

	execJob, err := cloneWithOverrides(job, entry)
	if err != nil {
		return false, false, err
	}

	inv := engine.NewInventory(devices)
	result := w.Engine.Execute(ctx, execJob, inv)

	if err := w.persistResult(execJob, result, entry); err != nil {
		return false, false, fmt.Errorf("persisting result: %w", err)
	}
	return false, false, nil
}

// cloneWithOverrides clones job (via copystructure, mirroring the
// source's job.clone() before mutating a queue-entry override) and
// forces dry_run when the queue entry asks for it.
func cloneWithOverrides(job model.Job, entry model.QueueEntry) (model.Job, error) {
	copied, err := copystructure.Copy(job)
	if err != nil {
		return model.Job{}, fmt.Errorf("cloning job: %w", err)
	}
	cloned := copied.(model.Job)
	if entry.DryRun {
		cloned.DryRun = true
	}
	return cloned, nil
}

func (w *Worker) persistResult(job model.Job, result model.JobResult, entry model.QueueEntry) error {
	auditPath := w.DefaultAuditLog
	if entry.AuditLog != nil && *entry.AuditLog != "" {
		auditPath = *entry.AuditLog
	}
	if auditPath != "" {
		if err := audit.Record(auditPath, job, result); err != nil {
			return err
		}
	}

	if w.ResultsDir != "" {
		resultPath := filepath.Join(w.ResultsDir, resultFileName(job.ID))
		if err := writeJobResult(resultPath, result); err != nil {
			return err
		}
	}
	return nil
}

func resultFileName(id uuid.UUID) string {
	return fmt.Sprintf("job-%s.json", id.String())
}
