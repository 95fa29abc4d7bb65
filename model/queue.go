package model

import "time"

// QueueEntry is one line of the persistent work queue file.
type QueueEntry struct {
	Job          string     `json:"job"`
	Inventory    string     `json:"inventory"`
	AuditLog     *string    `json:"audit_log,omitempty"`
	DryRun       bool       `json:"dry_run"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}
