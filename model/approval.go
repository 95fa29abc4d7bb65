package model

import "github.com/google/uuid"

// ApprovalStatus is the two-value status of an ApprovalRecord.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
)

// ApprovalRecord is an append-only change-request acknowledgment, queried
// by the worker loop before it will dispatch a gated job.
type ApprovalRecord struct {
	ID        uuid.UUID      `json:"id"`
	JobPath   string         `json:"job_path"`
	Requester string         `json:"requester"`
	Note      string         `json:"note,omitempty"`
	Status    ApprovalStatus `json:"status"`
}
