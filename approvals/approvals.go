// Package approvals implements the Approval Ledger (SPEC_FULL.md §4.H),
// grounded on original_source/apps/nauto_cli/src/approvals.rs.
package approvals

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/lammesen/netrust/model"
)

// ErrNotFound is returned when no approval record matches the requested id.
var ErrNotFound = errors.New("approvals: record not found")

// Store persists a JSON array of ApprovalRecords, rewriting the whole
// file on each mutation. Concurrent writers across processes are out of
// scope per spec §4.H; this package only serializes concurrent callers
// within one process.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore opens (without yet reading) the ledger file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() ([]model.ApprovalRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("approvals: reading ledger: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []model.ApprovalRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("approvals: parsing ledger: %w", err)
	}
	return records, nil
}

func (s *Store) save(records []model.ApprovalRecord) error {
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("approvals: marshaling ledger: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("approvals: writing ledger: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Request appends a new pending ApprovalRecord and returns it.
func (s *Store) Request(jobPath, requester, note string) (model.ApprovalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return model.ApprovalRecord{}, err
	}

	rec := model.ApprovalRecord{
		ID:        uuid.New(),
		JobPath:   jobPath,
		Requester: requester,
		Note:      note,
		Status:    model.ApprovalPending,
	}
	records = append(records, rec)

	if err := s.save(records); err != nil {
		return model.ApprovalRecord{}, err
	}
	return rec, nil
}

// Approve sets the record's status to approved. If note is currently
// empty, approver is recorded into it.
func (s *Store) Approve(id uuid.UUID, approver string) (model.ApprovalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return model.ApprovalRecord{}, err
	}

	for i := range records {
		if records[i].ID == id {
			records[i].Status = model.ApprovalApproved
			if records[i].Note == "" {
				records[i].Note = "approved by " + approver
			}
			if err := s.save(records); err != nil {
				return model.ApprovalRecord{}, err
			}
			return records[i], nil
		}
	}
	return model.ApprovalRecord{}, ErrNotFound
}

// List returns every record in the ledger, in file order.
func (s *Store) List() ([]model.ApprovalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// IsApproved reports whether id exists and is approved. An unknown id
// reports not-approved (the worker loop's approval gate keeps the entry
// pending rather than treating a lookup miss as an error).
func (s *Store) IsApproved(id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if r.ID == id {
			return r.Status == model.ApprovalApproved, nil
		}
	}
	return false, nil
}
