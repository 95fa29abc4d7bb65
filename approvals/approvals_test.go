package approvals_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lammesen/netrust/approvals"
	"github.com/lammesen/netrust/model"
)

func TestRequestThenApproveGatesIsApproved(t *testing.T) {
	dir := t.TempDir()
	s := approvals.NewStore(filepath.Join(dir, "ledger.json"))

	rec, err := s.Request("/jobs/j1.yaml", "alice", "")
	require.NoError(t, err)
	require.Equal(t, model.ApprovalPending, rec.Status)

	approved, err := s.IsApproved(rec.ID)
	require.NoError(t, err)
	require.False(t, approved)

	_, err = s.Approve(rec.ID, "bob")
	require.NoError(t, err)

	approved, err = s.IsApproved(rec.ID)
	require.NoError(t, err)
	require.True(t, approved)
}

func TestApproveUnknownIDErrors(t *testing.T) {
	dir := t.TempDir()
	s := approvals.NewStore(filepath.Join(dir, "ledger.json"))
	_, err := s.Approve(uuid.Nil, "bob")
	require.ErrorIs(t, err, approvals.ErrNotFound)
}

func TestListReturnsAllRecords(t *testing.T) {
	dir := t.TempDir()
	s := approvals.NewStore(filepath.Join(dir, "ledger.json"))
	_, err := s.Request("/jobs/a.yaml", "alice", "")
	require.NoError(t, err)
	_, err = s.Request("/jobs/b.yaml", "alice", "")
	require.NoError(t, err)

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestIsApprovedUnknownIDIsFalseNotError(t *testing.T) {
	dir := t.TempDir()
	s := approvals.NewStore(filepath.Join(dir, "ledger.json"))
	approved, err := s.IsApproved(uuid.Nil)
	require.NoError(t, err)
	require.False(t, approved)
}
