// Package drivers defines the Driver Contract (SPEC_FULL.md §4.A) and the
// flat Driver Registry, grounded on original_source/crates/nauto_drivers.
package drivers

import (
	"context"

	"github.com/lammesen/netrust/model"
)

// JobAction wraps the JobKind a driver is asked to carry out, narrowed to
// exactly what a driver needs: it never sees the full Job value, so it
// cannot observe fields outside its concern (targets, approval id, etc).
type JobAction struct {
	Kind       model.JobKind
	Parameters map[string]interface{}
	DryRun     bool
}

// ExecutionResult is what a driver's Execute call reports back to the
// engine on success. Logs are appended to the TaskSummary verbatim.
type ExecutionResult struct {
	Logs     []string
	PreSnap  *string
	PostSnap *string
	Diff     *string
}

// Driver is the contract every device-type adapter implements: the four
// operations DeviceType, Capabilities, Execute and Rollback, plus Name as a
// display label. Implementations must be safe for concurrent invocation from
// different goroutines; any mutable per-device state is driver-private.
type Driver interface {
	DeviceType() model.DeviceType
	Name() string
	Capabilities() model.CapabilitySet
	Execute(ctx context.Context, device model.Device, action JobAction) (ExecutionResult, error)
	Rollback(ctx context.Context, device model.Device, snapshot string) error
}
