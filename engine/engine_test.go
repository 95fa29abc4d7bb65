package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/drivers/mockdriver"
	"github.com/lammesen/netrust/engine"
	"github.com/lammesen/netrust/model"
	"github.com/lammesen/netrust/store"
)

func mockDevices() []model.Device {
	return []model.Device{
		{ID: "r1", Type: model.DeviceCiscoIOSLike, Tags: nil},
		{ID: "j1", Type: model.DeviceJunosNetconf, Tags: nil},
	}
}

func testRegistry() *drivers.Registry {
	m := mockdriver.New()
	return drivers.NewRegistry(
		wrapAs(model.DeviceCiscoIOSLike, m),
		wrapAs(model.DeviceJunosNetconf, m),
	)
}

// wrapAs lets the single mock driver implementation answer for multiple
// device types in tests, without needing a distinct driver per type.
type typedDriver struct {
	drivers.Driver
	typ model.DeviceType
}

func (t typedDriver) DeviceType() model.DeviceType { return t.typ }

func wrapAs(typ model.DeviceType, d drivers.Driver) drivers.Driver {
	return typedDriver{Driver: d, typ: typ}
}

func TestSeedScenario1_TwoDeviceCommandBatch(t *testing.T) {
	inv := engine.NewInventory(mockDevices())
	e := engine.New(testRegistry(), store.NoOp{}, nil)

	job := model.Job{
		ID:   uuid.New(),
		Name: "show version",
		Kind: model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"show version"}},
		Targets: model.TargetSelector{Mode: model.TargetAll},
	}
	max := 4
	job.MaxParallel = &max

	result := e.Execute(context.Background(), job, inv)
	require.Len(t, result.DeviceResults, 2)
	require.Equal(t, 2, result.SuccessCount())
}

func TestSeedScenario2_MockFailTag(t *testing.T) {
	inv := engine.NewInventory([]model.Device{{ID: "r1", Type: model.DeviceCiscoIOSLike, Tags: []string{mockdriver.FailTag}}})
	e := engine.New(testRegistry(), store.NoOp{}, nil)

	job := model.Job{
		ID:      uuid.New(),
		Kind:    model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"show version"}},
		Targets: model.TargetSelector{Mode: model.TargetAll},
	}
	result := e.Execute(context.Background(), job, inv)
	require.Len(t, result.DeviceResults, 1)
	require.Equal(t, model.TaskFailed, result.DeviceResults[0].Status)
	require.Contains(t, result.DeviceResults[0].Logs[0], "simulated failure")
	require.Equal(t, 0, result.SuccessCount())
}

func TestSeedScenario3_Timeout(t *testing.T) {
	inv := engine.NewInventory([]model.Device{{ID: "r1", Type: model.DeviceCiscoIOSLike}})
	e := engine.New(testRegistry(), store.NoOp{}, nil, engine.WithTaskTimeout(20*time.Millisecond))

	job := model.Job{
		ID:      uuid.New(),
		Kind:    model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"timeout"}},
		Targets: model.TargetSelector{Mode: model.TargetAll},
	}
	result := e.Execute(context.Background(), job, inv)
	require.Len(t, result.DeviceResults, 1)
	require.Equal(t, model.TaskFailed, result.DeviceResults[0].Status)
	require.Contains(t, result.DeviceResults[0].Logs, "Job execution timed out")
}

func TestComplianceCheckNeverInvokesDriver(t *testing.T) {
	inv := engine.NewInventory([]model.Device{{ID: "r1"}, {ID: "r2"}})
	e := engine.New(drivers.NewRegistry(), store.NoOp{}, nil) // empty registry: any driver call would fail

	job := model.Job{
		ID: uuid.New(),
		Kind: model.JobKind{
			Type: model.JobKindComplianceCheck,
			Rules: []model.ComplianceRule{
				{Name: "Require NTP", Expression: "contains:ntp server"},
				{Name: "No telnet", Expression: "not:transport input telnet"},
			},
		},
		Targets: model.TargetSelector{Mode: model.TargetAll},
		Parameters: map[string]interface{}{
			"inputs": map[string]interface{}{
				"r1": "ntp server 1.1.1.1\ntransport input ssh",
				"r2": "interface Gi1/0\n description test",
			},
		},
	}

	result := e.Execute(context.Background(), job, inv)
	require.Len(t, result.DeviceResults, 2)

	byID := map[string]model.TaskSummary{}
	for _, s := range result.DeviceResults {
		byID[s.DeviceID] = s
	}
	require.Equal(t, model.TaskSuccess, byID["r1"].Status)
	require.Equal(t, model.TaskFailed, byID["r2"].Status)

	found := false
	for _, l := range byID["r2"].Logs {
		if l == "Require NTP: fail (missing required pattern ntp server)" {
			found = true
		}
	}
	require.True(t, found, "expected exact failure log line, got %v", byID["r2"].Logs)
}

func TestDryRunDisciplineSkipsUnsupportedDriver(t *testing.T) {
	unsupported := typedDriver{Driver: dryRunIncapable{}, typ: model.DeviceGenericSSH}
	reg := drivers.NewRegistry(unsupported)
	e := engine.New(reg, store.NoOp{}, nil)

	inv := engine.NewInventory([]model.Device{{ID: "r1", Type: model.DeviceGenericSSH}})
	job := model.Job{
		ID:      uuid.New(),
		Kind:    model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"show version"}},
		Targets: model.TargetSelector{Mode: model.TargetAll},
		DryRun:  true,
	}

	result := e.Execute(context.Background(), job, inv)
	require.Len(t, result.DeviceResults, 1)
	require.Equal(t, model.TaskSuccess, result.DeviceResults[0].Status)
	require.Contains(t, result.DeviceResults[0].Logs, "Dry run skipped (not supported)")
}

// dryRunIncapable is a driver whose Execute must never be called in the
// dry-run-discipline test above; it panics if invoked.
type dryRunIncapable struct{}

func (dryRunIncapable) DeviceType() model.DeviceType      { return model.DeviceGenericSSH }
func (dryRunIncapable) Name() string                      { return "dry-run-incapable" }
func (dryRunIncapable) Capabilities() model.CapabilitySet { return model.CapabilitySet{} }
func (dryRunIncapable) Execute(context.Context, model.Device, drivers.JobAction) (drivers.ExecutionResult, error) {
	panic("Execute must not be called when dry-run is requested and unsupported")
}
func (dryRunIncapable) Rollback(context.Context, model.Device, string) error { return nil }

func TestMissingDriverIsSkipped(t *testing.T) {
	e := engine.New(drivers.NewRegistry(), store.NoOp{}, nil)
	inv := engine.NewInventory([]model.Device{{ID: "r1", Type: model.DeviceGenericSSH}})

	job := model.Job{
		ID:      uuid.New(),
		Kind:    model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"show version"}},
		Targets: model.TargetSelector{Mode: model.TargetAll},
	}
	result := e.Execute(context.Background(), job, inv)
	require.Equal(t, model.TaskSkipped, result.DeviceResults[0].Status)
	require.Equal(t, []string{"No driver available"}, result.DeviceResults[0].Logs)
}
