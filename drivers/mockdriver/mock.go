// Package mockdriver is the deterministic test driver named throughout
// SPEC_FULL.md §4.A and exercised by the engine's seed-scenario tests. It
// is grounded on original_source/crates/nauto_drivers/src/drivers/mock.rs,
// extended with the fail/timeout magic commands and the mock:fail device
// tag that the source's MockDriver never implemented.
package mockdriver

import (
	"context"
	"errors"
	"time"

	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/model"
)

// FailTag, when present on a device, forces every job against it to fail
// regardless of the commands requested.
const FailTag = "mock:fail"

const (
	magicFail    = "fail"
	magicTimeout = "timeout"
)

// TimeoutSleep is how long the "timeout" magic command sleeps for. It is
// deliberately longer than any reasonable engine timeout; tests override
// the engine's own timeout via its test hook rather than shortening this.
const TimeoutSleep = 301 * time.Second

// Driver is the mock DeviceType this package's driver claims.
const Driver model.DeviceType = "mock"

type mockDriver struct{}

// New returns a Driver registered under model type "mock".
func New() drivers.Driver { return mockDriver{} }

func (mockDriver) DeviceType() model.DeviceType { return Driver }
func (mockDriver) Name() string                 { return "mock" }

func (mockDriver) Capabilities() model.CapabilitySet {
	return model.CapabilitySet{Commit: true, Rollback: true, Diff: true, DryRun: true}
}

func (mockDriver) Execute(ctx context.Context, device model.Device, action drivers.JobAction) (drivers.ExecutionResult, error) {
	if device.HasTag(FailTag) {
		return drivers.ExecutionResult{}, errors.New("simulated failure (mock:fail tag)")
	}

	switch action.Kind.Type {
	case model.JobKindCommandBatch:
		for _, cmd := range action.Kind.Commands {
			switch cmd {
			case magicFail:
				return drivers.ExecutionResult{}, errors.New("simulated failure")
			case magicTimeout:
				select {
				case <-time.After(TimeoutSleep):
				case <-ctx.Done():
					return drivers.ExecutionResult{}, ctx.Err()
				}
			}
		}
		logs := make([]string, 0, len(action.Kind.Commands))
		for _, cmd := range action.Kind.Commands {
			logs = append(logs, "ok: "+cmd)
		}
		return drivers.ExecutionResult{Logs: logs}, nil

	case model.JobKindConfigPush:
		pre := "! mock running-config (before)\n"
		post := pre + action.Kind.Snippet + "\n"
		return drivers.ExecutionResult{
			Logs:     []string{"applied config-push snippet"},
			PreSnap:  &pre,
			PostSnap: &post,
		}, nil

	default:
		return drivers.ExecutionResult{Logs: []string{"no-op for kind " + string(action.Kind.Type)}}, nil
	}
}

func (mockDriver) Rollback(ctx context.Context, device model.Device, snapshot string) error {
	return nil
}
