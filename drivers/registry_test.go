package drivers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/model"
)

type stubDriver struct {
	typ  model.DeviceType
	name string
}

func (s stubDriver) DeviceType() model.DeviceType   { return s.typ }
func (s stubDriver) Name() string                   { return s.name }
func (s stubDriver) Capabilities() model.CapabilitySet { return model.CapabilitySet{} }
func (s stubDriver) Execute(context.Context, model.Device, drivers.JobAction) (drivers.ExecutionResult, error) {
	return drivers.ExecutionResult{}, nil
}
func (s stubDriver) Rollback(context.Context, model.Device, string) error { return nil }

func TestRegistryFindFirstMatchWins(t *testing.T) {
	r := drivers.NewRegistry(
		stubDriver{typ: model.DeviceGenericSSH, name: "builtin"},
	)
	added := r.AddPlugin(stubDriver{typ: model.DeviceGenericSSH, name: "plugin"})
	require.False(t, added)

	d, ok := r.Find(model.DeviceGenericSSH)
	require.True(t, ok)
	require.Equal(t, "builtin", d.Name())
}

func TestRegistryAddsPluginForNewType(t *testing.T) {
	r := drivers.NewRegistry(stubDriver{typ: model.DeviceGenericSSH, name: "builtin"})
	added := r.AddPlugin(stubDriver{typ: "acme-plugin", name: "plugin"})
	require.True(t, added)

	d, ok := r.Find("acme-plugin")
	require.True(t, ok)
	require.Equal(t, "plugin", d.Name())
}

func TestRegistryFindMissing(t *testing.T) {
	r := drivers.NewRegistry()
	_, ok := r.Find(model.DeviceJunosNetconf)
	require.False(t, ok)
}
