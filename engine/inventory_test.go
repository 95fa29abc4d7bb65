package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lammesen/netrust/engine"
	"github.com/lammesen/netrust/model"
)

func fixtureDevices() []model.Device {
	return []model.Device{
		{ID: "r1", Tags: []string{"edge", "prod"}},
		{ID: "r2", Tags: []string{"core"}},
		{ID: "r3", Tags: []string{"edge"}},
	}
}

func TestResolveTargetsAll(t *testing.T) {
	inv := engine.NewInventory(fixtureDevices())
	got := inv.ResolveTargets(model.TargetSelector{Mode: model.TargetAll})
	require.Len(t, got, 3)
}

func TestResolveTargetsByIDsPreservesInventoryOrder(t *testing.T) {
	inv := engine.NewInventory(fixtureDevices())
	got := inv.ResolveTargets(model.TargetSelector{Mode: model.TargetByIDs, IDs: []string{"r3", "r1"}})
	require.Len(t, got, 2)
	require.Equal(t, "r1", got[0].ID)
	require.Equal(t, "r3", got[1].ID)
}

func TestResolveTargetsByTagsRequiresAllOf(t *testing.T) {
	inv := engine.NewInventory(fixtureDevices())
	got := inv.ResolveTargets(model.TargetSelector{Mode: model.TargetByTags, AllOf: []string{"edge", "prod"}})
	require.Len(t, got, 1)
	require.Equal(t, "r1", got[0].ID)
}

func TestResolveTargetsNoMatchIsEmptyNotError(t *testing.T) {
	inv := engine.NewInventory(fixtureDevices())
	got := inv.ResolveTargets(model.TargetSelector{Mode: model.TargetByIDs, IDs: []string{"ghost"}})
	require.Empty(t, got)
}

func TestResolveTargetsIdempotent(t *testing.T) {
	inv := engine.NewInventory(fixtureDevices())
	sel := model.TargetSelector{Mode: model.TargetByTags, AllOf: []string{"edge"}}
	first := inv.ResolveTargets(sel)
	second := inv.ResolveTargets(sel)
	require.Equal(t, first, second)
}
