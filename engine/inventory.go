// Package engine implements Inventory resolution and the Job Engine
// (SPEC_FULL.md §4.B, §4.E), grounded on
// original_source/crates/nauto_engine/src/inventory.rs and lib.rs.
package engine

import "github.com/lammesen/netrust/model"

// Inventory resolves a TargetSelector against a loaded device snapshot.
// Resolution is pure and idempotent: calling ResolveTargets twice with the
// same selector on the same snapshot returns identical lists.
type Inventory struct {
	devices []model.Device
}

// NewInventory builds an Inventory from a device snapshot, preserving order.
func NewInventory(devices []model.Device) *Inventory {
	return &Inventory{devices: append([]model.Device(nil), devices...)}
}

// ResolveTargets never errors; an unmatched selector returns an empty slice.
func (inv *Inventory) ResolveTargets(sel model.TargetSelector) []model.Device {
	switch sel.Mode {
	case model.TargetAll:
		return append([]model.Device(nil), inv.devices...)

	case model.TargetByIDs:
		want := make(map[string]bool, len(sel.IDs))
		for _, id := range sel.IDs {
			want[id] = true
		}
		var out []model.Device
		for _, d := range inv.devices {
			if want[d.ID] {
				out = append(out, d)
			}
		}
		return out

	case model.TargetByTags:
		var out []model.Device
		for _, d := range inv.devices {
			if d.HasAllTags(sel.AllOf) {
				out = append(out, d)
			}
		}
		return out

	default:
		return nil
	}
}

// ByID looks up a single device by id.
func (inv *Inventory) ByID(id string) (model.Device, bool) {
	for _, d := range inv.devices {
		if d.ID == id {
			return d, true
		}
	}
	return model.Device{}, false
}

// All returns the full snapshot, in inventory order.
func (inv *Inventory) All() []model.Device {
	return append([]model.Device(nil), inv.devices...)
}
