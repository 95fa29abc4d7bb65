package drivers

import "github.com/lammesen/netrust/model"

// Registry is a flat, read-only-after-construction collection of drivers.
// Find is a linear scan: the fleet of driver implementations is tiny
// (at most a few dozen), so a map would be unneeded machinery for this.
type Registry struct {
	drivers []Driver
}

// NewRegistry builds a registry from built-in drivers, in priority order.
func NewRegistry(builtins ...Driver) *Registry {
	return &Registry{drivers: append([]Driver(nil), builtins...)}
}

// AddPlugin appends a plugin-provided driver. It is skipped (not added)
// when a built-in (or earlier plugin) already claims that device type,
// matching spec §4.D: "first match wins."
func (r *Registry) AddPlugin(d Driver) (added bool) {
	if _, ok := r.find(d.DeviceType()); ok {
		return false
	}
	r.drivers = append(r.drivers, d)
	return true
}

// Find returns the first driver claiming the given device type, if any.
func (r *Registry) Find(t model.DeviceType) (Driver, bool) {
	return r.find(t)
}

func (r *Registry) find(t model.DeviceType) (Driver, bool) {
	for _, d := range r.drivers {
		if d.DeviceType() == t {
			return d, true
		}
	}
	return nil, false
}

// All returns every registered driver, built-ins first.
func (r *Registry) All() []Driver {
	return append([]Driver(nil), r.drivers...)
}
