package can

import "sync"

// DefaultMaxInstances matches the number of CAN peripherals on the target
// boards.
const DefaultMaxInstances = 2

// Registry is the bounded table mapping a transport handle to its driver
// instance. Hardware receive callbacks carry only the peripheral handle;
// the registry resolves it to the instance that owns it.
//
// It is an explicit object rather than hidden package state so tests can
// construct independent registries. Instances are never removed: the table
// lives for the life of the process.
type Registry struct {
	mu      sync.Mutex
	cap     int
	entries []registryEntry
}

type registryEntry struct {
	transport Transport
	instance  *Instance
}

// NewRegistry builds a registry bounded at capacity. Non-positive
// capacities fall back to DefaultMaxInstances.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultMaxInstances
	}
	return &Registry{cap: capacity}
}

// Lookup resolves a transport handle to its instance.
func (r *Registry) Lookup(t Transport) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.transport == t {
			return e.instance, true
		}
	}
	return nil, false
}

// Len reports the number of registered instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// HandlePending routes a hardware "message pending" notification into the
// owning instance's receive path. Unknown handles are ignored.
func (r *Registry) HandlePending(t Transport, fifo FIFO) {
	if inst, ok := r.Lookup(t); ok {
		inst.drain(fifo)
	}
}

func (r *Registry) add(t Transport, inst *Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.transport == t {
			return ErrAlreadyRegistered
		}
	}
	if len(r.entries) >= r.cap {
		return ErrMaxInstances
	}
	r.entries = append(r.entries, registryEntry{transport: t, instance: inst})
	return nil
}

// remove rolls back a registration that failed mid-setup.
func (r *Registry) remove(t Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.transport == t {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}
