package effect

import "github.com/lightwaveos/core/internal/lwerr"

// Registry is the static id->effect table. Registration happens once at
// boot in a defined order; that order assigns ids and is part of the
// external contract. Lookup is O(1) and infallible for known ids.
type Registry struct {
	slots  [MaxEffects]IEffect
	meta   [MaxEffects]Descriptor
	filled [MaxEffects]bool
	nextID int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{} //nolint:exhaustruct
}

// Register assigns e the next sequential id and stores it. Registration
// order is the id-assignment contract: callers must register builtins in
// a stable, documented order across builds.
func (r *Registry) Register(e IEffect) (uint8, error) {
	if r.nextID >= MaxEffects {
		return 0, lwerr.New(lwerr.OutOfRange, "effect registry full (capacity %d)", MaxEffects)
	}

	id := uint8(r.nextID) //nolint:gosec
	r.nextID++

	desc := e.Describe()
	desc.ID = id

	r.slots[id] = e
	r.meta[id] = desc
	r.filled[id] = true

	return id, nil
}

// Get returns the effect registered at id, or false if id is unregistered
// or out of range.
func (r *Registry) Get(id uint8) (IEffect, bool) {
	if int(id) >= MaxEffects || !r.filled[id] {
		return nil, false
	}

	return r.slots[id], true
}

// Describe returns the pattern metadata registered at id.
func (r *Registry) Describe(id uint8) (Descriptor, bool) {
	if int(id) >= MaxEffects || !r.filled[id] {
		return Descriptor{}, false //nolint:exhaustruct
	}

	return r.meta[id], true
}

// All returns every registered descriptor in id order, for the GET
// /effects introspection contract.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, r.nextID)

	for id := 0; id < MaxEffects; id++ {
		if r.filled[id] {
			out = append(out, r.meta[id])
		}
	}

	return out
}

// Count returns the number of registered effects.
func (r *Registry) Count() int {
	return r.nextID
}
