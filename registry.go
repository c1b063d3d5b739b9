package keel

import "fmt"

// registry maps identifiers to their ordered registration sequences.
// Insertion order is preserved both per identifier and across identifiers;
// single resolution uses the last registration under an identifier. A
// registry is owned by exactly one container and never shared.
type registry struct {
	entries map[ServiceID][]*Registration
	order   []ServiceID
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[ServiceID][]*Registration),
	}
}

// get returns the last-registered registration for an identifier, or nil.
func (r *registry) get(id ServiceID) *Registration {
	regs := r.entries[id]
	if len(regs) == 0 {
		return nil
	}

	return regs[len(regs)-1]
}

// getAll returns the full ordered registration sequence for an identifier.
func (r *registry) getAll(id ServiceID) []*Registration {
	return r.entries[id]
}

// has reports whether at least one registration exists for an identifier.
func (r *registry) has(id ServiceID) bool {
	return len(r.entries[id]) > 0
}

// set appends a registration under its identifier. All registrations under
// one identifier must agree on lifecycle and visibility; a mismatch is a
// fatal registration error.
func (r *registry) set(id ServiceID, reg *Registration) error {
	existing := r.entries[id]
	if len(existing) > 0 {
		first := existing[0]
		if first.lifecycle != reg.lifecycle {
			return ErrInvalidRegistration(fmt.Sprintf(
				"service identifier %q is already registered with lifecycle %q; cannot add a %q registration",
				id, first.lifecycle, reg.lifecycle,
			))
		}
		if first.public != reg.public {
			return ErrInvalidRegistration(fmt.Sprintf(
				"service identifier %q is already registered with a different visibility", id,
			))
		}
	}

	if len(existing) == 0 {
		r.order = append(r.order, id)
	}
	r.entries[id] = append(existing, reg)

	return nil
}

// setAll replaces the registration sequence for an identifier.
func (r *registry) setAll(id ServiceID, regs []*Registration) error {
	r.remove(id)
	for _, reg := range regs {
		if err := r.set(id, reg); err != nil {
			return err
		}
	}

	return nil
}

// remove drops every registration under an identifier.
func (r *registry) remove(id ServiceID) {
	if _, ok := r.entries[id]; !ok {
		return
	}

	delete(r.entries, id)
	for i, known := range r.order {
		if known == id {
			r.order = append(r.order[:i], r.order[i+1:]...)

			break
		}
	}
}

// clear drops all registrations.
func (r *registry) clear() {
	r.entries = make(map[ServiceID][]*Registration)
	r.order = nil
}

// keys returns all registered identifiers in first-registration order.
func (r *registry) keys() []ServiceID {
	keys := make([]ServiceID, len(r.order))
	copy(keys, r.order)

	return keys
}
