package keel

import "fmt"

// Resolve resolves with type safety.
func Resolve[T any](c Container, id ServiceID, opts ...ResolveOption) (T, error) {
	var zero T

	v, err := c.Resolve(id, opts...)
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, ErrTypeMismatch(id.String(), v)
	}

	return typed, nil
}

// Must resolves or panics. Use only during startup wiring.
func Must[T any](c Container, id ServiceID, opts ...ResolveOption) T {
	v, err := Resolve[T](c, id, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", id, err))
	}

	return v
}

// ResolveAll resolves every registration under an identifier and asserts the
// element type.
func ResolveAll[T any](c Container, id ServiceID) ([]T, error) {
	v, err := c.Resolve(id, WithMultiple())
	if err != nil {
		return nil, err
	}

	raw, ok := v.([]any)
	if !ok {
		return nil, ErrTypeMismatch(id.String(), v)
	}

	out := make([]T, 0, len(raw))
	for _, item := range raw {
		typed, ok := item.(T)
		if !ok {
			return nil, ErrTypeMismatch(id.String(), item)
		}
		out = append(out, typed)
	}

	return out, nil
}

// RegisterValue is a convenience wrapper for a pre-built value.
func RegisterValue(c Container, id ServiceID, v any, opts ...RegisterOption) error {
	return c.Register(id, append([]RegisterOption{UseValue(v)}, opts...)...)
}

// RegisterFactory is a convenience wrapper for a typed factory.
func RegisterFactory[T any](c Container, id ServiceID, factory func(Container) (T, error), opts ...RegisterOption) error {
	wrapped := func(c Container) (any, error) {
		return factory(c)
	}

	return c.Register(id, append([]RegisterOption{UseFactory(wrapped)}, opts...)...)
}

// RegisterClass registers a described constructible type under its own
// TypeID.
func RegisterClass(c Container, t TypeID, opts ...RegisterOption) error {
	return c.Register(t, append([]RegisterOption{UseClass(t)}, opts...)...)
}

// RegisterAlias registers an alias from one identifier to another.
func RegisterAlias(c Container, id, target ServiceID, opts ...RegisterOption) error {
	return c.Register(id, append([]RegisterOption{UseAlias(target)}, opts...)...)
}

// Entry holds one registration for batch use with RegisterAll.
type Entry struct {
	ID      ServiceID
	Options []RegisterOption
}

// Service creates an Entry for batch registration.
func Service(id ServiceID, opts ...RegisterOption) Entry {
	return Entry{ID: id, Options: opts}
}

// RegisterAll registers multiple services in a single call, stopping at the
// first failure.
//
// Example:
//
//	err := keel.RegisterAll(c,
//	    keel.Service(configToken, keel.UseValue(cfg)),
//	    keel.Service(dbToken, keel.UseFactory(newDatabase)),
//	)
func RegisterAll(c Container, entries ...Entry) error {
	for _, e := range entries {
		if err := c.Register(e.ID, e.Options...); err != nil {
			return err
		}
	}

	return nil
}
