package keel

import (
	"fmt"
	"sync"
)

// Ref is a deferred handle to a resolution, used to break dependency cycles
// or postpone expensive construction. It owns only the resolution recipe
// (container, identifier and record-stack snapshot), never the target
// instance: the instance's owner remains whichever scope caches it.
//
// A static Ref memoizes the first resolution; a dynamic Ref re-resolves on
// every access.
type Ref struct {
	resolve func() (any, error)
	dynamic bool
	once    sync.Once
	value   any
	err     error
}

func newRef(resolve func() (any, error), dynamic bool) *Ref {
	return &Ref{resolve: resolve, dynamic: dynamic}
}

// Current resolves and returns the target. Static refs resolve once and cache
// the result; dynamic refs re-enter resolution on every call.
func (r *Ref) Current() (any, error) {
	if r.dynamic {
		return r.resolve()
	}

	r.once.Do(func() {
		r.value, r.err = r.resolve()
	})

	return r.value, r.err
}

// MustCurrent resolves the target and panics on error.
func (r *Ref) MustCurrent() any {
	v, err := r.Current()
	if err != nil {
		panic(fmt.Sprintf("deferred resolution failed: %v", err))
	}

	return v
}

// IsDynamic reports whether the ref re-resolves on every access.
func (r *Ref) IsDynamic() bool {
	return r.dynamic
}

// CurrentAs resolves the ref and asserts the target's type.
//
// Example:
//
//	db, err := keel.CurrentAs[*Database](ref)
func CurrentAs[T any](r *Ref) (T, error) {
	var zero T

	v, err := r.Current()
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, ErrTypeMismatch(fmt.Sprintf("%T", zero), v)
	}

	return typed, nil
}

// RefFrom asserts that a resolved value is a Ref. Convenience for callers of
// the untyped Resolve that passed WithRef or WithDynamic.
func RefFrom(v any) (*Ref, error) {
	ref, ok := v.(*Ref)
	if !ok {
		return nil, ErrTypeMismatch("*keel.Ref", v)
	}

	return ref, nil
}
