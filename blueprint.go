package keel

import (
	"fmt"
	"sync"
)

// Constructor builds an instance from its resolved dependencies, passed in
// declaration order.
type Constructor func(deps ...any) (any, error)

// Dependency is one ordered dependency descriptor of a constructible type:
// the identifier to resolve and the options to resolve it with.
type Dependency struct {
	ID      ServiceID
	Options ResolveOptions
}

// Dep builds a dependency descriptor.
//
// Example:
//
//	keel.Dep(DatabaseToken)
//	keel.Dep(CacheToken, keel.WithRef())
func Dep(id ServiceID, opts ...ResolveOption) Dependency {
	return Dependency{ID: id, Options: mergeResolveOptions(opts)}
}

// blueprint is the construction recipe for one constructible type: its
// constructor plus the ordered dependency descriptors the engine resolves
// before invoking it.
type blueprint struct {
	ctor Constructor
	deps []Dependency
}

// blueprintRegistry maps constructible types to their blueprints. The core
// never extracts dependency metadata itself; blueprints are supplied
// explicitly, once per type, before the type's first resolution.
type blueprintRegistry struct {
	mu    sync.RWMutex
	types map[TypeID]*blueprint
}

var blueprints = &blueprintRegistry{types: make(map[TypeID]*blueprint)}

// Describe supplies the constructor and ordered dependency list for a
// constructible type. Describing the same type twice is an error.
func Describe(t TypeID, ctor Constructor, deps ...Dependency) error {
	if t.Type() == nil {
		return ErrInvalidRegistration("cannot describe an empty type")
	}

	if ctor == nil {
		return ErrInvalidRegistration(fmt.Sprintf("constructor for type %q cannot be nil", t))
	}

	blueprints.mu.Lock()
	defer blueprints.mu.Unlock()

	if _, exists := blueprints.types[t]; exists {
		return ErrInvalidRegistration(fmt.Sprintf("type %q is already described", t))
	}

	blueprints.types[t] = &blueprint{ctor: ctor, deps: deps}

	return nil
}

// MustDescribe is Describe panicking on error. Intended for package-level
// wiring.
func MustDescribe(t TypeID, ctor Constructor, deps ...Dependency) {
	if err := Describe(t, ctor, deps...); err != nil {
		panic(err)
	}
}

// DescribeType is a typed convenience over Describe.
//
// Example:
//
//	keel.DescribeType[*UserService](func(deps ...any) (any, error) {
//	    return &UserService{db: deps[0].(*Database)}, nil
//	}, keel.Dep(DatabaseToken))
func DescribeType[T any](ctor Constructor, deps ...Dependency) error {
	return Describe(TypeOf[T](), ctor, deps...)
}

// ResetBlueprints clears all described types. Test teardown only.
func ResetBlueprints() {
	blueprints.mu.Lock()
	defer blueprints.mu.Unlock()

	blueprints.types = make(map[TypeID]*blueprint)
}

func describedBlueprint(t TypeID) (*blueprint, bool) {
	blueprints.mu.RLock()
	defer blueprints.mu.RUnlock()

	bp, ok := blueprints.types[t]

	return bp, ok
}
