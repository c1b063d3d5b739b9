// Package keel is a token-based dependency-resolution runtime. Services are
// declared against identifiers (opaque tokens or constructible types) with
// one of four creation strategies (class, factory, value, alias) and a
// lifecycle (singleton, transient, resolution-scoped); instances are built
// and cached on demand with cycle detection, deferred ref/dynamic handles and
// an interceptor chain. A module layer statically validates declarations,
// imports, exports and aliases and assembles sub-graphs into one resolvable
// container.
package keel

// Container builds and caches service instances on demand.
type Container interface {
	// ID returns the container's unique numeric id.
	ID() uint64

	// Name returns the container's diagnostic name.
	Name() string

	// Parent returns the parent container, or nil.
	Parent() Container

	// Register binds an identifier to exactly one creation strategy
	// (UseClass, UseFactory, UseValue or UseAlias) and an optional lifecycle.
	// Registering the same identifier again appends: Resolve uses the last
	// registration, WithMultiple yields all of them in order.
	Register(id ServiceID, opts ...RegisterOption) error

	// Resolve returns an instance for the identifier, honoring the resolve
	// options: a []any for WithMultiple, a *Ref for WithRef or WithDynamic,
	// the default for an unregistered optional identifier.
	Resolve(id ServiceID, opts ...ResolveOption) (any, error)

	// Has reports whether the identifier is registered locally.
	Has(id ServiceID) bool

	// HasRecursive reports whether the identifier is registered locally or in
	// any ancestor container.
	HasRecursive(id ServiceID) bool

	// Unregister removes all local registrations for the identifier,
	// including any cached singleton instances.
	Unregister(id ServiceID) error

	// Use registers a local middleware. Later registrations wrap earlier
	// ones, and all local middlewares wrap the global set.
	Use(m Middleware)

	// Unused removes the first matching local middleware.
	Unused(m Middleware)

	// Services returns all locally registered identifiers in
	// first-registration order.
	Services() []ServiceID

	// Inspect returns diagnostic information about an identifier's local
	// registrations.
	Inspect(id ServiceID) ServiceInfo

	// Child creates a new container with this container as parent. The child
	// resolves identifiers it does not know locally through the parent;
	// local registrations always shadow the parent's.
	Child(name string) Container

	// Dispose releases all local registrations and notifies middleware
	// disposal hooks. Idempotent; never touches parent or children.
	Dispose()

	// Disposed reports whether the container has been disposed.
	Disposed() bool
}

// New creates a container.
//
// Example:
//
//	c := keel.New(keel.WithName("app"))
func New(opts ...ContainerOption) Container {
	return newContainer(opts...)
}
