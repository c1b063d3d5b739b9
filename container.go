package keel

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// container implements Container. The registry, middleware list and disposed
// flag are guarded by mu; instance construction itself is synchronous and
// depth-first, so registration caches are only ever mutated by the single
// call tree that owns the current resolve session.
type container struct {
	id       uint64
	name     string
	parent   *container
	registry *registry

	middleware []Middleware
	log        *zap.Logger
	disposed   bool
	mu         sync.RWMutex
}

var containerIDs atomic.Uint64

// ContainerOption configures a container at construction time.
type ContainerOption func(*container)

// WithName sets the container's diagnostic name.
func WithName(name string) ContainerOption {
	return func(c *container) {
		c.name = name
	}
}

// WithParent sets the parent container. The parent is consulted for
// identifiers not registered locally; it is never owned and never notified of
// the child's existence. The parent must have been created by New.
func WithParent(parent Container) ContainerOption {
	return func(c *container) {
		if parent == nil {
			return
		}
		p, ok := parent.(*container)
		if !ok {
			panic(fmt.Sprintf("keel: parent must be a container created by keel.New, got %T", parent))
		}
		c.parent = p
	}
}

// WithLogger sets the logger used for defensive diagnostics. Defaults to a
// no-op logger.
func WithLogger(log *zap.Logger) ContainerOption {
	return func(c *container) {
		if log != nil {
			c.log = log
		}
	}
}

func newContainer(opts ...ContainerOption) *container {
	c := &container{
		id:       containerIDs.Add(1),
		registry: newRegistry(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.name == "" {
		c.name = fmt.Sprintf("container-%d", c.id)
	}

	return c
}

// ID implements Container.
func (c *container) ID() uint64 {
	return c.id
}

// Name implements Container.
func (c *container) Name() string {
	return c.name
}

// Parent implements Container.
func (c *container) Parent() Container {
	if c.parent == nil {
		return nil
	}

	return c.parent
}

// Child implements Container.
func (c *container) Child(name string) Container {
	return newContainer(WithName(name), WithParent(c), WithLogger(c.log))
}

// Register implements Container.
func (c *container) Register(id ServiceID, opts ...RegisterOption) error {
	if id == nil {
		return ErrInvalidRegistration("service identifier cannot be nil")
	}

	cfg := newRegisterConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrContainerDisposed(c.name, "register")
	}

	return c.registry.set(id, newRegistration(id, cfg))
}

// Has implements Container.
func (c *container) Has(id ServiceID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.registry.has(id)
}

// HasRecursive implements Container.
func (c *container) HasRecursive(id ServiceID) bool {
	if c.Has(id) {
		return true
	}
	if c.parent != nil {
		return c.parent.HasRecursive(id)
	}

	return false
}

// Unregister implements Container.
func (c *container) Unregister(id ServiceID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrContainerDisposed(c.name, "unregister")
	}

	c.registry.remove(id)

	return nil
}

// Use implements Container.
func (c *container) Use(m Middleware) {
	if m == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		c.log.Debug("middleware registered on disposed container ignored",
			zap.String("container", c.name), zap.String("middleware", m.Name()))

		return
	}

	c.middleware = append(c.middleware, m)
}

// Unused implements Container.
func (c *container) Unused(m Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.middleware = removeFirstMiddleware(c.middleware, m)
}

// Dispose implements Container. Disposal is synchronous and non-cascading:
// local registrations are released and middleware disposal hooks notified,
// but neither parent nor children are touched. Hook errors are swallowed.
func (c *container) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()

		return
	}
	c.disposed = true
	local := c.middleware
	c.middleware = nil
	c.registry.clear()
	c.mu.Unlock()

	for _, m := range local {
		disposer, ok := m.(MiddlewareDisposer)
		if !ok {
			continue
		}
		if err := disposer.DisposeMiddleware(); err != nil {
			c.log.Debug("middleware disposal hook failed",
				zap.String("container", c.name),
				zap.String("middleware", m.Name()),
				zap.Error(err))
		}
	}
}

// Disposed implements Container.
func (c *container) Disposed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.disposed
}

// Resolve implements Container.
func (c *container) Resolve(id ServiceID, opts ...ResolveOption) (any, error) {
	return c.resolve(id, mergeResolveOptions(opts))
}

// resolve validates options, acquires the shared resolve session and runs the
// middleware chain around the recorded resolution step.
func (c *container) resolve(id ServiceID, options ResolveOptions) (any, error) {
	if options.Ref && options.Dynamic {
		return nil, ErrInvalidOptions(`the "ref" and "dynamic" options are mutually exclusive`)
	}

	c.mu.RLock()
	disposed := c.disposed
	local := make([]Middleware, len(c.middleware))
	copy(local, c.middleware)
	c.mu.RUnlock()

	if disposed {
		return nil, ErrContainerDisposed(c.name, "resolve")
	}

	session := sessions.acquire()
	defer sessions.release(session)

	params := ResolveParams{Container: c, ID: id, Options: options}
	innermost := func() (any, error) {
		return c.resolveRecorded(session, id, options)
	}

	return composeMiddleware(local, globalMiddleware.snapshot(), params, innermost)()
}

// resolveRecorded is the actual resolution step: registration lookup, parent
// delegation, auto-registration, cycle detection, ref/dynamic deferral,
// optional fallback and apply-and-cache.
func (c *container) resolveRecorded(s *resolveSession, id ServiceID, options ResolveOptions) (any, error) {
	depth := s.stack.depth()
	defer func() {
		// Every nested call must restore the stack to its own entry depth,
		// never below ours. A shallower stack here means mismatched
		// push/pop bookkeeping: an implementation bug, not a user error.
		if s.stack.depth() < depth {
			c.log.Error("resolve record stack under-popped, resetting resolve state",
				zap.String("container", c.name),
				zap.Int("expected", depth),
				zap.Int("actual", s.stack.depth()))
			sessions.hardReset()

			return
		}
		s.stack.truncate(depth)
	}()

	c.mu.RLock()
	regs := c.registry.getAll(id)
	parent := c.parent
	c.mu.RUnlock()

	// Unregistered locally: delegate the whole call to the parent when it
	// (recursively) knows the identifier. Local registrations always shadow
	// parent ones; sequences are never merged.
	if len(regs) == 0 && parent != nil && parent.HasRecursive(id) {
		s.stack.push(messageRecord(fmt.Sprintf("delegating %q to parent container %q", id, parent.name)))

		return parent.resolve(id, options)
	}

	// Unregistered anywhere: a described constructible type gets a one-off
	// transient class registration that is never persisted, so every
	// auto-resolution constructs fresh.
	if len(regs) == 0 {
		if t, ok := id.(TypeID); ok {
			if _, described := describedBlueprint(t); described {
				auto := newRegistration(id, &registerConfig{
					strategy:  strategyClass,
					class:     t,
					lifecycle: Transient,
					public:    true,
				})
				regs = []*Registration{auto}
			}
		}
	}

	s.stack.push(identifierRecord(c, id, options))

	if collide, found := s.stack.detectCycle(); found {
		return nil, ErrCircularDependency(id.String(), s.stack.renderCycle(collide))
	}

	// Deferred resolution: snapshot the current path with a wait-for-use
	// marker and hand back a Ref whose closure re-enters this algorithm with
	// the deferral flags cleared, evaluated against the snapshot.
	if options.Ref || options.Dynamic {
		snap := s.stack.snapshot()
		snap = append(snap, messageRecord(fmt.Sprintf("deferred resolution of %q waiting for first use", id)))

		deferred := options
		deferred.Ref = false
		deferred.Dynamic = false

		resolveFn := func() (any, error) {
			sess := sessions.acquire()
			defer sessions.release(sess)

			saved := sess.stack.snapshot()
			sess.stack.restore(snap)
			defer sess.stack.restore(saved)

			return c.resolve(id, deferred)
		}

		return newRef(resolveFn, options.Dynamic), nil
	}

	if len(regs) == 0 {
		if options.Optional {
			if options.Default != nil {
				return options.Default, nil
			}
			if options.Multiple {
				return []any{}, nil
			}

			return nil, nil
		}

		return nil, ErrServiceNotFound(id.String(), s.stack.path())
	}

	if options.Multiple {
		out := make([]any, 0, len(regs))
		for _, reg := range regs {
			v, err := c.applyAndCache(s, reg, options)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}

		return out, nil
	}

	return c.applyAndCache(s, regs[len(regs)-1], options)
}

// applyAndCache returns the cached instance for the registration's lifecycle
// scope, or constructs one and persists it there.
func (c *container) applyAndCache(s *resolveSession, reg *Registration, options ResolveOptions) (any, error) {
	key := contextKey{reg: reg, ref: options.Ref, dynamic: options.Dynamic, multiple: options.Multiple}

	switch reg.lifecycle {
	case Singleton:
		if reg.resolved {
			return reg.instance, nil
		}
	case ResolutionScoped:
		if v, ok := s.scoped[key]; ok {
			return v, nil
		}
	}

	v, err := c.construct(s, reg)
	if err != nil {
		return nil, err
	}

	switch reg.lifecycle {
	case Singleton:
		reg.instance = v
		reg.resolved = true
	case ResolutionScoped:
		s.scoped[key] = v
	}

	return v, nil
}

// construct runs the registration's creation strategy. Provider failures are
// wrapped with the accumulated resolution path; errors from nested
// resolutions propagate untouched, they already carry their own path.
func (c *container) construct(s *resolveSession, reg *Registration) (any, error) {
	switch reg.strategy {
	case strategyValue:
		return reg.value, nil

	case strategyAlias:
		return c.resolve(reg.alias, ResolveOptions{})

	case strategyFactory:
		v, err := reg.factory(c)
		if err != nil {
			return nil, ErrProviderFailure(reg.id.String(), s.stack.path(), err)
		}

		return v, nil

	case strategyClass:
		bp, ok := describedBlueprint(reg.class)
		if !ok {
			return nil, ErrTypeNotDescribed(reg.class.String())
		}

		deps := make([]any, len(bp.deps))
		for i, dep := range bp.deps {
			v, err := c.resolve(dep.ID, dep.Options)
			if err != nil {
				return nil, err
			}
			deps[i] = v
		}

		v, err := bp.ctor(deps...)
		if err != nil {
			return nil, ErrProviderFailure(reg.id.String(), s.stack.path(), err)
		}

		return v, nil

	default:
		return nil, ErrInvalidRegistration(fmt.Sprintf("service identifier %q has no creation strategy", reg.id))
	}
}
