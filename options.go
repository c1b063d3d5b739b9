package keel

// Factory creates a service instance. The container passed in is the one the
// resolution is running against, so factories may resolve further services.
type Factory func(c Container) (any, error)

// strategy tags the creation strategy of a registration. Exactly one strategy
// must be chosen per registration.
type strategy int

const (
	strategyNone strategy = iota
	strategyClass
	strategyFactory
	strategyValue
	strategyAlias
)

// String returns the human-readable name of the strategy.
func (s strategy) String() string {
	switch s {
	case strategyClass:
		return "class"
	case strategyFactory:
		return "factory"
	case strategyValue:
		return "value"
	case strategyAlias:
		return "alias"
	default:
		return "none"
	}
}

// registerConfig accumulates RegisterOptions before a Registration is built.
type registerConfig struct {
	strategies int
	strategy   strategy
	class      TypeID
	factory    Factory
	value      any
	alias      ServiceID
	lifecycle  Lifecycle
	public     bool
	metadata   map[string]string
}

func newRegisterConfig() *registerConfig {
	return &registerConfig{
		lifecycle: Singleton,
		public:    true,
	}
}

// RegisterOption configures a registration. Exactly one of UseClass,
// UseFactory, UseValue or UseAlias must be supplied.
type RegisterOption func(*registerConfig)

// UseClass registers a constructible type as the creation strategy. The type
// must be described with Describe before its first resolution.
func UseClass(t TypeID) RegisterOption {
	return func(cfg *registerConfig) {
		cfg.strategies++
		cfg.strategy = strategyClass
		cfg.class = t
	}
}

// UseFactory registers a factory function as the creation strategy.
func UseFactory(f Factory) RegisterOption {
	return func(cfg *registerConfig) {
		cfg.strategies++
		cfg.strategy = strategyFactory
		cfg.factory = f
	}
}

// UseValue registers a pre-built value as the creation strategy.
func UseValue(v any) RegisterOption {
	return func(cfg *registerConfig) {
		cfg.strategies++
		cfg.strategy = strategyValue
		cfg.value = v
	}
}

// UseAlias registers an alias: resolving the identifier resolves the target
// identifier in the same container chain.
func UseAlias(target ServiceID) RegisterOption {
	return func(cfg *registerConfig) {
		cfg.strategies++
		cfg.strategy = strategyAlias
		cfg.alias = target
	}
}

// WithLifecycle sets the registration's lifecycle. The default is Singleton.
func WithLifecycle(l Lifecycle) RegisterOption {
	return func(cfg *registerConfig) {
		cfg.lifecycle = l
	}
}

// WithMetadata attaches diagnostic metadata to the registration.
func WithMetadata(key, value string) RegisterOption {
	return func(cfg *registerConfig) {
		if cfg.metadata == nil {
			cfg.metadata = make(map[string]string)
		}
		cfg.metadata[key] = value
	}
}

// asPrivate marks the registration inaccessible through a module's export
// guard. Used by module assembly.
func asPrivate() RegisterOption {
	return func(cfg *registerConfig) {
		cfg.public = false
	}
}

// validate checks that the accumulated options form a well-formed registration.
func (cfg *registerConfig) validate() error {
	switch {
	case cfg.strategies == 0:
		return ErrInvalidRegistration("a registration requires exactly one of UseClass, UseFactory, UseValue or UseAlias")
	case cfg.strategies > 1:
		return ErrInvalidRegistration("a registration accepts only one creation strategy; multiple were supplied")
	}

	switch cfg.strategy {
	case strategyFactory:
		if cfg.factory == nil {
			return ErrInvalidRegistration("factory cannot be nil")
		}
	case strategyClass:
		if cfg.class.Type() == nil {
			return ErrInvalidRegistration("class type cannot be empty")
		}
	case strategyAlias:
		if cfg.alias == nil {
			return ErrInvalidRegistration("alias target cannot be nil")
		}
	}

	return nil
}

// ResolveOptions carries the per-call resolution flags.
type ResolveOptions struct {
	// Ref defers resolution: the call returns a memoizing Ref instead of an
	// eager instance.
	Ref bool

	// Dynamic defers resolution like Ref but re-resolves on every access.
	Dynamic bool

	// Multiple resolves every registration under the identifier, in
	// registration order.
	Multiple bool

	// Optional suppresses SERVICE_NOT_FOUND for unregistered identifiers.
	Optional bool

	// Default is returned for an unregistered optional identifier.
	Default any
}

// ResolveOption configures a single resolve call.
type ResolveOption func(*ResolveOptions)

// WithRef requests a deferred, memoizing Ref instead of an eager instance.
// Mutually exclusive with WithDynamic.
func WithRef() ResolveOption {
	return func(o *ResolveOptions) {
		o.Ref = true
	}
}

// WithDynamic requests a deferred Ref that re-resolves on every access.
// Mutually exclusive with WithRef.
func WithDynamic() ResolveOption {
	return func(o *ResolveOptions) {
		o.Dynamic = true
	}
}

// WithMultiple resolves all registrations under the identifier. The result is
// a []any in registration order.
func WithMultiple() ResolveOption {
	return func(o *ResolveOptions) {
		o.Multiple = true
	}
}

// WithOptional returns nil (or the configured default) instead of failing
// when the identifier is unregistered.
func WithOptional() ResolveOption {
	return func(o *ResolveOptions) {
		o.Optional = true
	}
}

// WithDefault sets the value returned for an unregistered identifier and
// implies WithOptional.
func WithDefault(v any) ResolveOption {
	return func(o *ResolveOptions) {
		o.Optional = true
		o.Default = v
	}
}

func mergeResolveOptions(opts []ResolveOption) ResolveOptions {
	var merged ResolveOptions
	for _, opt := range opts {
		opt(&merged)
	}

	return merged
}
