package keel

// Registration binds one creation strategy and one lifecycle to an
// identifier. It is immutable after creation except for its cached instance,
// resolved flag and metadata, and is owned by exactly one registry.
type Registration struct {
	id        ServiceID
	strategy  strategy
	class     TypeID
	factory   Factory
	value     any
	alias     ServiceID
	lifecycle Lifecycle
	public    bool
	metadata  map[string]string

	instance any
	resolved bool
}

func newRegistration(id ServiceID, cfg *registerConfig) *Registration {
	return &Registration{
		id:        id,
		strategy:  cfg.strategy,
		class:     cfg.class,
		factory:   cfg.factory,
		value:     cfg.value,
		alias:     cfg.alias,
		lifecycle: cfg.lifecycle,
		public:    cfg.public,
		metadata:  cfg.metadata,
	}
}

// ID returns the identifier the registration is bound to.
func (r *Registration) ID() ServiceID {
	return r.id
}

// Lifecycle returns the registration's lifecycle.
func (r *Registration) Lifecycle() Lifecycle {
	return r.lifecycle
}

// Strategy returns the human-readable name of the creation strategy.
func (r *Registration) Strategy() string {
	return r.strategy.String()
}

// Resolved reports whether a singleton instance has been cached.
func (r *Registration) Resolved() bool {
	return r.resolved
}

// Public reports whether the registration is visible through a module's
// export guard.
func (r *Registration) Public() bool {
	return r.public
}

// Metadata returns the diagnostic metadata value for a key.
func (r *Registration) Metadata(key string) (string, bool) {
	v, ok := r.metadata[key]

	return v, ok
}

// SetMetadata attaches diagnostic metadata after registration.
func (r *Registration) SetMetadata(key, value string) {
	if r.metadata == nil {
		r.metadata = make(map[string]string)
	}
	r.metadata[key] = value
}
