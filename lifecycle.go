package keel

// Lifecycle controls how instances produced by a registration are cached.
type Lifecycle int

const (
	// Singleton is the default lifecycle. The first resolution caches the
	// instance on the registration; it is reused until the container is
	// disposed or the registration removed.
	Singleton Lifecycle = iota

	// Transient means a new instance is constructed on every resolution.
	Transient

	// ResolutionScoped means one instance per root resolve call: every nested
	// resolution inside the same call tree shares the instance, independent
	// root calls each construct their own.
	ResolutionScoped
)

// String returns the human-readable name of the lifecycle.
func (l Lifecycle) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	case ResolutionScoped:
		return "resolution-scoped"
	default:
		return "unknown"
	}
}
