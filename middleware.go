package keel

import "sync"

// ResolveParams describes the resolution a middleware is intercepting.
type ResolveParams struct {
	Container Container
	ID        ServiceID
	Options   ResolveOptions
}

// Next advances to the next middleware in the chain, or to the provider step
// itself at the innermost position.
type Next func() (any, error)

// Middleware intercepts resolutions. It may inspect or transform the result,
// or short-circuit by never invoking next.
//
// Composition is strict LIFO by registration time within a scope, and the
// local scope wraps the global scope wraps the provider step: the last local
// middleware registered executes outermost, the first global middleware
// registered executes right around the provider.
type Middleware interface {
	// Name identifies the middleware in diagnostics.
	Name() string

	// Execute runs the middleware. Call next() to continue the chain.
	Execute(params ResolveParams, next Next) (any, error)
}

// MiddlewareDisposer is implemented by middlewares that need teardown when
// their owning container is disposed. Hook errors are swallowed to keep
// teardown resilient.
type MiddlewareDisposer interface {
	DisposeMiddleware() error
}

// FuncMiddleware adapts a function to Middleware.
type FuncMiddleware struct {
	MiddlewareName string
	ExecuteFunc    func(params ResolveParams, next Next) (any, error)
	DisposeFunc    func() error
}

// Name implements Middleware.
func (f *FuncMiddleware) Name() string {
	return f.MiddlewareName
}

// Execute implements Middleware.
func (f *FuncMiddleware) Execute(params ResolveParams, next Next) (any, error) {
	if f.ExecuteFunc == nil {
		return next()
	}

	return f.ExecuteFunc(params, next)
}

// DisposeMiddleware implements MiddlewareDisposer.
func (f *FuncMiddleware) DisposeMiddleware() error {
	if f.DisposeFunc == nil {
		return nil
	}

	return f.DisposeFunc()
}

// composeMiddleware builds the onion around the innermost provider step.
// Folding in registration order leaves the last-registered middleware
// outermost; globals are folded first so every local wraps every global.
func composeMiddleware(local, global []Middleware, params ResolveParams, innermost Next) Next {
	next := innermost
	for _, m := range global {
		next = wrapMiddleware(m, params, next)
	}
	for _, m := range local {
		next = wrapMiddleware(m, params, next)
	}

	return next
}

func wrapMiddleware(m Middleware, params ResolveParams, next Next) Next {
	return func() (any, error) {
		return m.Execute(params, next)
	}
}

// removeFirstMiddleware removes the first chain entry identical to m.
func removeFirstMiddleware(chain []Middleware, m Middleware) []Middleware {
	for i, known := range chain {
		if known == m {
			return append(chain[:i], chain[i+1:]...)
		}
	}

	return chain
}

// middlewareManager is the process-wide global middleware set. Global
// middlewares run inside every container's local chain, directly around the
// provider step.
type middlewareManager struct {
	mu    sync.Mutex
	chain []Middleware
}

var globalMiddleware = &middlewareManager{}

func (mm *middlewareManager) use(m Middleware) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.chain = append(mm.chain, m)
}

func (mm *middlewareManager) unused(m Middleware) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.chain = removeFirstMiddleware(mm.chain, m)
}

func (mm *middlewareManager) snapshot() []Middleware {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	snap := make([]Middleware, len(mm.chain))
	copy(snap, mm.chain)

	return snap
}

func (mm *middlewareManager) reset() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.chain = nil
}

// UseGlobal registers a middleware on the process-wide global set.
func UseGlobal(m Middleware) {
	globalMiddleware.use(m)
}

// UnusedGlobal removes the first matching middleware from the global set.
func UnusedGlobal(m Middleware) {
	globalMiddleware.unused(m)
}

// ResetGlobalMiddleware clears the global middleware set. Test teardown only.
func ResetGlobalMiddleware() {
	globalMiddleware.reset()
}
