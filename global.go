package keel

import "sync"

// defaultContainer is the process-wide root container, built on first use.
// Callers that can take a Container should have one injected instead of
// reaching for this ambient state.
var defaultContainer struct {
	mu sync.Mutex
	c  Container
}

// Default returns the process-wide default container, creating it on first
// use.
func Default() Container {
	defaultContainer.mu.Lock()
	defer defaultContainer.mu.Unlock()

	if defaultContainer.c == nil {
		defaultContainer.c = New(WithName("default"))
	}

	return defaultContainer.c
}

// ResetDefault disposes the default container and clears it so the next
// Default call starts fresh. Test teardown only.
func ResetDefault() {
	defaultContainer.mu.Lock()
	defer defaultContainer.mu.Unlock()

	if defaultContainer.c != nil {
		defaultContainer.c.Dispose()
		defaultContainer.c = nil
	}
}
