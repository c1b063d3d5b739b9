package keel

import "sync"

// contextKey keys the resolution-scoped cache: the registration plus the
// option shape it was resolved under.
type contextKey struct {
	reg      *Registration
	ref      bool
	dynamic  bool
	multiple bool
}

// resolveSession is the shared scratch state of one root resolve call tree:
// the resolve record stack and the resolution-scoped instance cache. Nested
// resolutions, including those crossing container boundaries via parent
// delegation or factories, share one session; it is released when the
// outermost call unwinds.
type resolveSession struct {
	refs   int
	stack  recordStack
	scoped map[contextKey]any
}

// sessionArena hands out the current session using an acquire/release
// reference count: the first acquire constructs a fresh session, the last
// release discards it, so independent root resolve calls never share state.
// Resolution itself is synchronous and depth-first; the mutex only guards the
// counter bookkeeping.
type sessionArena struct {
	mu      sync.Mutex
	current *resolveSession
}

var sessions = &sessionArena{}

func (a *sessionArena) acquire() *resolveSession {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil {
		a.current = &resolveSession{scoped: make(map[contextKey]any)}
	}
	a.current.refs++

	return a.current
}

func (a *sessionArena) release(s *resolveSession) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s.refs--
	if s.refs <= 0 && a.current == s {
		a.current = nil
	}
}

// hardReset abandons the current session. Only called when the defensive
// unwind check finds leftover frames at the root, which indicates an
// implementation bug rather than a user error.
func (a *sessionArena) hardReset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.current = nil
}
