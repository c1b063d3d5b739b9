package keel

import "strings"

// recordKind tags a resolve record frame.
type recordKind int

const (
	recordMessage recordKind = iota
	recordIdentifier
)

// resolveRecord is one frame of the resolve record stack: either a diagnostic
// message or an identifier-resolution attempt with the options it was made
// with.
type resolveRecord struct {
	kind    recordKind
	message string
	owner   *container
	id      ServiceID
	ref     bool
	dynamic bool
}

func messageRecord(message string) resolveRecord {
	return resolveRecord{kind: recordMessage, message: message}
}

func identifierRecord(owner *container, id ServiceID, opts ResolveOptions) resolveRecord {
	return resolveRecord{
		kind:    recordIdentifier,
		owner:   owner,
		id:      id,
		ref:     opts.Ref,
		dynamic: opts.Dynamic,
	}
}

// render returns the frame's contribution to a diagnostic path.
func (r resolveRecord) render() string {
	if r.kind == recordMessage {
		return r.message
	}

	name := r.id.String()
	switch {
	case r.ref:
		return name + " (ref)"
	case r.dynamic:
		return name + " (dynamic)"
	default:
		return name
	}
}

// recordStack is the append-only frame stack scoped to one root-to-leaf
// resolution call tree. Every nested call restores the stack to its prior
// depth on return, so sibling calls never see each other's frames.
type recordStack struct {
	frames []resolveRecord
}

func (s *recordStack) push(r resolveRecord) {
	s.frames = append(s.frames, r)
}

func (s *recordStack) depth() int {
	return len(s.frames)
}

// truncate restores the stack to a prior depth.
func (s *recordStack) truncate(depth int) {
	if depth < 0 {
		depth = 0
	}
	if depth < len(s.frames) {
		s.frames = s.frames[:depth]
	}
}

// snapshot copies the current frames so they can be restored later, after
// unrelated frames have come and gone.
func (s *recordStack) snapshot() []resolveRecord {
	snap := make([]resolveRecord, len(s.frames))
	copy(snap, s.frames)

	return snap
}

// restore replaces the stack content with a snapshot.
func (s *recordStack) restore(frames []resolveRecord) {
	s.frames = append(s.frames[:0], frames...)
}

// detectCycle compares the most recently pushed frame against its ancestors.
// Two frames collide iff they name the same container instance and the same
// identifier and neither carries ref or dynamic. The scan walks from the top
// of the stack downward and stops at the first ref/dynamic ancestor: that
// frame already broke the chain, so nothing above it can form a cycle with
// anything below. Returns the colliding ancestor's index.
func (s *recordStack) detectCycle() (int, bool) {
	if len(s.frames) < 2 {
		return 0, false
	}

	top := s.frames[len(s.frames)-1]
	if top.kind != recordIdentifier || top.ref || top.dynamic {
		return 0, false
	}

	for i := len(s.frames) - 2; i >= 0; i-- {
		frame := s.frames[i]
		if frame.kind != recordIdentifier {
			continue
		}
		if frame.ref || frame.dynamic {
			return 0, false
		}
		if frame.owner == top.owner && frame.id == top.id {
			return i, true
		}
	}

	return 0, false
}

// path renders the identifier frames from root to top for diagnostics.
func (s *recordStack) path() string {
	parts := make([]string, 0, len(s.frames))
	for _, frame := range s.frames {
		if frame.kind != recordIdentifier {
			continue
		}
		parts = append(parts, frame.render())
	}

	return strings.Join(parts, " -> ")
}

// renderCycle renders the identifier frames root to top with the two
// colliding frames marked.
func (s *recordStack) renderCycle(collide int) string {
	top := len(s.frames) - 1
	parts := make([]string, 0, len(s.frames))
	for i, frame := range s.frames {
		if frame.kind != recordIdentifier {
			continue
		}
		rendered := frame.render()
		if i == collide || i == top {
			rendered = "[" + rendered + "]"
		}
		parts = append(parts, rendered)
	}

	return strings.Join(parts, " -> ")
}
