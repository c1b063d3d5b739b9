package keel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordStack_Path(t *testing.T) {
	c := newContainer()
	a := Token{name: "a"}
	b := Token{name: "b"}

	var s recordStack
	s.push(identifierRecord(c, a, ResolveOptions{}))
	s.push(messageRecord("delegating"))
	s.push(identifierRecord(c, b, ResolveOptions{Ref: true}))

	assert.Equal(t, "a -> b (ref)", s.path())
}

func TestRecordStack_DynamicMarker(t *testing.T) {
	c := newContainer()
	a := Token{name: "a"}

	var s recordStack
	s.push(identifierRecord(c, a, ResolveOptions{Dynamic: true}))

	assert.Equal(t, "a (dynamic)", s.path())
}

func TestRecordStack_DetectCycle(t *testing.T) {
	c := newContainer()
	a := Token{name: "a"}
	b := Token{name: "b"}

	var s recordStack
	s.push(identifierRecord(c, a, ResolveOptions{}))
	s.push(identifierRecord(c, b, ResolveOptions{}))

	_, found := s.detectCycle()
	assert.False(t, found)

	s.push(identifierRecord(c, a, ResolveOptions{}))

	collide, found := s.detectCycle()
	assert.True(t, found)
	assert.Equal(t, 0, collide)
	assert.Equal(t, "[a] -> b -> [a]", s.renderCycle(collide))
}

func TestRecordStack_SameIdentifierDifferentContainers(t *testing.T) {
	first := newContainer()
	second := newContainer()
	a := Token{name: "a"}

	var s recordStack
	s.push(identifierRecord(first, a, ResolveOptions{}))
	s.push(identifierRecord(second, a, ResolveOptions{}))

	// A frame only collides with an ancestor from the same container.
	_, found := s.detectCycle()
	assert.False(t, found)
}

func TestRecordStack_RefAncestorStopsScan(t *testing.T) {
	c := newContainer()
	a := Token{name: "a"}
	b := Token{name: "b"}

	var s recordStack
	s.push(identifierRecord(c, a, ResolveOptions{}))
	s.push(identifierRecord(c, a, ResolveOptions{Ref: true}))
	s.push(identifierRecord(c, b, ResolveOptions{}))
	s.push(identifierRecord(c, a, ResolveOptions{}))

	// The ref frame already broke the chain; the plain a below it is
	// unreachable for cycle purposes.
	_, found := s.detectCycle()
	assert.False(t, found)
}

func TestRecordStack_TruncateAndRestore(t *testing.T) {
	c := newContainer()
	a := Token{name: "a"}
	b := Token{name: "b"}

	var s recordStack
	s.push(identifierRecord(c, a, ResolveOptions{}))
	snap := s.snapshot()

	s.push(identifierRecord(c, b, ResolveOptions{}))
	s.truncate(1)
	assert.Equal(t, "a", s.path())

	s.push(identifierRecord(c, b, ResolveOptions{}))
	s.restore(snap)
	assert.Equal(t, "a", s.path())
	assert.Equal(t, 1, s.depth())
}
