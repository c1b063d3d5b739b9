package keel

import (
	"fmt"
	"reflect"
	"sync"
)

// ServiceID is the lookup key for a service: either an opaque Token or the
// TypeID of a constructible type. Both implementations are comparable value
// types, so a ServiceID can be used directly as a map key.
type ServiceID interface {
	fmt.Stringer

	serviceID()
}

// Token is an opaque string identifier. Tokens are allocated through NewToken
// or MustToken, which enforce process-wide name uniqueness.
type Token struct {
	name string
}

// String returns the token name.
func (t Token) String() string {
	return t.name
}

func (Token) serviceID() {}

// TypeID identifies a service by its constructible Go type. Use TypeOf to
// create one.
type TypeID struct {
	rt reflect.Type
}

// TypeOf returns the TypeID for T.
//
// Example:
//
//	keel.TypeOf[*Database]()
func TypeOf[T any]() TypeID {
	return TypeID{rt: reflect.TypeOf((*T)(nil)).Elem()}
}

// String returns the Go type name.
func (t TypeID) String() string {
	if t.rt == nil {
		return "<nil>"
	}

	return t.rt.String()
}

// Type returns the underlying reflect.Type.
func (t TypeID) Type() reflect.Type {
	return t.rt
}

func (TypeID) serviceID() {}

// tokenAuthority is the process-wide allocation table backing NewToken.
// Collisions fail at allocation time, never at registration or resolution.
type tokenAuthority struct {
	mu    sync.Mutex
	names map[string]struct{}
}

var tokens = &tokenAuthority{names: make(map[string]struct{})}

// NewToken allocates a new unique token. Allocating the same name twice
// returns a TOKEN_COLLISION error.
func NewToken(name string) (Token, error) {
	if name == "" {
		return Token{}, ErrInvalidRegistration("token name cannot be empty")
	}

	tokens.mu.Lock()
	defer tokens.mu.Unlock()

	if _, exists := tokens.names[name]; exists {
		return Token{}, ErrTokenCollision(name)
	}

	tokens.names[name] = struct{}{}

	return Token{name: name}, nil
}

// MustToken allocates a new unique token and panics on collision. Intended
// for package-level token variables.
//
// Example:
//
//	var DatabaseToken = keel.MustToken("database")
func MustToken(name string) Token {
	tok, err := NewToken(name)
	if err != nil {
		panic(err)
	}

	return tok
}

// ResetTokens clears the token allocation table. Test teardown only.
func ResetTokens() {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()

	tokens.names = make(map[string]struct{})
}
