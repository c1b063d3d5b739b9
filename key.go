package keel

// Key provides type-safe service identification over a Token. The type
// parameter T is checked when resolving through ResolveKey.
type Key[T any] struct {
	token Token
}

// NewKey allocates a typed key backed by a new unique token.
//
// Example:
//
//	var DatabaseKey = keel.MustKey[*Database]("database")
func NewKey[T any](name string) (Key[T], error) {
	tok, err := NewToken(name)
	if err != nil {
		return Key[T]{}, err
	}

	return Key[T]{token: tok}, nil
}

// MustKey allocates a typed key and panics on token collision.
func MustKey[T any](name string) Key[T] {
	k, err := NewKey[T](name)
	if err != nil {
		panic(err)
	}

	return k
}

// Token returns the key's underlying token.
func (k Key[T]) Token() Token {
	return k.token
}

// String returns the token name.
func (k Key[T]) String() string {
	return k.token.String()
}

// RegisterKey registers a service under a typed key.
func RegisterKey[T any](c Container, key Key[T], opts ...RegisterOption) error {
	return c.Register(key.token, opts...)
}

// ResolveKey resolves a service under a typed key.
func ResolveKey[T any](c Container, key Key[T], opts ...ResolveOption) (T, error) {
	var zero T

	v, err := c.Resolve(key.token, opts...)
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, ErrTypeMismatch(key.String(), v)
	}

	return typed, nil
}

// MustResolveKey resolves a service under a typed key and panics on error.
func MustResolveKey[T any](c Container, key Key[T], opts ...ResolveOption) T {
	v, err := ResolveKey(c, key, opts...)
	if err != nil {
		panic(err)
	}

	return v
}
