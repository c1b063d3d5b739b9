package keel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	key, err := NewKey[*testDatabase]("key-db#" + t.Name())
	require.NoError(t, err)
	assert.Equal(t, "key-db#"+t.Name(), key.String())
	assert.Equal(t, key.String(), key.Token().String())
}

func TestNewKey_Collision(t *testing.T) {
	name := "key-collision#" + t.Name()

	_, err := NewKey[*testDatabase](name)
	require.NoError(t, err)

	// Key uniqueness is token uniqueness: the type parameter does not
	// disambiguate.
	_, err = NewKey[*testCache](name)
	assert.Error(t, err)
}

func TestMustKey_PanicsOnCollision(t *testing.T) {
	name := "key-must#" + t.Name()

	MustKey[*testDatabase](name)
	assert.Panics(t, func() {
		MustKey[*testDatabase](name)
	})
}

func TestRegisterResolveKey(t *testing.T) {
	c := New()
	key := MustKey[*testDatabase]("key-roundtrip#" + t.Name())

	require.NoError(t, RegisterKey(c, key, UseValue(&testDatabase{connStr: "keyed"})))

	db, err := ResolveKey(c, key)
	require.NoError(t, err)
	assert.Equal(t, "keyed", db.connStr)
}

func TestResolveKey_TypeMismatch(t *testing.T) {
	c := New()
	key := MustKey[*testDatabase]("key-mismatch#" + t.Name())

	require.NoError(t, RegisterKey(c, key, UseValue("not a database")))

	_, err := ResolveKey(c, key)
	assert.ErrorIs(t, err, ErrTypeMismatchSentinel)
}

func TestMustResolveKey_PanicsOnError(t *testing.T) {
	c := New()
	key := MustKey[*testDatabase]("key-panic#" + t.Name())

	assert.Panics(t, func() {
		MustResolveKey(c, key)
	})
}
