package keel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceA struct {
	b *serviceB
}

type serviceB struct {
	a *Ref
}

func TestResolve_CircularDependency(t *testing.T) {
	c := New()
	aTok := testToken(t, "a")
	bTok := testToken(t, "b")

	require.NoError(t, c.Register(aTok, UseFactory(func(c Container) (any, error) {
		return c.Resolve(bTok)
	})))
	require.NoError(t, c.Register(bTok, UseFactory(func(c Container) (any, error) {
		return c.Resolve(aTok)
	})))

	_, err := c.Resolve(aTok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
	assert.Contains(t, err.Error(), "Circular dependency detected for service identifier")
	assert.Contains(t, err.Error(), aTok.String())
	assert.Contains(t, err.Error(), bTok.String())
	assert.Contains(t, err.Error(), "Resolution path:")
	assert.Contains(t, err.Error(), "["+aTok.String()+"]")
}

func TestResolve_SelfCycle(t *testing.T) {
	c := New()
	tok := testToken(t, "self")

	require.NoError(t, c.Register(tok, UseFactory(func(c Container) (any, error) {
		return c.Resolve(tok)
	})))

	_, err := c.Resolve(tok)
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
}

func TestResolve_RefBreaksCycle(t *testing.T) {
	c := New()
	aTok := testToken(t, "a")
	bTok := testToken(t, "b")

	require.NoError(t, c.Register(aTok, UseFactory(func(c Container) (any, error) {
		b, err := Resolve[*serviceB](c, bTok)
		if err != nil {
			return nil, err
		}

		return &serviceA{b: b}, nil
	})))
	require.NoError(t, c.Register(bTok, UseFactory(func(c Container) (any, error) {
		ref, err := Resolve[*Ref](c, aTok, WithRef())
		if err != nil {
			return nil, err
		}

		return &serviceB{a: ref}, nil
	})))

	v, err := c.Resolve(aTok)
	require.NoError(t, err)

	a := v.(*serviceA)
	require.NotNil(t, a.b)
	require.NotNil(t, a.b.a)

	// First use of the ref resolves the cached singleton, closing the loop.
	back, err := a.b.a.Current()
	require.NoError(t, err)
	assert.Same(t, v, back)
}

func TestRef_StaticMemoizes(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")

	require.NoError(t, c.Register(tok, UseFactory(countingFactory()), WithLifecycle(Transient)))

	ref, err := Resolve[*Ref](c, tok, WithRef())
	require.NoError(t, err)
	assert.False(t, ref.IsDynamic())

	first, err := ref.Current()
	require.NoError(t, err)
	second, err := ref.Current()
	require.NoError(t, err)

	// A static ref resolves once and replays the result, even for transients.
	assert.Same(t, first, second)
}

func TestRef_DynamicResolvesEveryAccess(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")

	require.NoError(t, c.Register(tok, UseFactory(countingFactory()), WithLifecycle(Transient)))

	ref, err := Resolve[*Ref](c, tok, WithDynamic())
	require.NoError(t, err)
	assert.True(t, ref.IsDynamic())

	first, err := ref.Current()
	require.NoError(t, err)
	second, err := ref.Current()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 1, first.(*counterService).n)
	assert.Equal(t, 2, second.(*counterService).n)
}

func TestRef_DynamicSeesReRegistration(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")

	require.NoError(t, c.Register(tok, UseValue("before")))

	ref, err := Resolve[*Ref](c, tok, WithDynamic())
	require.NoError(t, err)

	v, err := ref.Current()
	require.NoError(t, err)
	assert.Equal(t, "before", v)

	require.NoError(t, c.Register(tok, UseValue("after")))

	v, err = ref.Current()
	require.NoError(t, err)
	assert.Equal(t, "after", v)
}

func TestRef_CurrentPropagatesResolutionError(t *testing.T) {
	c := New()
	tok := testToken(t, "missing")

	// A ref for an unregistered identifier is created eagerly; the failure
	// surfaces on first use.
	ref, err := Resolve[*Ref](c, tok, WithRef())
	require.NoError(t, err)

	_, err = ref.Current()
	assert.ErrorIs(t, err, ErrServiceNotFoundSentinel)
}

func TestRef_MustCurrentPanicsOnError(t *testing.T) {
	c := New()
	tok := testToken(t, "missing")

	ref, err := Resolve[*Ref](c, tok, WithRef())
	require.NoError(t, err)

	assert.Panics(t, func() {
		ref.MustCurrent()
	})
}

func TestCurrentAs(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")

	require.NoError(t, c.Register(tok, UseValue(&counterService{n: 7})))

	ref, err := Resolve[*Ref](c, tok, WithRef())
	require.NoError(t, err)

	svc, err := CurrentAs[*counterService](ref)
	require.NoError(t, err)
	assert.Equal(t, 7, svc.n)

	_, err = CurrentAs[string](ref)
	assert.ErrorIs(t, err, ErrTypeMismatchSentinel)
}

func TestRefFrom(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")

	require.NoError(t, c.Register(tok, UseValue(1)))

	v, err := c.Resolve(tok, WithRef())
	require.NoError(t, err)

	ref, err := RefFrom(v)
	require.NoError(t, err)
	assert.NotNil(t, ref)

	_, err = RefFrom("not a ref")
	assert.ErrorIs(t, err, ErrTypeMismatchSentinel)
}
