package keel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// traceMiddleware appends its name to a shared trace before and after next.
func traceMiddleware(name string, trace *[]string) *FuncMiddleware {
	return &FuncMiddleware{
		MiddlewareName: name,
		ExecuteFunc: func(params ResolveParams, next Next) (any, error) {
			*trace = append(*trace, name+":before")
			v, err := next()
			*trace = append(*trace, name+":after")

			return v, err
		},
	}
}

func TestMiddleware_RunsAroundResolution(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")
	var trace []string

	require.NoError(t, c.Register(tok, UseValue("result")))
	c.Use(traceMiddleware("audit", &trace))

	v, err := c.Resolve(tok)
	require.NoError(t, err)
	assert.Equal(t, "result", v)
	assert.Equal(t, []string{"audit:before", "audit:after"}, trace)
}

func TestMiddleware_LastRegisteredOutermost(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")
	var trace []string

	require.NoError(t, c.Register(tok, UseValue(1)))
	c.Use(traceMiddleware("first", &trace))
	c.Use(traceMiddleware("second", &trace))

	_, err := c.Resolve(tok)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"second:before",
		"first:before",
		"first:after",
		"second:after",
	}, trace)
}

func TestMiddleware_LocalWrapsGlobal(t *testing.T) {
	t.Cleanup(ResetGlobalMiddleware)

	c := New()
	tok := testToken(t, "svc")
	var trace []string

	require.NoError(t, c.Register(tok, UseValue(1)))
	UseGlobal(traceMiddleware("global", &trace))
	c.Use(traceMiddleware("local", &trace))

	_, err := c.Resolve(tok)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"local:before",
		"global:before",
		"global:after",
		"local:after",
	}, trace)
}

func TestMiddleware_ShortCircuit(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")
	providerRan := false

	require.NoError(t, c.Register(tok, UseFactory(func(Container) (any, error) {
		providerRan = true

		return "real", nil
	})))

	c.Use(&FuncMiddleware{
		MiddlewareName: "stub",
		ExecuteFunc: func(params ResolveParams, next Next) (any, error) {
			return "stubbed", nil
		},
	})

	v, err := c.Resolve(tok)
	require.NoError(t, err)
	assert.Equal(t, "stubbed", v)
	assert.False(t, providerRan)
}

func TestMiddleware_TransformsResult(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")

	require.NoError(t, c.Register(tok, UseValue(10)))
	c.Use(&FuncMiddleware{
		MiddlewareName: "doubler",
		ExecuteFunc: func(params ResolveParams, next Next) (any, error) {
			v, err := next()
			if err != nil {
				return nil, err
			}

			return v.(int) * 2, nil
		},
	})

	v, err := c.Resolve(tok)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

func TestMiddleware_SeesResolveParams(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")
	var seen ResolveParams

	require.NoError(t, c.Register(tok, UseValue(1)))
	c.Use(&FuncMiddleware{
		MiddlewareName: "observer",
		ExecuteFunc: func(params ResolveParams, next Next) (any, error) {
			seen = params

			return next()
		},
	})

	_, err := c.Resolve(tok, WithOptional())
	require.NoError(t, err)

	assert.Equal(t, tok, seen.ID)
	assert.True(t, seen.Options.Optional)
	assert.Same(t, c, seen.Container)
}

func TestMiddleware_UnusedRemovesFirstMatch(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")
	var trace []string
	mw := traceMiddleware("removable", &trace)

	require.NoError(t, c.Register(tok, UseValue(1)))
	c.Use(mw)
	c.Unused(mw)

	_, err := c.Resolve(tok)
	require.NoError(t, err)
	assert.Empty(t, trace)
}

func TestMiddleware_UnusedGlobal(t *testing.T) {
	t.Cleanup(ResetGlobalMiddleware)

	c := New()
	tok := testToken(t, "svc")
	var trace []string
	mw := traceMiddleware("global", &trace)

	require.NoError(t, c.Register(tok, UseValue(1)))
	UseGlobal(mw)
	UnusedGlobal(mw)

	_, err := c.Resolve(tok)
	require.NoError(t, err)
	assert.Empty(t, trace)
}

func TestMiddleware_NilIgnored(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")

	require.NoError(t, c.Register(tok, UseValue(1)))
	c.Use(nil)

	v, err := c.Resolve(tok)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestMiddleware_DisposalHookNotified(t *testing.T) {
	c := New()
	disposed := false

	c.Use(&FuncMiddleware{
		MiddlewareName: "teardown",
		DisposeFunc: func() error {
			disposed = true

			return nil
		},
	})

	c.Dispose()
	assert.True(t, disposed)
}

func TestMiddleware_DisposalHookErrorSwallowed(t *testing.T) {
	c := New()

	c.Use(&FuncMiddleware{
		MiddlewareName: "failing-teardown",
		DisposeFunc: func() error {
			return errors.New("teardown failed")
		},
	})

	assert.NotPanics(t, func() {
		c.Dispose()
	})
	assert.True(t, c.Disposed())
}

func TestFuncMiddleware_NilExecutePassesThrough(t *testing.T) {
	c := New()
	tok := testToken(t, "svc")

	require.NoError(t, c.Register(tok, UseValue("pass")))
	c.Use(&FuncMiddleware{MiddlewareName: "noop"})

	v, err := c.Resolve(tok)
	require.NoError(t, err)
	assert.Equal(t, "pass", v)
}
