package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_Success(t *testing.T) {
	called := false
	res := NewExecutor().Execute("tick", func() error {
		called = true
		return nil
	})

	assert.True(t, called)
	assert.True(t, res.OK())
	assert.False(t, res.Panicked)
	assert.GreaterOrEqual(t, int64(res.Duration), int64(0))
}

func TestExecutor_Error(t *testing.T) {
	want := errors.New("handler failed")
	res := NewExecutor().Execute("tick", func() error { return want })

	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, want)
	assert.False(t, res.Panicked)
}

func TestExecutor_RecoversPanic(t *testing.T) {
	var gotEvent, gotValue any
	var gotStack []byte
	e := NewExecutor(WithPanicHandler(func(event any, v any, stack []byte) {
		gotEvent, gotValue, gotStack = event, v, stack
	}))

	require.NotPanics(t, func() {
		res := e.Execute("tick", func() error { panic("kaboom") })
		assert.False(t, res.OK())
		assert.True(t, res.Panicked)
		assert.Nil(t, res.Err)
		assert.Equal(t, "kaboom", res.PanicValue)
		assert.NotEmpty(t, res.PanicStack)
	})

	assert.Equal(t, "tick", gotEvent)
	assert.Equal(t, "kaboom", gotValue)
	assert.NotEmpty(t, gotStack)
}

func TestExecutor_PanicHandlerPanicIsContained(t *testing.T) {
	e := NewExecutor(WithPanicHandler(func(any, any, []byte) {
		panic("again")
	}))

	assert.NotPanics(t, func() {
		res := e.Execute(nil, func() error { panic("first") })
		assert.True(t, res.Panicked)
	})
}
