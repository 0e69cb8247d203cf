package op

import (
	"context"
	"testing"

	"github.com/justapithecus/optree/ioctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dummyOp struct {
	Base
	name string
}

func (d *dummyOp) Name() string { return d.name }

func (d *dummyOp) Run(context.Context, *ioctx.Context) Outcome { return d.Succeed(nil) }

func TestHandleOutcomeWrapsContinuation(t *testing.T) {
	child := &dummyOp{name: "child"}
	parent := &dummyOp{name: "parent"}

	handlerCalled := false
	handler := func(Outcome) Op {
		handlerCalled = true
		return parent
	}

	outcome := parent.HandleOutcome(child, handler)
	require.True(t, outcome.OK())

	cont, ok := As[Continuation](outcome)
	require.True(t, ok)
	assert.Equal(t, child, cont.Op)

	next := cont.Handler(Succeed(nil))
	assert.True(t, handlerCalled)
	assert.Equal(t, parent, next)
}

func TestDefaultHandlerReturnsParentRegardlessOfOutcome(t *testing.T) {
	parent := &dummyOp{name: "parent"}
	h := DefaultHandler(parent)

	assert.Equal(t, Op(parent), h(Succeed(1)))
	assert.Equal(t, Op(parent), h(Fail(FailureCanceled)))
}

func TestBaseHelpersBuildExpectedOutcomes(t *testing.T) {
	var b Base

	assert.True(t, b.Succeed(1).OK())
	assert.True(t, b.Fail(FailureTag("x")).Is(FailureTag("x")))
	assert.True(t, b.Cancel().Is(FailureCanceled))
	assert.True(t, b.FailWithUnknownError("oops").Is(FailureUnknownError))
}
