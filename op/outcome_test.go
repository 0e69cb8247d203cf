package op

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSucceedCarriesValue(t *testing.T) {
	o := Succeed(42)
	assert.True(t, o.OK())
	assert.Equal(t, 42, o.Value())

	_, failed := o.Failure()
	assert.False(t, failed)
}

func TestFailCarriesTagAndDebug(t *testing.T) {
	o := Fail(FailureTag("boom"), "detail")
	assert.False(t, o.OK())

	tag, failed := o.Failure()
	assert.True(t, failed)
	assert.Equal(t, FailureTag("boom"), tag)
	assert.Equal(t, "detail", o.Debug())
}

func TestFailWithoutDebugIsEmpty(t *testing.T) {
	o := Fail(FailureTag("boom"))
	assert.Equal(t, "", o.Debug())
}

func TestCancelIsDistinguishedTag(t *testing.T) {
	o := Cancel()
	assert.True(t, o.Is(FailureCanceled))
	assert.False(t, o.Is(FailureUnknownError))
}

func TestFailWithUnknownError(t *testing.T) {
	o := FailWithUnknownError("panic: nil pointer")
	assert.True(t, o.Is(FailureUnknownError))
	assert.Equal(t, "panic: nil pointer", o.Debug())
}

func TestAsRecoversTypedPayload(t *testing.T) {
	o := Succeed("hello")
	v, ok := As[string](o)
	assert.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestAsRejectsWrongType(t *testing.T) {
	o := Succeed("hello")
	_, ok := As[int](o)
	assert.False(t, ok)
}

func TestAsRejectsFailure(t *testing.T) {
	o := Fail(FailureCanceled)
	_, ok := As[int](o)
	assert.False(t, ok)
}
