package errors

import (
	stderrors "errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerFromError_capturesStack(t *testing.T) {
	cause := stderrors.New("connection refused")

	tracer := TracerFromError(cause)

	assert.Equal(t, "connection refused", tracer.Error())
	assert.NotNil(t, tracer.StackTrace())
	assert.True(t, stderrors.Is(tracer, cause))
}

func TestTracerFromError_keepsExistingStack(t *testing.T) {
	cause := pkgerrors.New("relation does not exist")

	tracer := TracerFromError(cause)

	// The cause already carries its trace from the failure site; it must not
	// be re-annotated at the wrap site.
	assert.Same(t, cause, tracer.Unwrap())

	traced, ok := cause.(StackTracer)
	require.True(t, ok)
	assert.Equal(t, traced.StackTrace(), tracer.StackTrace())
}

func TestTracer_withoutCause(t *testing.T) {
	tracer := NewTracer("persist batch failed")

	assert.Equal(t, "persist batch failed", tracer.Error())
	assert.Nil(t, tracer.Unwrap())
	assert.Nil(t, tracer.StackTrace())
}
