package util

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", GetRequestID(ctx))

	// An empty id gets a generated uuid instead.
	generatedCtx := WithRequestID(context.Background(), "")
	id := GetRequestID(generatedCtx)
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	assert.Empty(t, GetRequestID(context.Background()))
}

func TestSource(t *testing.T) {
	ctx := WithSource(context.Background(), "binance-ws")
	assert.Equal(t, "binance-ws", GetSource(ctx))
	assert.Empty(t, GetSource(context.Background()))
}

func TestNewConnectionID(t *testing.T) {
	first := NewConnectionID()
	second := NewConnectionID()
	require.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
