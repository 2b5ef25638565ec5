package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler(t *testing.T) {
	var got StatusChanged
	h := JSONHandler(func(_ context.Context, key []byte, ev *StatusChanged) error {
		assert.Equal(t, "42", string(key))
		got = *ev
		return nil
	})

	require.NoError(t, h(context.Background(), []byte("42"), []byte(`{"check_id":42,"status":"down","at":"2026-03-01T12:00:00Z"}`)))
	assert.Equal(t, int64(42), got.CheckID)
	assert.Equal(t, "down", got.Status)
	assert.Equal(t, 2026, got.At.Year())
}

func TestJSONHandler_BadMessage(t *testing.T) {
	h := JSONHandler(func(context.Context, []byte, *StatusChanged) error {
		t.Fatal("handler must not run")
		return nil
	})

	err := h(context.Background(), nil, []byte("\x00garbage"))
	var bad ErrBadMessage
	require.True(t, errors.As(err, &bad))
	assert.Contains(t, err.Error(), "bad message")
}

func TestJSONHandler_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	h := JSONHandler(func(context.Context, []byte, *StatusChanged) error { return boom })

	err := h(context.Background(), nil, []byte(`{}`))
	assert.ErrorIs(t, err, boom)
	var bad ErrBadMessage
	assert.False(t, errors.As(err, &bad))
}

func TestKeyFromInt64(t *testing.T) {
	assert.Equal(t, []byte("7"), KeyFromInt64(7))
}
