package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHandleMessage_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	h := func(context.Context, []byte, []byte) error {
		calls++
		if calls < 3 {
			return errors.New("db unavailable")
		}
		return nil
	}

	err := handleMessage(context.Background(), h, kafka.Message{Topic: "t", Offset: 4}, zaptest.NewLogger(t), time.Millisecond, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestHandleMessage_BadMessageNotRetried(t *testing.T) {
	calls := 0
	h := func(context.Context, []byte, []byte) error {
		calls++
		return ErrBadMessage{Err: errors.New("decode json")}
	}

	err := handleMessage(context.Background(), h, kafka.Message{Topic: "t"}, zaptest.NewLogger(t), time.Millisecond, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestHandleMessage_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	h := func(context.Context, []byte, []byte) error {
		calls++
		cancel()
		return errors.New("db unavailable")
	}

	err := handleMessage(ctx, h, kafka.Message{Topic: "t"}, zaptest.NewLogger(t), time.Hour, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
