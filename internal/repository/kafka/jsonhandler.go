package kafka

import (
	"context"
	"encoding/json"
	"fmt"
)

// ErrBadMessage marks payloads that can never be processed. The consumer
// commits past them instead of retrying.
type ErrBadMessage struct{ Err error }

func (e ErrBadMessage) Error() string { return "bad message: " + e.Err.Error() }
func (e ErrBadMessage) Unwrap() error { return e.Err }

func JSONHandler[M any](handle func(context.Context, []byte, *M) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		var msg M
		if err := json.Unmarshal(value, &msg); err != nil {
			return ErrBadMessage{Err: fmt.Errorf("decode json: %w", err)}
		}
		return handle(ctx, key, &msg)
	}
}
