// Package transport delivers check status changes to a single notification
// channel. Each channel kind has its own Transport; all of them report
// failures as short, user-displayable Failure values instead of raw I/O
// errors.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
)

// Transport sends one notification about chk through ch.
//
// A nil return means the message was handed over to the destination.
// ErrSkipped means the transport deliberately did nothing. Anything else is a
// Failure whose text is shown to the user as-is.
type Transport interface {
	Notify(ctx context.Context, ch *channel.Channel, chk *check.Check) error
}

// ErrSkipped is returned when a transport has nothing to send for the event.
var ErrSkipped = errors.New("skipped")

// Failure is a delivery failure with a message meant for end users.
type Failure struct {
	Msg string
}

func (f *Failure) Error() string { return f.Msg }

func Fail(msg string) error { return &Failure{Msg: msg} }

func Failf(format string, args ...any) error {
	return &Failure{Msg: fmt.Sprintf(format, args...)}
}

// Describe turns any error returned by a Transport into the text stored on a
// notification. Errors that are not a Failure are reduced to a generic message.
func Describe(err error) string {
	if err == nil || errors.Is(err, ErrSkipped) {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Msg
	}
	return describeIOError(err)
}
