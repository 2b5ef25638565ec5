// Package dispatch records and performs the delivery of one check status
// change to one channel.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
	"github.com/NordCoder/hcdispatch/internal/domain/notification"
	"github.com/NordCoder/hcdispatch/internal/obs"
	"github.com/NordCoder/hcdispatch/internal/transport"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrUnknownKind means a channel carries a kind no transport handles. It is a
// configuration defect and is never stored as a delivery error.
var ErrUnknownKind = errors.New("unknown channel kind")

type Transports interface {
	For(kind channel.Kind) (transport.Transport, bool)
}

type Dispatcher struct {
	log        *zap.Logger
	repo       notification.Repo
	transports Transports
	clock      notification.Clock
}

func New(log *zap.Logger, repo notification.Repo, transports Transports, clock notification.Clock) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		log:        log.With(zap.String("component", "dispatch")),
		repo:       repo,
		transports: transports,
		clock:      clock,
	}
}

// Notify creates a notification row for (chk, ch), runs the channel transport
// and stores its outcome on the same row.
//
// Delivery problems never surface as an error; they end up in the row. The
// returned error is reserved for repository faults and ErrUnknownKind.
func (d *Dispatcher) Notify(ctx context.Context, chk *check.Check, ch *channel.Channel) (*notification.Notification, error) {
	ctx, span := otel.Tracer("dispatch").Start(ctx, "dispatch.notify",
		trace.WithAttributes(
			attribute.Int64("check.id", chk.ID),
			attribute.Int64("channel.id", ch.ID),
			attribute.String("channel.kind", string(ch.Kind)),
			attribute.String("check.status", string(chk.Status)),
		),
	)
	defer span.End()

	log := obs.WithTrace(ctx, d.log).With(
		zap.Int64("check_id", chk.ID),
		zap.Int64("channel_id", ch.ID),
		zap.String("kind", string(ch.Kind)),
	)

	now := d.clock.Now().UTC()
	n := &notification.Notification{
		ChannelID:   ch.ID,
		CheckID:     chk.ID,
		CheckStatus: string(chk.Status),
		State:       notification.StatePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := d.repo.Create(ctx, n); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create notification")
		return nil, fmt.Errorf("create notification: %w", err)
	}

	t, ok := d.transports.For(ch.Kind)
	if !ok {
		mUnknownKind.Inc()
		err := fmt.Errorf("%w: %q (channel %d)", ErrUnknownKind, ch.Kind, ch.ID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown kind")
		log.Error("no transport for channel kind", zap.Int64("notification_id", n.ID))
		return n, err
	}

	start := time.Now()
	err := invoke(ctx, t, ch, chk, log)
	mTransportDur.WithLabelValues(string(ch.Kind)).Observe(time.Since(start).Seconds())

	n.State, n.Error = outcome(err)
	n.UpdatedAt = d.clock.Now().UTC()

	// The outcome is stored even if the caller gave up meanwhile.
	if ferr := d.repo.Finish(context.WithoutCancel(ctx), n); ferr != nil {
		span.RecordError(ferr)
		span.SetStatus(codes.Error, "finish notification")
		return n, fmt.Errorf("finish notification %d: %w", n.ID, ferr)
	}
	mAttempts.WithLabelValues(string(ch.Kind), string(n.State)).Inc()
	span.SetAttributes(attribute.String("notification.state", string(n.State)))

	if !n.Succeeded() {
		mDeliveryErrors.WithLabelValues(string(ch.Kind)).Inc()
		log.Warn("notification failed", zap.Int64("notification_id", n.ID), zap.String("error", n.Error))
	} else {
		log.Info("notification recorded", zap.Int64("notification_id", n.ID), zap.String("state", string(n.State)))
	}
	return n, nil
}

// invoke shields the dispatch loop from a panicking transport.
func invoke(ctx context.Context, t transport.Transport, ch *channel.Channel, chk *check.Check, log *zap.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("transport panic", zap.Any("panic", r), zap.Stack("stack"))
			err = transport.Fail("Internal error")
		}
	}()
	return t.Notify(ctx, ch, chk)
}

func outcome(err error) (notification.State, string) {
	switch {
	case err == nil:
		return notification.StateDelivered, ""
	case errors.Is(err, transport.ErrSkipped):
		return notification.StateSkipped, ""
	default:
		msg := transport.Describe(err)
		if msg == "" {
			msg = "Unknown error"
		}
		return notification.StateFailed, msg
	}
}
