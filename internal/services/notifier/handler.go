package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NordCoder/hcdispatch/internal/dispatch"
	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
	"github.com/NordCoder/hcdispatch/internal/domain/notification"
	"github.com/NordCoder/hcdispatch/internal/obs"
	"github.com/NordCoder/hcdispatch/internal/obs/retry"
	kafkax "github.com/NordCoder/hcdispatch/internal/repository/kafka"
	"github.com/NordCoder/hcdispatch/internal/repository/postgres"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type StatusChange struct {
	CheckID int64
	Status  check.Status
	At      time.Time
}

type CheckReader interface {
	GetByID(ctx context.Context, id int64) (*check.Check, error)
}

type ChannelLister interface {
	ListByCheck(ctx context.Context, checkID int64) ([]*channel.Channel, error)
}

type Dispatcher interface {
	Notify(ctx context.Context, chk *check.Check, ch *channel.Channel) (*notification.Notification, error)
}

type Events interface {
	PublishNotificationRecorded(ctx context.Context, ev kafkax.NotificationRecorded) error
}

// Handler fans a status change out to every channel of the check. Channels
// are delivered concurrently and independently: a failing or misconfigured
// channel does not stop the others. Delivery failures live in the
// notification rows; a dispatch fault (no row could be written or finished)
// is returned once every channel has been tried, so the event is redelivered.
type Handler struct {
	Checks   CheckReader
	Channels ChannelLister
	Dispatch Dispatcher
	Events   Events
	Log      *zap.Logger
	Workers  int
	Publish  retry.Policy
}

func (h *Handler) HandleStatusChange(ctx context.Context, ev StatusChange) error {
	log := obs.WithTrace(ctx, h.Log).With(zap.Int64("check_id", ev.CheckID), zap.String("status", string(ev.Status)))

	if ev.Status != check.StatusUp && ev.Status != check.StatusDown {
		log.Debug("status change ignored")
		return nil
	}

	chk, err := h.Checks.GetByID(ctx, ev.CheckID)
	if errors.Is(err, postgres.ErrNotFound) {
		log.Warn("status change for unknown check")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get check: %w", err)
	}
	// Notify about the transition that happened, even if the stored status
	// has moved on since.
	chk.Status = ev.Status

	channels, err := h.Channels.ListByCheck(ctx, chk.ID)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}
	if len(channels) == 0 {
		log.Debug("check has no channels")
		return nil
	}
	mFanout.Add(float64(len(channels)))

	var (
		g  errgroup.Group
		mu sync.Mutex

		failed int
		faults []error
	)
	g.SetLimit(max(h.Workers, 1))
	for _, ch := range channels {
		ch := ch
		g.Go(func() error {
			if err := h.deliver(ctx, chk, ch, log); err != nil {
				mu.Lock()
				failed++
				if !errors.Is(err, dispatch.ErrUnknownKind) {
					faults = append(faults, fmt.Errorf("channel %d: %w", ch.ID, err))
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info("status change dispatched", zap.Int("channels", len(channels)), zap.Int("dispatch_errors", failed))
	if len(faults) > 0 {
		return fmt.Errorf("dispatch check %d: %w", chk.ID, errors.Join(faults...))
	}
	return nil
}

func (h *Handler) deliver(ctx context.Context, chk *check.Check, ch *channel.Channel, log *zap.Logger) error {
	n, err := h.Dispatch.Notify(ctx, chk, ch)
	if err != nil {
		mErrors.Inc()
		log.Error("dispatch", zap.Int64("channel_id", ch.ID), zap.String("kind", string(ch.Kind)), zap.Error(err))
		return err
	}
	if h.Events == nil {
		return nil
	}

	ev := kafkax.NotificationRecorded{
		NotificationID: n.ID,
		ChannelID:      n.ChannelID,
		CheckID:        n.CheckID,
		Kind:           string(ch.Kind),
		CheckStatus:    n.CheckStatus,
		State:          string(n.State),
		Error:          n.Error,
		At:             n.UpdatedAt,
	}
	if err := retry.Do(ctx, func() error { return h.Events.PublishNotificationRecorded(ctx, ev) }, h.Publish); err != nil {
		mErrors.Inc()
		log.Warn("publish notification event", zap.Int64("notification_id", n.ID), zap.Error(err))
	}
	return nil
}
