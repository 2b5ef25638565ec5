package notifier

import (
	"context"

	"github.com/NordCoder/hcdispatch/internal/domain/check"
	kafkax "github.com/NordCoder/hcdispatch/internal/repository/kafka"
	"go.uber.org/zap"
)

type Subscriber interface {
	Consume(ctx context.Context, h kafkax.Handler) error
}

type Controller struct {
	Log *zap.Logger
	Sub Subscriber
	UC  *Handler
}

func (c *Controller) Run(ctx context.Context) error {
	return c.Sub.Consume(ctx, c.Handler())
}

func (c *Controller) Handler() kafkax.Handler {
	return kafkax.JSONHandler(func(ctx context.Context, _ []byte, ev *kafkax.StatusChanged) error {
		mConsumed.Inc()
		if ev.CheckID <= 0 {
			c.Log.Warn("status-change: invalid check_id", zap.Int64("check_id", ev.CheckID))
			return nil
		}
		return c.UC.HandleStatusChange(ctx, StatusChange{
			CheckID: ev.CheckID,
			Status:  check.Status(ev.Status),
			At:      ev.At,
		})
	})
}
