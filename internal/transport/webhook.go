package transport

import (
	"context"
	"strings"
	"time"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
)

const DefaultWebhookTimeout = 5 * time.Second

// Webhook issues a plain GET to the channel URL when a check goes down.
// Recoveries are not forwarded.
type Webhook struct {
	http httpSender
}

func NewWebhook(doer Doer, userAgent string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	return &Webhook{http: httpSender{doer: doer, userAgent: userAgent, timeout: timeout}}
}

func (w *Webhook) Notify(ctx context.Context, ch *channel.Channel, chk *check.Check) error {
	if !chk.IsDown() {
		return ErrSkipped
	}
	target := strings.TrimSpace(ch.Value)
	if target == "" {
		return Fail("Webhook URL is empty")
	}
	return w.http.get(ctx, target)
}
