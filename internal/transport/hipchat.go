package transport

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
)

type hipChatMessage struct {
	Message       string `json:"message"`
	Color         string `json:"color"`
	MessageFormat string `json:"message_format"`
	Notify        bool   `json:"notify"`
}

// HipChat posts a room notification to the integration URL stored on the
// channel.
type HipChat struct {
	http httpSender
	site Site
}

func NewHipChat(doer Doer, userAgent string, timeout time.Duration, site Site) *HipChat {
	return &HipChat{http: httpSender{doer: doer, userAgent: userAgent, timeout: timeout}, site: site}
}

func (h *HipChat) Notify(ctx context.Context, ch *channel.Channel, chk *check.Check) error {
	_, err := h.http.postJSON(ctx, ch.Value, h.payload(chk))
	return err
}

func (h *HipChat) payload(chk *check.Check) hipChatMessage {
	color := "green"
	if chk.IsDown() {
		color = "red"
	}
	return hipChatMessage{
		Message: fmt.Sprintf(`<a href="%s">%s</a> is %s. Last ping: %s.`,
			h.site.checkURL(chk), html.EscapeString(chk.DisplayName()), statusWord(chk), lastPing(chk)),
		Color:         color,
		MessageFormat: "html",
		Notify:        true,
	}
}
