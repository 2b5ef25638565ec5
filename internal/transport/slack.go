package transport

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
)

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Fallback string       `json:"fallback"`
	Color    string       `json:"color"`
	Text     string       `json:"text"`
	MrkdwnIn []string     `json:"mrkdwn_in"`
	Fields   []slackField `json:"fields"`
	Footer   string       `json:"footer"`
	Ts       int64        `json:"ts"`
}

type slackMessage struct {
	Username    string            `json:"username"`
	Attachments []slackAttachment `json:"attachments"`
}

// Slack posts an attachment to an incoming-webhook URL.
type Slack struct {
	http httpSender
	site Site
	now  func() time.Time
}

func NewSlack(doer Doer, userAgent string, timeout time.Duration, site Site) *Slack {
	return &Slack{
		http: httpSender{doer: doer, userAgent: userAgent, timeout: timeout},
		site: site,
		now:  time.Now,
	}
}

func (s *Slack) Notify(ctx context.Context, ch *channel.Channel, chk *check.Check) error {
	_, err := s.http.postJSON(ctx, ch.Value, s.payload(chk))
	return err
}

func (s *Slack) payload(chk *check.Check) slackMessage {
	color := "good"
	if chk.IsDown() {
		color = "danger"
	}
	text := fmt.Sprintf("“%s” is %s.", chk.DisplayName(), statusWord(chk))
	return slackMessage{
		Username: s.site.Name,
		Attachments: []slackAttachment{{
			Fallback: text,
			Color:    color,
			Text:     fmt.Sprintf("<%s|%s>", s.site.checkURL(chk), text),
			MrkdwnIn: []string{"fields"},
			Fields: []slackField{
				{Title: "Last Ping", Value: lastPing(chk), Short: true},
				{Title: "Total Pings", Value: strconv.Itoa(chk.NPings), Short: true},
			},
			Footer: s.site.Name,
			Ts:     s.now().Unix(),
		}},
	}
}
