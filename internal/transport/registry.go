package transport

import (
	"time"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
)

// Set holds one Transport per channel kind.
type Set struct {
	Email     Transport
	Webhook   Transport
	Slack     Transport
	HipChat   Transport
	PagerDuty Transport
	Pushover  Transport
	Telegram  Transport
}

type Deps struct {
	HTTP           Doer
	Mail           EmailSender
	Site           Site
	UserAgent      string
	Timeout        time.Duration
	WebhookTimeout time.Duration

	PagerDutyEndpoint string
	PushoverEndpoint  string
	PushoverAppToken  string
	TelegramAPI       string
	TelegramBotToken  string
}

func NewSet(d Deps) *Set {
	return &Set{
		Email:     NewEmail(d.Mail, d.Site),
		Webhook:   NewWebhook(d.HTTP, d.UserAgent, d.WebhookTimeout),
		Slack:     NewSlack(d.HTTP, d.UserAgent, d.Timeout, d.Site),
		HipChat:   NewHipChat(d.HTTP, d.UserAgent, d.Timeout, d.Site),
		PagerDuty: NewPagerDuty(d.HTTP, d.UserAgent, d.Timeout, d.Site, d.PagerDutyEndpoint),
		Pushover:  NewPushover(d.HTTP, d.UserAgent, d.Timeout, d.Site, d.PushoverEndpoint, d.PushoverAppToken),
		Telegram:  NewTelegram(d.HTTP, d.UserAgent, d.Timeout, d.Site, d.TelegramAPI, d.TelegramBotToken),
	}
}

// For returns the transport registered for kind. Adding a kind means adding a
// field above and a case here.
func (s *Set) For(kind channel.Kind) (Transport, bool) {
	var t Transport
	switch kind {
	case channel.KindEmail:
		t = s.Email
	case channel.KindWebhook:
		t = s.Webhook
	case channel.KindSlack:
		t = s.Slack
	case channel.KindHipChat:
		t = s.HipChat
	case channel.KindPagerDuty:
		t = s.PagerDuty
	case channel.KindPushover:
		t = s.Pushover
	case channel.KindTelegram:
		t = s.Telegram
	}
	return t, t != nil
}
