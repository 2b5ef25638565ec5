package channel

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindEmail     Kind = "email"
	KindWebhook   Kind = "webhook"
	KindSlack     Kind = "slack"
	KindHipChat   Kind = "hipchat"
	KindPagerDuty Kind = "pd"
	KindPushover  Kind = "po"
	KindTelegram  Kind = "telegram"
)

// Kinds lists every kind a channel can be configured with.
var Kinds = []Kind{
	KindEmail,
	KindWebhook,
	KindSlack,
	KindHipChat,
	KindPagerDuty,
	KindPushover,
	KindTelegram,
}

type Channel struct {
	ID            int64     `json:"id"`
	Code          uuid.UUID `json:"code"`
	UserID        int64     `json:"user_id"`
	Kind          Kind      `json:"kind"`
	Value         string    `json:"value"`
	EmailVerified bool      `json:"email_verified"`
	CheckIDs      []int64   `json:"check_ids"`
	CreatedAt     time.Time `json:"created_at"`
}
