package notification

import "time"

// State is the lifecycle of a delivery attempt. A row stuck in StatePending
// belongs to an attempt that never reported back.
type State string

const (
	StatePending   State = "pending"
	StateDelivered State = "delivered"
	StateSkipped   State = "skipped"
	StateFailed    State = "failed"
)

type Notification struct {
	ID          int64     `json:"id"`
	ChannelID   int64     `json:"channel_id"`
	CheckID     int64     `json:"check_id"`
	CheckStatus string    `json:"check_status"`
	State       State     `json:"state"`
	Error       string    `json:"error"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Succeeded reports whether the attempt ended without an error text.
func (n *Notification) Succeeded() bool {
	return n.State != StatePending && n.Error == ""
}

type Clock interface {
	Now() time.Time
}
