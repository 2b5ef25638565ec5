package kafka

import (
	"context"
	"time"
)

// StatusChanged is emitted by the check state machine whenever a check flips
// between up and down.
type StatusChanged struct {
	CheckID int64     `json:"check_id"`
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
}

// NotificationRecorded mirrors a finished notification row for downstream
// consumers (history views, alerting on failing channels).
type NotificationRecorded struct {
	NotificationID int64     `json:"notification_id"`
	ChannelID      int64     `json:"channel_id"`
	CheckID        int64     `json:"check_id"`
	Kind           string    `json:"kind"`
	CheckStatus    string    `json:"check_status"`
	State          string    `json:"state"`
	Error          string    `json:"error,omitempty"`
	At             time.Time `json:"at"`
}

type NotificationEventsKafka struct {
	p *Producer
}

func NewNotificationEventsKafka(p *Producer) *NotificationEventsKafka {
	return &NotificationEventsKafka{p: p}
}

func (e *NotificationEventsKafka) PublishNotificationRecorded(ctx context.Context, ev NotificationRecorded) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(ev.ChannelID), ev)
}
