package notification

import "context"

type Repo interface {
	// Create inserts n and fills in its ID and timestamps.
	Create(ctx context.Context, n *Notification) error
	// Finish records the outcome of an attempt on an existing row.
	Finish(ctx context.Context, n *Notification) error
	ListByChannel(ctx context.Context, channelID int64, limit int) ([]*Notification, error)
}
