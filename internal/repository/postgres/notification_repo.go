package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/hcdispatch/internal/domain/notification"
)

var _ notification.Repo = (*NotificationRepoImpl)(nil)

type NotificationRepoImpl struct{ db *DB }

func NewNotificationRepo(db *DB) *NotificationRepoImpl { return &NotificationRepoImpl{db: db} }

const (
	qNotifInsert = `
INSERT INTO notifications (channel_id, check_id, check_status, state, error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), COALESCE($6, now()))
RETURNING id, created_at, updated_at;
`
	qNotifFinish = `
UPDATE notifications
SET state = $2, error = $3, updated_at = COALESCE($4, now())
WHERE id = $1
RETURNING updated_at;
`
	qNotifByChannel = `
SELECT id, channel_id, check_id, check_status, state, error, created_at, updated_at
FROM notifications
WHERE channel_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2;
`
)

func (r *NotificationRepoImpl) Create(ctx context.Context, n *notification.Notification) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qNotifInsert,
		n.ChannelID,
		n.CheckID,
		n.CheckStatus,
		string(n.State),
		n.Error,
		nullTime(n.CreatedAt),
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return fmt.Errorf("insert notification: %w", mapErr(err))
	}
	return nil
}

func (r *NotificationRepoImpl) Finish(ctx context.Context, n *notification.Notification) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qNotifFinish,
		n.ID,
		string(n.State),
		n.Error,
		nullTime(n.UpdatedAt),
	).Scan(&n.UpdatedAt); err != nil {
		return fmt.Errorf("update notification %d: %w", n.ID, mapErr(err))
	}
	return nil
}

func (r *NotificationRepoImpl) ListByChannel(ctx context.Context, channelID int64, limit int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qNotifByChannel, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	out := make([]*notification.Notification, 0, limit)
	for rows.Next() {
		var (
			n     notification.Notification
			state string
		)
		if err := rows.Scan(&n.ID, &n.ChannelID, &n.CheckID, &n.CheckStatus, &state, &n.Error, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.State = notification.State(state)
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
