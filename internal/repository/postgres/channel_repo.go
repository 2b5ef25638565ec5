package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/jackc/pgx/v5"
)

var _ channel.Repo = (*ChannelRepoImpl)(nil)

type ChannelRepoImpl struct {
	db *DB
}

func NewChannelRepo(db *DB) *ChannelRepoImpl { return &ChannelRepoImpl{db: db} }

const (
	channelColumns = `
ch.id, ch.code, ch.user_id, ch.kind, ch.value, ch.email_verified, ch.created_at,
ARRAY(SELECT cc.check_id FROM channel_checks cc WHERE cc.channel_id = ch.id ORDER BY cc.check_id)`

	qChannelByID = `
SELECT` + channelColumns + `
FROM channels ch
WHERE ch.id = $1;
`

	qChannelsByCheck = `
SELECT` + channelColumns + `
FROM channels ch
JOIN channel_checks link ON link.channel_id = ch.id
WHERE link.check_id = $1
ORDER BY ch.id;
`
)

func scanChannel(row pgx.Row, c *channel.Channel) error {
	var kind string
	if err := row.Scan(
		&c.ID,
		&c.Code,
		&c.UserID,
		&kind,
		&c.Value,
		&c.EmailVerified,
		&c.CreatedAt,
		&c.CheckIDs,
	); err != nil {
		return fmt.Errorf("scan channel: %w", mapErr(err))
	}
	c.Kind = channel.Kind(kind)
	return nil
}

func (r *ChannelRepoImpl) GetByID(ctx context.Context, id int64) (*channel.Channel, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c channel.Channel
	if err := scanChannel(r.db.Pool.QueryRow(ctx, qChannelByID, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ChannelRepoImpl) ListByCheck(ctx context.Context, checkID int64) ([]*channel.Channel, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qChannelsByCheck, checkID)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	var out []*channel.Channel
	for rows.Next() {
		var c channel.Channel
		if err := scanChannel(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
