package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/hcdispatch/internal/domain/check"
	"github.com/jackc/pgx/v5"
)

var _ check.Repo = (*CheckRepoImpl)(nil)

type CheckRepoImpl struct {
	db *DB
}

func NewCheckRepo(db *DB) *CheckRepoImpl { return &CheckRepoImpl{db: db} }

const qCheckByID = `
SELECT id, code, user_id, name, status, last_ping, n_pings, created_at
FROM checks
WHERE id = $1;
`

func scanCheck(row pgx.Row, c *check.Check) error {
	var status string
	if err := row.Scan(
		&c.ID,
		&c.Code,
		&c.UserID,
		&c.Name,
		&status,
		&c.LastPing,
		&c.NPings,
		&c.CreatedAt,
	); err != nil {
		return fmt.Errorf("scan check: %w", mapErr(err))
	}
	c.Status = check.Status(status)
	return nil
}

func (r *CheckRepoImpl) GetByID(ctx context.Context, id int64) (*check.Check, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c check.Check
	if err := scanCheck(r.db.Pool.QueryRow(ctx, qCheckByID, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}
