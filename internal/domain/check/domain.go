package check

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNew    Status = "new"
	StatusUp     Status = "up"
	StatusDown   Status = "down"
	StatusGrace  Status = "grace"
	StatusPaused Status = "paused"
)

type Check struct {
	ID        int64      `json:"id"`
	Code      uuid.UUID  `json:"code"`
	UserID    int64      `json:"user_id"`
	Name      string     `json:"name"`
	Status    Status     `json:"status"`
	LastPing  *time.Time `json:"last_ping"`
	NPings    int        `json:"n_pings"`
	CreatedAt time.Time  `json:"created_at"`
}

// DisplayName is the check name, or its code for unnamed checks.
func (c *Check) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Code.String()
}

func (c *Check) IsDown() bool { return c.Status == StatusDown }
