package channel

import "context"

type Repo interface {
	GetByID(ctx context.Context, id int64) (*Channel, error)
	// ListByCheck returns every channel the check is assigned to.
	ListByCheck(ctx context.Context, checkID int64) ([]*Channel, error)
}
