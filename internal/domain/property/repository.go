package property

import (
	"context"
)

// PropertyRepository defines persistence operations for properties.
type PropertyRepository interface {
	FindByID(ctx context.Context, id int64) (*Property, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*Property, error)
	FindByOwnerID(ctx context.Context, ownerID int64) ([]*Property, error)
	CountByOwnerID(ctx context.Context, ownerID int64) (int64, error)
	Save(ctx context.Context, property *Property) error
	Update(ctx context.Context, property *Property) error
	Delete(ctx context.Context, id int64) error
}
