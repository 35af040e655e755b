package image

import (
	"context"
)

// ImageRepository defines persistence operations for property images.
type ImageRepository interface {
	// FindByPropertyID lists a property's images ordered by image ID.
	FindByPropertyID(ctx context.Context, propertyID int64) ([]*PropertyImage, error)
	// FirstURLs maps each property ID to the URL of its lowest-ID image.
	FirstURLs(ctx context.Context, propertyIDs []int64) (map[int64]string, error)
	// Replace deletes remove and inserts add in one transaction.
	Replace(ctx context.Context, propertyID int64, remove []int64, add []*PropertyImage) error
}
