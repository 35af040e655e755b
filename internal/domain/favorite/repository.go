package favorite

import (
	"context"
)

// FavoriteRepository defines persistence operations for saved properties.
type FavoriteRepository interface {
	// ListByTraveler lists a traveler's favorites, newest first.
	ListByTraveler(ctx context.Context, travelerID int64) ([]*Favorite, error)
	// Add stores f and reports whether it was inserted. A traveler/property pair that
	// already exists is left untouched.
	Add(ctx context.Context, f *Favorite) (bool, error)
	// Remove deletes the traveler's favorite for propertyID and reports whether one existed.
	Remove(ctx context.Context, travelerID, propertyID int64) (bool, error)
}
