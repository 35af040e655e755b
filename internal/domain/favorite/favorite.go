package favorite

import (
	"time"

	"github.com/stayloop/service-booking/internal/platform/domain"
)

// Favorite records that a traveler saved a property. A traveler holds at most one
// favorite per property.
type Favorite struct {
	id         int64
	travelerID int64
	propertyID int64
	createdAt  time.Time
}

// NewFavorite creates a favorite. The id must come from the sequence allocator.
func NewFavorite(id, travelerID, propertyID int64) (*Favorite, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("favorite ID must be allocated")
	}
	if travelerID <= 0 || propertyID <= 0 {
		return nil, domain.NewValidationError("traveler and property are required")
	}
	return &Favorite{
		id:         id,
		travelerID: travelerID,
		propertyID: propertyID,
		createdAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Favorite from persistence.
func Reconstruct(id, travelerID, propertyID int64, createdAt time.Time) *Favorite {
	return &Favorite{id: id, travelerID: travelerID, propertyID: propertyID, createdAt: createdAt}
}

func (f *Favorite) ID() int64            { return f.id }
func (f *Favorite) TravelerID() int64    { return f.travelerID }
func (f *Favorite) PropertyID() int64    { return f.propertyID }
func (f *Favorite) CreatedAt() time.Time { return f.createdAt }
