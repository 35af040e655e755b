package property

import (
	"time"

	"github.com/stayloop/service-booking/internal/platform/domain"
)

// Property is the aggregate root for a rentable listing.
type Property struct {
	id                 int64
	ownerID            int64
	name               string
	propertyType       string
	description        string
	location           string
	amenities          string
	pricePerNightCents int64
	bedrooms           int
	bathrooms          int
	availabilityStart  *time.Time
	availabilityEnd    *time.Time
	createdAt          time.Time
	updatedAt          time.Time
}

// Details carries the owner-editable fields of a property.
type Details struct {
	Name               string
	Type               string
	Description        string
	Location           string
	Amenities          string
	PricePerNightCents int64
	Bedrooms           int
	Bathrooms          int
	AvailabilityStart  *time.Time
	AvailabilityEnd    *time.Time
}

func (d Details) validate() error {
	if d.Name == "" {
		return domain.NewValidationError("name is required")
	}
	if d.PricePerNightCents < 0 {
		return domain.NewValidationError("price_per_night_cents cannot be negative")
	}
	if d.Bedrooms < 0 || d.Bathrooms < 0 {
		return domain.NewValidationError("bedrooms and bathrooms cannot be negative")
	}
	if d.AvailabilityStart != nil && d.AvailabilityEnd != nil && d.AvailabilityEnd.Before(*d.AvailabilityStart) {
		return domain.NewValidationError("availability_end must not be before availability_start")
	}
	return nil
}

// NewProperty creates a new property owned by ownerID. The id must come from the sequence allocator.
func NewProperty(id, ownerID int64, d Details) (*Property, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("property ID must be allocated")
	}
	if ownerID <= 0 {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if err := d.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Property{id: id, ownerID: ownerID, createdAt: now, updatedAt: now}
	p.apply(d)
	return p, nil
}

// Reconstruct rebuilds a Property from persistence data (no validation).
func Reconstruct(id, ownerID int64, d Details, createdAt, updatedAt time.Time) *Property {
	p := &Property{id: id, ownerID: ownerID, createdAt: createdAt, updatedAt: updatedAt}
	p.apply(d)
	return p
}

func (p *Property) apply(d Details) {
	p.name = d.Name
	p.propertyType = d.Type
	p.description = d.Description
	p.location = d.Location
	p.amenities = d.Amenities
	p.pricePerNightCents = d.PricePerNightCents
	p.bedrooms = d.Bedrooms
	p.bathrooms = d.Bathrooms
	p.availabilityStart = d.AvailabilityStart
	p.availabilityEnd = d.AvailabilityEnd
}

// --- Getters ---

func (p *Property) ID() int64                     { return p.id }
func (p *Property) OwnerID() int64                { return p.ownerID }
func (p *Property) Name() string                  { return p.name }
func (p *Property) Type() string                  { return p.propertyType }
func (p *Property) Description() string           { return p.description }
func (p *Property) Location() string              { return p.location }
func (p *Property) Amenities() string             { return p.amenities }
func (p *Property) PricePerNightCents() int64     { return p.pricePerNightCents }
func (p *Property) Bedrooms() int                 { return p.bedrooms }
func (p *Property) Bathrooms() int                { return p.bathrooms }
func (p *Property) AvailabilityStart() *time.Time { return p.availabilityStart }
func (p *Property) AvailabilityEnd() *time.Time   { return p.availabilityEnd }
func (p *Property) CreatedAt() time.Time          { return p.createdAt }
func (p *Property) UpdatedAt() time.Time          { return p.updatedAt }

// Details returns a copy of the editable fields.
func (p *Property) Details() Details {
	return Details{
		Name:               p.name,
		Type:               p.propertyType,
		Description:        p.description,
		Location:           p.location,
		Amenities:          p.amenities,
		PricePerNightCents: p.pricePerNightCents,
		Bedrooms:           p.bedrooms,
		Bathrooms:          p.bathrooms,
		AvailabilityStart:  p.availabilityStart,
		AvailabilityEnd:    p.availabilityEnd,
	}
}

// --- Behavior ---

// IsOwnedBy checks if the property belongs to the given owner.
func (p *Property) IsOwnedBy(ownerID int64) bool {
	return p.ownerID == ownerID
}

// Update replaces the editable fields after validating them.
func (p *Property) Update(d Details) error {
	if err := d.validate(); err != nil {
		return err
	}
	p.apply(d)
	p.updatedAt = time.Now().UTC()
	return nil
}
