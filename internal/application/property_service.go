package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	imageDomain "github.com/stayloop/service-booking/internal/domain/image"
	propertyDomain "github.com/stayloop/service-booking/internal/domain/property"
	"github.com/stayloop/service-booking/internal/domain/sequence"
	"github.com/stayloop/service-booking/internal/platform/domain"
)

// PropertyRequest is the request DTO for creating or updating a property.
type PropertyRequest struct {
	Name               string `json:"name" binding:"required"`
	Type               string `json:"type"`
	Description        string `json:"description"`
	Location           string `json:"location"`
	Amenities          string `json:"amenities"`
	PricePerNightCents int64  `json:"price_per_night_cents" binding:"gte=0"`
	Bedrooms           int    `json:"bedrooms" binding:"gte=0"`
	Bathrooms          int    `json:"bathrooms" binding:"gte=0"`
	AvailabilityStart  string `json:"availability_start" binding:"omitempty,isodate"`
	AvailabilityEnd    string `json:"availability_end" binding:"omitempty,isodate"`
}

// PropertyDTO is the API response representation of a property.
type PropertyDTO struct {
	PropertyID         int64      `json:"property_id"`
	OwnerID            int64      `json:"owner_id"`
	Name               string     `json:"name"`
	Type               string     `json:"type,omitempty"`
	Description        string     `json:"description,omitempty"`
	Location           string     `json:"location,omitempty"`
	Amenities          string     `json:"amenities,omitempty"`
	PricePerNightCents int64      `json:"price_per_night_cents"`
	Bedrooms           int        `json:"bedrooms"`
	Bathrooms          int        `json:"bathrooms"`
	AvailabilityStart  *string    `json:"availability_start,omitempty"`
	AvailabilityEnd    *string    `json:"availability_end,omitempty"`
	FirstImageURL      string     `json:"first_image_url,omitempty"`
	Images             []ImageDTO `json:"images,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// PropertyService implements use cases for property listings.
type PropertyService struct {
	repo   propertyDomain.PropertyRepository
	images imageDomain.ImageRepository
	ids    sequence.Allocator
	logger *zap.Logger
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(
	repo propertyDomain.PropertyRepository,
	images imageDomain.ImageRepository,
	ids sequence.Allocator,
	logger *zap.Logger,
) *PropertyService {
	return &PropertyService{repo: repo, images: images, ids: ids, logger: logger}
}

// CreateProperty creates a new property for the given owner.
func (s *PropertyService) CreateProperty(ctx context.Context, ownerID int64, req PropertyRequest) (*PropertyDTO, error) {
	details, err := req.details()
	if err != nil {
		return nil, err
	}

	id, err := s.ids.Next(ctx, sequence.CounterProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate property ID: %w", err)
	}

	prop, err := propertyDomain.NewProperty(id, ownerID, details)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, prop); err != nil {
		s.logger.Error("failed to create property", zap.Error(err))
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	s.logger.Info("property created",
		zap.Int64("property_id", prop.ID()),
		zap.Int64("owner_id", ownerID),
	)
	result := toPropertyDTO(prop)
	return &result, nil
}

// GetProperty returns a property with its images. Anyone may read a listing.
func (s *PropertyService) GetProperty(ctx context.Context, propertyID int64) (*PropertyDTO, error) {
	prop, err := s.repo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	imgs, err := s.images.FindByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	result := toPropertyDTO(prop)
	result.Images = toImageDTOs(imgs)
	if len(imgs) > 0 {
		result.FirstImageURL = imgs[0].URL()
	}
	return &result, nil
}

// ListMyProperties returns the owner's properties, each with its first image.
func (s *PropertyService) ListMyProperties(ctx context.Context, ownerID int64) ([]PropertyDTO, error) {
	props, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get properties: %w", err)
	}

	ids := make([]int64, len(props))
	for i, p := range props {
		ids[i] = p.ID()
	}
	firstImages, err := s.images.FirstURLs(ctx, ids)
	if err != nil {
		return nil, err
	}

	dtos := make([]PropertyDTO, len(props))
	for i, p := range props {
		dtos[i] = toPropertyDTO(p)
		dtos[i].FirstImageURL = firstImages[p.ID()]
	}
	return dtos, nil
}

// UpdateProperty replaces the editable fields of an owned property.
func (s *PropertyService) UpdateProperty(ctx context.Context, ownerID, propertyID int64, req PropertyRequest) (*PropertyDTO, error) {
	prop, err := s.getOwnedProperty(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}
	details, err := req.details()
	if err != nil {
		return nil, err
	}
	if err := prop.Update(details); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, prop); err != nil {
		s.logger.Error("failed to update property", zap.Error(err))
		return nil, err
	}

	s.logger.Info("property updated", zap.Int64("property_id", propertyID))
	result := toPropertyDTO(prop)
	return &result, nil
}

// DeleteProperty removes an owned property and its images.
func (s *PropertyService) DeleteProperty(ctx context.Context, ownerID, propertyID int64) error {
	if _, err := s.getOwnedProperty(ctx, ownerID, propertyID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, propertyID); err != nil {
		s.logger.Error("failed to delete property", zap.Error(err))
		return err
	}

	s.logger.Info("property deleted", zap.Int64("property_id", propertyID))
	return nil
}

// getOwnedProperty hides properties of other owners behind a not-found error.
func (s *PropertyService) getOwnedProperty(ctx context.Context, ownerID, propertyID int64) (*propertyDomain.Property, error) {
	prop, err := s.repo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !prop.IsOwnedBy(ownerID) {
		return nil, domain.NewNotFoundError("Property", strconv.FormatInt(propertyID, 10))
	}
	return prop, nil
}

func (r PropertyRequest) details() (propertyDomain.Details, error) {
	start, err := parseOptionalDate(r.AvailabilityStart)
	if err != nil {
		return propertyDomain.Details{}, err
	}
	end, err := parseOptionalDate(r.AvailabilityEnd)
	if err != nil {
		return propertyDomain.Details{}, err
	}
	return propertyDomain.Details{
		Name:               r.Name,
		Type:               r.Type,
		Description:        r.Description,
		Location:           r.Location,
		Amenities:          r.Amenities,
		PricePerNightCents: r.PricePerNightCents,
		Bedrooms:           r.Bedrooms,
		Bathrooms:          r.Bathrooms,
		AvailabilityStart:  start,
		AvailabilityEnd:    end,
	}, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := bookingDomain.ParseDate(s)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	return &t, nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(bookingDomain.DateLayout)
	return &s
}

func toPropertyDTO(p *propertyDomain.Property) PropertyDTO {
	return PropertyDTO{
		PropertyID:         p.ID(),
		OwnerID:            p.OwnerID(),
		Name:               p.Name(),
		Type:               p.Type(),
		Description:        p.Description(),
		Location:           p.Location(),
		Amenities:          p.Amenities(),
		PricePerNightCents: p.PricePerNightCents(),
		Bedrooms:           p.Bedrooms(),
		Bathrooms:          p.Bathrooms(),
		AvailabilityStart:  formatOptionalDate(p.AvailabilityStart()),
		AvailabilityEnd:    formatOptionalDate(p.AvailabilityEnd()),
		CreatedAt:          p.CreatedAt(),
		UpdatedAt:          p.UpdatedAt(),
	}
}
