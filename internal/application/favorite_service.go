package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	favoriteDomain "github.com/stayloop/service-booking/internal/domain/favorite"
	imageDomain "github.com/stayloop/service-booking/internal/domain/image"
	propertyDomain "github.com/stayloop/service-booking/internal/domain/property"
	"github.com/stayloop/service-booking/internal/domain/sequence"
)

// Favorite toggle outcomes.
const (
	MsgFavoriteAdded   = "Favorite added"
	MsgFavoriteRemoved = "Favorite removed"
)

// ToggleFavoriteRequest is the body of POST /api/v1/favorites.
type ToggleFavoriteRequest struct {
	PropertyID int64 `json:"property_id" binding:"required,gt=0"`
}

// FavoriteDTO is a saved property as shown in the traveler's favorites list.
type FavoriteDTO struct {
	PropertyID    int64   `json:"property_id"`
	Name          string  `json:"name"`
	Location      string  `json:"location,omitempty"`
	PricePerNight float64 `json:"price_per_night"`
	Bedrooms      int     `json:"bedrooms"`
	Bathrooms     int     `json:"bathrooms"`
	Amenities     string  `json:"amenities,omitempty"`
	Description   string  `json:"description,omitempty"`
	FirstImageURL string  `json:"first_image_url,omitempty"`
}

// FavoriteService implements the traveler's saved-property list.
type FavoriteService struct {
	repo       favoriteDomain.FavoriteRepository
	properties propertyDomain.PropertyRepository
	images     imageDomain.ImageRepository
	ids        sequence.Allocator
	logger     *zap.Logger
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(
	repo favoriteDomain.FavoriteRepository,
	properties propertyDomain.PropertyRepository,
	images imageDomain.ImageRepository,
	ids sequence.Allocator,
	logger *zap.Logger,
) *FavoriteService {
	return &FavoriteService{repo: repo, properties: properties, images: images, ids: ids, logger: logger}
}

// ToggleFavorite removes the property from the traveler's favorites when it is saved,
// and saves it otherwise. Saving requires the property to exist.
func (s *FavoriteService) ToggleFavorite(ctx context.Context, travelerID int64, req ToggleFavoriteRequest) (*MessageResult, error) {
	removed, err := s.repo.Remove(ctx, travelerID, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if removed {
		s.logger.Info("favorite removed",
			zap.Int64("traveler_id", travelerID),
			zap.Int64("property_id", req.PropertyID),
		)
		return &MessageResult{Message: MsgFavoriteRemoved}, nil
	}

	if _, err := s.properties.FindByID(ctx, req.PropertyID); err != nil {
		return nil, err
	}

	id, err := s.ids.Next(ctx, sequence.CounterFavorite)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate favorite ID: %w", err)
	}
	fav, err := favoriteDomain.NewFavorite(id, travelerID, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Add(ctx, fav); err != nil {
		return nil, err
	}

	s.logger.Info("favorite added",
		zap.Int64("favorite_id", id),
		zap.Int64("traveler_id", travelerID),
		zap.Int64("property_id", req.PropertyID),
	)
	return &MessageResult{Message: MsgFavoriteAdded}, nil
}

// ListFavorites returns the traveler's saved properties, newest first. Favorites whose
// property no longer exists are skipped.
func (s *FavoriteService) ListFavorites(ctx context.Context, travelerID int64) ([]FavoriteDTO, error) {
	favs, err := s.repo.ListByTraveler(ctx, travelerID)
	if err != nil {
		return nil, err
	}
	out := make([]FavoriteDTO, 0, len(favs))
	if len(favs) == 0 {
		return out, nil
	}

	ids := make([]int64, len(favs))
	for i, f := range favs {
		ids[i] = f.PropertyID()
	}
	props, err := s.properties.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	firstImages, err := s.images.FirstURLs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, f := range favs {
		p, ok := props[f.PropertyID()]
		if !ok {
			continue
		}
		out = append(out, FavoriteDTO{
			PropertyID:    p.ID(),
			Name:          p.Name(),
			Location:      p.Location(),
			PricePerNight: bookingDomain.Amount(p.PricePerNightCents()),
			Bedrooms:      p.Bedrooms(),
			Bathrooms:     p.Bathrooms(),
			Amenities:     p.Amenities(),
			Description:   p.Description(),
			FirstImageURL: firstImages[p.ID()],
		})
	}
	return out, nil
}
