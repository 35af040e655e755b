package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	imageDomain "github.com/stayloop/service-booking/internal/domain/image"
	"github.com/stayloop/service-booking/internal/domain/sequence"
	"github.com/stayloop/service-booking/internal/platform/domain"
)

// ReplaceImagesRequest holds the full, ordered list of image URLs a property should have.
type ReplaceImagesRequest struct {
	URLs []string `json:"urls" binding:"omitempty,dive,url"`
}

// ImageDTO is the API response representation of a property image.
type ImageDTO struct {
	ImageID    int64     `json:"image_id"`
	PropertyID int64     `json:"property_id"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListImages returns a property's images in upload order.
func (s *PropertyService) ListImages(ctx context.Context, propertyID int64) ([]ImageDTO, error) {
	if _, err := s.repo.FindByID(ctx, propertyID); err != nil {
		return nil, err
	}
	imgs, err := s.images.FindByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return toImageDTOs(imgs), nil
}

// ReplaceImages makes the property's image set equal to req.URLs. Images already
// present keep their IDs; new URLs get fresh IDs from the allocator.
func (s *PropertyService) ReplaceImages(ctx context.Context, ownerID, propertyID int64, req ReplaceImagesRequest) ([]ImageDTO, error) {
	if _, err := s.getOwnedProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	for _, u := range req.URLs {
		if err := imageDomain.ValidateURL(u); err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
	}

	current, err := s.images.FindByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	remove, add := imageDomain.Diff(current, req.URLs)

	removeIDs := make([]int64, len(remove))
	for i, img := range remove {
		removeIDs[i] = img.ID()
	}
	added := make([]*imageDomain.PropertyImage, 0, len(add))
	for _, u := range add {
		id, err := s.ids.Next(ctx, sequence.CounterImage)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate image ID: %w", err)
		}
		img, err := imageDomain.NewPropertyImage(id, propertyID, u)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		added = append(added, img)
	}

	if err := s.images.Replace(ctx, propertyID, removeIDs, added); err != nil {
		return nil, err
	}

	s.logger.Info("property images replaced",
		zap.Int64("property_id", propertyID),
		zap.Int("removed", len(removeIDs)),
		zap.Int("added", len(added)),
	)
	return s.ListImages(ctx, propertyID)
}

func toImageDTOs(imgs []*imageDomain.PropertyImage) []ImageDTO {
	dtos := make([]ImageDTO, len(imgs))
	for i, img := range imgs {
		dtos[i] = ImageDTO{
			ImageID:    img.ID(),
			PropertyID: img.PropertyID(),
			URL:        img.URL(),
			CreatedAt:  img.CreatedAt(),
		}
	}
	return dtos
}
