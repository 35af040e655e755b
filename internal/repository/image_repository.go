package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	imageDomain "github.com/stayloop/service-booking/internal/domain/image"
)

// PropertyImageModel is the GORM model for the property_images table.
type PropertyImageModel struct {
	ImageID    int64     `gorm:"column:image_id;primaryKey;autoIncrement:false"`
	PropertyID int64     `gorm:"not null;index"`
	URL        string    `gorm:"column:url;type:text;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (PropertyImageModel) TableName() string { return "property_images" }

// GormImageRepository implements ImageRepository using GORM.
type GormImageRepository struct {
	db *gorm.DB
}

// NewGormImageRepository creates a new GormImageRepository.
func NewGormImageRepository(db *gorm.DB) *GormImageRepository {
	return &GormImageRepository{db: db}
}

// FindByPropertyID lists a property's images in upload order.
func (r *GormImageRepository) FindByPropertyID(ctx context.Context, propertyID int64) ([]*imageDomain.PropertyImage, error) {
	var models []PropertyImageModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("image_id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list property images: %w", err)
	}

	images := make([]*imageDomain.PropertyImage, len(models))
	for i, m := range models {
		images[i] = imageDomain.Reconstruct(m.ImageID, m.PropertyID, m.URL, m.CreatedAt)
	}
	return images, nil
}

// FirstURLs maps each property to the URL of its lowest-ID image. Properties without
// images are absent from the result.
func (r *GormImageRepository) FirstURLs(ctx context.Context, propertyIDs []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return out, nil
	}

	var models []PropertyImageModel
	if err := r.db.WithContext(ctx).
		Where("image_id IN (?)", r.db.Model(&PropertyImageModel{}).
			Select("MIN(image_id)").
			Where("property_id IN ?", propertyIDs).
			Group("property_id")).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load first images: %w", err)
	}

	for _, m := range models {
		out[m.PropertyID] = m.URL
	}
	return out, nil
}

// Replace deletes the images in remove and inserts add in one transaction.
func (r *GormImageRepository) Replace(ctx context.Context, propertyID int64, remove []int64, add []*imageDomain.PropertyImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(remove) > 0 {
			if err := tx.Where("property_id = ? AND image_id IN ?", propertyID, remove).
				Delete(&PropertyImageModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete images: %w", err)
			}
		}
		if len(add) == 0 {
			return nil
		}

		models := make([]PropertyImageModel, len(add))
		for i, img := range add {
			models[i] = PropertyImageModel{
				ImageID:    img.ID(),
				PropertyID: propertyID,
				URL:        img.URL(),
				CreatedAt:  img.CreatedAt(),
			}
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("failed to insert images: %w", err)
		}
		return nil
	})
}
