package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	propertyDomain "github.com/stayloop/service-booking/internal/domain/property"
	"github.com/stayloop/service-booking/internal/platform/domain"
)

// PropertyModel is the GORM model for the properties table.
type PropertyModel struct {
	PropertyID         int64      `gorm:"column:property_id;primaryKey;autoIncrement:false"`
	OwnerID            int64      `gorm:"not null;index"`
	Name               string     `gorm:"size:200;not null"`
	Type               string     `gorm:"size:50"`
	Description        string     `gorm:"type:text"`
	Location           string     `gorm:"size:255"`
	Amenities          string     `gorm:"type:text"`
	PricePerNightCents int64      `gorm:"not null;default:0"`
	Bedrooms           int        `gorm:"not null;default:0"`
	Bathrooms          int        `gorm:"not null;default:0"`
	AvailabilityStart  *time.Time `gorm:"type:date"`
	AvailabilityEnd    *time.Time `gorm:"type:date"`
	CreatedAt          time.Time  `gorm:"not null;index"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

// TableName sets the table name.
func (PropertyModel) TableName() string { return "properties" }

// GormPropertyRepository implements PropertyRepository using GORM.
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository.
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

func (r *GormPropertyRepository) FindByID(ctx context.Context, id int64) (*propertyDomain.Property, error) {
	var model PropertyModel
	if err := r.db.WithContext(ctx).Where("property_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Property", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find property by ID: %w", err)
	}
	return toPropertyDomain(&model), nil
}

// FindByIDs loads several properties at once. Missing IDs are absent from the result.
func (r *GormPropertyRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*propertyDomain.Property, error) {
	out := make(map[int64]*propertyDomain.Property, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var models []PropertyModel
	if err := r.db.WithContext(ctx).Where("property_id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find properties: %w", err)
	}
	for i := range models {
		out[models[i].PropertyID] = toPropertyDomain(&models[i])
	}
	return out, nil
}

func (r *GormPropertyRepository) FindByOwnerID(ctx context.Context, ownerID int64) ([]*propertyDomain.Property, error) {
	var models []PropertyModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, property_id DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list owner properties: %w", err)
	}

	props := make([]*propertyDomain.Property, len(models))
	for i := range models {
		props[i] = toPropertyDomain(&models[i])
	}
	return props, nil
}

func (r *GormPropertyRepository) CountByOwnerID(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&PropertyModel{}).Where("owner_id = ?", ownerID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count owner properties: %w", err)
	}
	return n, nil
}

func (r *GormPropertyRepository) Save(ctx context.Context, p *propertyDomain.Property) error {
	if err := r.db.WithContext(ctx).Create(toPropertyModel(p)).Error; err != nil {
		return fmt.Errorf("failed to save property: %w", err)
	}
	return nil
}

func (r *GormPropertyRepository) Update(ctx context.Context, p *propertyDomain.Property) error {
	model := toPropertyModel(p)
	res := r.db.WithContext(ctx).Model(&PropertyModel{}).
		Where("property_id = ?", model.PropertyID).
		Updates(map[string]interface{}{
			"name":                  model.Name,
			"type":                  model.Type,
			"description":           model.Description,
			"location":              model.Location,
			"amenities":             model.Amenities,
			"price_per_night_cents": model.PricePerNightCents,
			"bedrooms":              model.Bedrooms,
			"bathrooms":             model.Bathrooms,
			"availability_start":    model.AvailabilityStart,
			"availability_end":      model.AvailabilityEnd,
			"updated_at":            model.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update property: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("Property", strconv.FormatInt(model.PropertyID, 10))
	}
	return nil
}

// Delete removes the property together with its images.
func (r *GormPropertyRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&PropertyImageModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete property images: %w", err)
		}
		res := tx.Where("property_id = ?", id).Delete(&PropertyModel{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete property: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewNotFoundError("Property", strconv.FormatInt(id, 10))
		}
		return nil
	})
}

func toPropertyModel(p *propertyDomain.Property) *PropertyModel {
	return &PropertyModel{
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
		AvailabilityStart:  p.AvailabilityStart(),
		AvailabilityEnd:    p.AvailabilityEnd(),
		CreatedAt:          p.CreatedAt(),
		UpdatedAt:          p.UpdatedAt(),
	}
}

func toPropertyDomain(m *PropertyModel) *propertyDomain.Property {
	return propertyDomain.Reconstruct(m.PropertyID, m.OwnerID, propertyDomain.Details{
		Name:               m.Name,
		Type:               m.Type,
		Description:        m.Description,
		Location:           m.Location,
		Amenities:          m.Amenities,
		PricePerNightCents: m.PricePerNightCents,
		Bedrooms:           m.Bedrooms,
		Bathrooms:          m.Bathrooms,
		AvailabilityStart:  m.AvailabilityStart,
		AvailabilityEnd:    m.AvailabilityEnd,
	}, m.CreatedAt, m.UpdatedAt)
}
