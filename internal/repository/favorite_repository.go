package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	favoriteDomain "github.com/stayloop/service-booking/internal/domain/favorite"
)

// FavoriteModel is the GORM model for the favorites table.
type FavoriteModel struct {
	FavoriteID int64     `gorm:"column:favorite_id;primaryKey;autoIncrement:false"`
	TravelerID int64     `gorm:"not null;uniqueIndex:uq_favorites_traveler_property,priority:1"`
	PropertyID int64     `gorm:"not null;uniqueIndex:uq_favorites_traveler_property,priority:2;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (FavoriteModel) TableName() string { return "favorites" }

// GormFavoriteRepository implements FavoriteRepository using GORM.
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository creates a new GormFavoriteRepository.
func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// ListByTraveler lists a traveler's favorites, newest first.
func (r *GormFavoriteRepository) ListByTraveler(ctx context.Context, travelerID int64) ([]*favoriteDomain.Favorite, error) {
	var models []FavoriteModel
	if err := r.db.WithContext(ctx).
		Where("traveler_id = ?", travelerID).
		Order("created_at DESC, favorite_id DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	favs := make([]*favoriteDomain.Favorite, len(models))
	for i, m := range models {
		favs[i] = favoriteDomain.Reconstruct(m.FavoriteID, m.TravelerID, m.PropertyID, m.CreatedAt)
	}
	return favs, nil
}

// Add inserts f unless the traveler already saved the property.
func (r *GormFavoriteRepository) Add(ctx context.Context, f *favoriteDomain.Favorite) (bool, error) {
	model := FavoriteModel{
		FavoriteID: f.ID(),
		TravelerID: f.TravelerID(),
		PropertyID: f.PropertyID(),
		CreatedAt:  f.CreatedAt(),
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "traveler_id"}, {Name: "property_id"}},
			DoNothing: true,
		}).
		Create(&model)
	if res.Error != nil {
		return false, fmt.Errorf("failed to add favorite: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Remove deletes the traveler's favorite for propertyID.
func (r *GormFavoriteRepository) Remove(ctx context.Context, travelerID, propertyID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("traveler_id = ? AND property_id = ?", travelerID, propertyID).
		Delete(&FavoriteModel{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
