package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates every table this service owns. Development and tests
// only; deployed environments apply the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&PropertyModel{},
		&PropertyImageModel{},
		&BookingModel{},
		&SequenceModel{},
		&FavoriteModel{},
	)
}
