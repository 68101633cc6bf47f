package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every table this package
// owns. Order matters: reservations reference customers and studios.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&customerModel{},
		&studioModel{},
		&reservationModel{},
		&notificationModel{},
	)
}
