package db

import (
	"moviedb/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	// Parents before children so FK constraints resolve on first migrate.
	return db.Gorm.AutoMigrate(
		&models.Movie{},
		&models.Genre{},
		&models.MovieGenre{},
		&models.Image{},
		&models.Person{},
		&models.MovieCredit{},
		&models.SeedState{},
	)
}
