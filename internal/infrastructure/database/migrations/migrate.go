package migrations

import (
	"github.com/leadradar/lead-radar-api/internal/domain/entities"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entities.Session{},
		&entities.User{},
		&entities.VideoAnalysis{},
		&entities.Analysis{},
		&entities.Export{},
		&entities.Lead{},
	)
}
