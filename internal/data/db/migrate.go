package db

import (
	"gorm.io/gorm"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Session{},
		&domain.Answer{},
		&domain.AICallLog{},
	)
}
