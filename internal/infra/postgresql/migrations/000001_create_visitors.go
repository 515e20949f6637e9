package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/innovast/followup/internal/repository"
	"gorm.io/gorm"
)

func createVisitorsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_visitors",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.VisitorModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_visitors_status ON visitors (status, created_at)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.VisitorModel{})
		},
	}
}
