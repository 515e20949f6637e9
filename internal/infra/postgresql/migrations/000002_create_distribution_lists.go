package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/innovast/followup/internal/repository"
	"gorm.io/gorm"
)

func createDistributionListsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_distribution_lists",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.DistributionListModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.DistributionListModel{})
		},
	}
}
