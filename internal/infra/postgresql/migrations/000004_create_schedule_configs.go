package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/innovast/followup/internal/repository"
	"gorm.io/gorm"
)

func createScheduleConfigsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_schedule_configs",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.ScheduleConfigModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_schedule_configs_enabled ON schedule_configs (enabled) WHERE enabled`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ScheduleConfigModel{})
		},
	}
}
