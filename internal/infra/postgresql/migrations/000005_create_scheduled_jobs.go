package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/innovast/followup/internal/repository"
	"gorm.io/gorm"
)

func createScheduledJobsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000005_create_scheduled_jobs",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.ScheduledJobModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_scheduled_jobs_due ON scheduled_jobs (send_at) WHERE status = 'PENDING' AND claimed_at IS NULL`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ScheduledJobModel{})
		},
	}
}
