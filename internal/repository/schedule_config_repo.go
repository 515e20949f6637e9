package repository

import (
	"context"
	"errors"

	"github.com/innovast/followup/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScheduleConfigRepository interface {
	Upsert(ctx context.Context, cfg *domain.ScheduleConfig) error
	GetByOperator(ctx context.Context, operatorID string) (*domain.ScheduleConfig, error)
	ListEnabled(ctx context.Context) ([]domain.ScheduleConfig, error)
	// ClaimFire conditionally advances last_fired_on to fireDate; false means
	// a concurrent trigger already fired today's reminder.
	ClaimFire(ctx context.Context, operatorID string, fireDate string) (bool, error)
	Delete(ctx context.Context, operatorID string) error
}

type GormScheduleConfigRepo struct {
	db *gorm.DB
}

func NewGormScheduleConfigRepo(db *gorm.DB) *GormScheduleConfigRepo {
	return &GormScheduleConfigRepo{db: db}
}

func (r *GormScheduleConfigRepo) Upsert(ctx context.Context, cfg *domain.ScheduleConfig) error {
	model, err := scheduleConfigModelFromDomain(cfg)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "operator_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"enabled", "days", "time_of_day", "message", "list_ids", "updated_at",
			}),
		}).
		Create(model).Error
	if err != nil {
		return err
	}

	if cfg != nil {
		updated, err := scheduleConfigModelToDomain(model)
		if err != nil {
			return err
		}
		*cfg = *updated
	}
	return nil
}

func (r *GormScheduleConfigRepo) GetByOperator(ctx context.Context, operatorID string) (*domain.ScheduleConfig, error) {
	var model ScheduleConfigModel
	err := r.db.WithContext(ctx).First(&model, "operator_id = ?", operatorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return scheduleConfigModelToDomain(&model)
}

func (r *GormScheduleConfigRepo) ListEnabled(ctx context.Context) ([]domain.ScheduleConfig, error) {
	var models []ScheduleConfigModel
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	configs := make([]domain.ScheduleConfig, 0, len(models))
	for i := range models {
		cfg, err := scheduleConfigModelToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		configs = append(configs, *cfg)
	}
	return configs, nil
}

func (r *GormScheduleConfigRepo) ClaimFire(ctx context.Context, operatorID string, fireDate string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&ScheduleConfigModel{}).
		Where("operator_id = ? AND enabled = ? AND (last_fired_on IS NULL OR last_fired_on < ?)",
			operatorID, true, fireDate).
		Update("last_fired_on", fireDate)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormScheduleConfigRepo) Delete(ctx context.Context, operatorID string) error {
	result := r.db.WithContext(ctx).Delete(&ScheduleConfigModel{}, "operator_id = ?", operatorID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
