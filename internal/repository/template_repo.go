package repository

import (
	"context"
	"errors"

	"github.com/innovast/followup/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TemplateRepository interface {
	// Upsert is last-writer-wins keyed by purpose; exactly one current
	// template exists per notification purpose.
	Upsert(ctx context.Context, tpl *domain.MessageTemplate) error
	GetByPurpose(ctx context.Context, purpose string) (*domain.MessageTemplate, error)
}

type GormTemplateRepo struct {
	db *gorm.DB
}

func NewGormTemplateRepo(db *gorm.DB) *GormTemplateRepo {
	return &GormTemplateRepo{db: db}
}

func (r *GormTemplateRepo) Upsert(ctx context.Context, tpl *domain.MessageTemplate) error {
	model := templateModelFromDomain(tpl)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "purpose"}},
			DoUpdates: clause.AssignmentColumns([]string{"subject", "body", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return err
	}

	if tpl != nil {
		*tpl = *templateModelToDomain(model)
	}
	return nil
}

func (r *GormTemplateRepo) GetByPurpose(ctx context.Context, purpose string) (*domain.MessageTemplate, error) {
	var model MessageTemplateModel
	err := r.db.WithContext(ctx).First(&model, "purpose = ?", purpose).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return templateModelToDomain(&model), nil
}
