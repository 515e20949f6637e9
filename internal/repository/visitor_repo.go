package repository

import (
	"context"
	"errors"

	"github.com/innovast/followup/internal/domain"
	"gorm.io/gorm"
)

type VisitorRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Visitor, error)
	ListByStatus(ctx context.Context, status domain.VisitorStatus) ([]domain.Visitor, error)
	// UpdateStatusFrom performs the conditional write backing a lifecycle
	// transition: rows move from exactly `from` to `to`. Returns false when
	// the row changed underneath the caller (or does not exist).
	UpdateStatusFrom(ctx context.Context, id string, from, to domain.VisitorStatus) (bool, error)
}

type GormVisitorRepo struct {
	db *gorm.DB
}

func NewGormVisitorRepo(db *gorm.DB) *GormVisitorRepo {
	return &GormVisitorRepo{db: db}
}

func (r *GormVisitorRepo) GetByID(ctx context.Context, id string) (*domain.Visitor, error) {
	var model VisitorModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return visitorModelToDomain(&model), nil
}

func (r *GormVisitorRepo) ListByStatus(ctx context.Context, status domain.VisitorStatus) ([]domain.Visitor, error) {
	var models []VisitorModel
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	visitors := make([]domain.Visitor, 0, len(models))
	for i := range models {
		visitors = append(visitors, *visitorModelToDomain(&models[i]))
	}
	return visitors, nil
}

func (r *GormVisitorRepo) UpdateStatusFrom(ctx context.Context, id string, from, to domain.VisitorStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&VisitorModel{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
