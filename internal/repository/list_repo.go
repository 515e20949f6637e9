package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/innovast/followup/internal/domain"
	"gorm.io/gorm"
)

type ListRepository interface {
	Create(ctx context.Context, list *domain.DistributionList) error
	GetByID(ctx context.Context, id string) (*domain.DistributionList, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.DistributionList, error)
	List(ctx context.Context) ([]domain.DistributionList, error)
	// UpdateMembers writes the member set contingent on the version the
	// caller read; returns false when the version check lost.
	UpdateMembers(ctx context.Context, id string, emails []string, expectedVersion int) (bool, error)
	Delete(ctx context.Context, id string) error
}

type GormListRepo struct {
	db *gorm.DB
}

func NewGormListRepo(db *gorm.DB) *GormListRepo {
	return &GormListRepo{db: db}
}

func (r *GormListRepo) Create(ctx context.Context, list *domain.DistributionList) error {
	model, err := listModelFromDomain(list)
	if err != nil {
		return err
	}
	model.Version = 1

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolationError(err) {
			return domain.ErrDuplicate
		}
		return err
	}

	if list != nil {
		updated, err := listModelToDomain(model)
		if err != nil {
			return err
		}
		*list = *updated
	}
	return nil
}

func (r *GormListRepo) GetByID(ctx context.Context, id string) (*domain.DistributionList, error) {
	var model DistributionListModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return listModelToDomain(&model)
}

func (r *GormListRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.DistributionList, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []DistributionListModel
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	lists := make([]domain.DistributionList, 0, len(models))
	for i := range models {
		list, err := listModelToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		lists = append(lists, *list)
	}
	return lists, nil
}

func (r *GormListRepo) List(ctx context.Context) ([]domain.DistributionList, error) {
	var models []DistributionListModel
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	lists := make([]domain.DistributionList, 0, len(models))
	for i := range models {
		list, err := listModelToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		lists = append(lists, *list)
	}
	return lists, nil
}

func (r *GormListRepo) UpdateMembers(ctx context.Context, id string, emails []string, expectedVersion int) (bool, error) {
	payload, err := marshalStrings(emails)
	if err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&DistributionListModel{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"emails":  payload,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormListRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&DistributionListModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
