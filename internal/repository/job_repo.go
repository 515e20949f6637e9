package repository

import (
	"context"
	"errors"
	"time"

	"github.com/innovast/followup/internal/domain"
	"gorm.io/gorm"
)

type JobListParams struct {
	Status   *domain.JobStatus
	Page     int
	PageSize int
}

type JobRepository interface {
	Create(ctx context.Context, job *domain.ScheduledJob) error
	GetByID(ctx context.Context, id string) (*domain.ScheduledJob, error)
	List(ctx context.Context, params JobListParams) ([]domain.ScheduledJob, int64, error)
	GetDue(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledJob, error)
	// Claim is the atomic conditional update granting exactly one caller the
	// right to dispatch a due job. Losing is a normal no-op (false, nil).
	Claim(ctx context.Context, id string, now time.Time) (bool, error)
	// MarkTerminal moves a claimed job out of PENDING. Status transitions
	// happen exactly once; a second call is a conflict.
	MarkTerminal(ctx context.Context, id string, status domain.JobStatus) error
	// Cancel succeeds only while the job is PENDING and unclaimed.
	Cancel(ctx context.Context, id string) error
}

type GormJobRepo struct {
	db *gorm.DB
}

func NewGormJobRepo(db *gorm.DB) *GormJobRepo {
	return &GormJobRepo{db: db}
}

func (r *GormJobRepo) Create(ctx context.Context, job *domain.ScheduledJob) error {
	model, err := jobModelFromDomain(job)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	if job != nil {
		created, err := jobModelToDomain(model)
		if err != nil {
			return err
		}
		*job = *created
	}
	return nil
}

func (r *GormJobRepo) GetByID(ctx context.Context, id string) (*domain.ScheduledJob, error) {
	var model ScheduledJobModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return jobModelToDomain(&model)
}

func (r *GormJobRepo) List(ctx context.Context, params JobListParams) ([]domain.ScheduledJob, int64, error) {
	query := r.db.WithContext(ctx).Model(&ScheduledJobModel{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []ScheduledJobModel
	err := query.
		Order("send_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	jobs := make([]domain.ScheduledJob, 0, len(models))
	for i := range models {
		job, err := jobModelToDomain(&models[i])
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, total, nil
}

func (r *GormJobRepo) GetDue(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledJob, error) {
	var models []ScheduledJobModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND claimed_at IS NULL AND send_at <= ?", domain.JobStatusPending, now).
		Order("send_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.ScheduledJob, 0, len(models))
	for i := range models {
		job, err := jobModelToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

func (r *GormJobRepo) Claim(ctx context.Context, id string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&ScheduledJobModel{}).
		Where("id = ? AND status = ? AND claimed_at IS NULL", id, domain.JobStatusPending).
		Update("claimed_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormJobRepo) MarkTerminal(ctx context.Context, id string, status domain.JobStatus) error {
	if !status.IsTerminal() {
		return domain.ErrValidation
	}

	result := r.db.WithContext(ctx).
		Model(&ScheduledJobModel{}).
		Where("id = ? AND status = ?", id, domain.JobStatusPending).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *GormJobRepo) Cancel(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&ScheduledJobModel{}).
		Where("id = ? AND status = ? AND claimed_at IS NULL", id, domain.JobStatusPending).
		Update("status", domain.JobStatusCanceled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Distinguish a missing job from one already claimed or terminal.
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ScheduledJobModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}
