package service

import (
	"context"
	"time"

	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/provider"
	"github.com/innovast/followup/internal/repository"
)

type fakeVisitorRepo struct {
	getByIDFn          func(ctx context.Context, id string) (*domain.Visitor, error)
	listByStatusFn     func(ctx context.Context, status domain.VisitorStatus) ([]domain.Visitor, error)
	updateStatusFromFn func(ctx context.Context, id string, from, to domain.VisitorStatus) (bool, error)
}

func (f *fakeVisitorRepo) GetByID(ctx context.Context, id string) (*domain.Visitor, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVisitorRepo) ListByStatus(ctx context.Context, status domain.VisitorStatus) ([]domain.Visitor, error) {
	if f.listByStatusFn != nil {
		return f.listByStatusFn(ctx, status)
	}
	return nil, nil
}

func (f *fakeVisitorRepo) UpdateStatusFrom(ctx context.Context, id string, from, to domain.VisitorStatus) (bool, error) {
	if f.updateStatusFromFn != nil {
		return f.updateStatusFromFn(ctx, id, from, to)
	}
	return true, nil
}

type fakeListRepo struct {
	createFn        func(ctx context.Context, list *domain.DistributionList) error
	getByIDFn       func(ctx context.Context, id string) (*domain.DistributionList, error)
	getByIDsFn      func(ctx context.Context, ids []string) ([]domain.DistributionList, error)
	listFn          func(ctx context.Context) ([]domain.DistributionList, error)
	updateMembersFn func(ctx context.Context, id string, emails []string, expectedVersion int) (bool, error)
	deleteFn        func(ctx context.Context, id string) error
}

func (f *fakeListRepo) Create(ctx context.Context, list *domain.DistributionList) error {
	if f.createFn != nil {
		return f.createFn(ctx, list)
	}
	return nil
}

func (f *fakeListRepo) GetByID(ctx context.Context, id string) (*domain.DistributionList, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeListRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.DistributionList, error) {
	if f.getByIDsFn != nil {
		return f.getByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (f *fakeListRepo) List(ctx context.Context) ([]domain.DistributionList, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeListRepo) UpdateMembers(ctx context.Context, id string, emails []string, expectedVersion int) (bool, error) {
	if f.updateMembersFn != nil {
		return f.updateMembersFn(ctx, id, emails, expectedVersion)
	}
	return true, nil
}

func (f *fakeListRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeJobRepo struct {
	createFn       func(ctx context.Context, job *domain.ScheduledJob) error
	getByIDFn      func(ctx context.Context, id string) (*domain.ScheduledJob, error)
	listFn         func(ctx context.Context, params repository.JobListParams) ([]domain.ScheduledJob, int64, error)
	getDueFn       func(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledJob, error)
	claimFn        func(ctx context.Context, id string, now time.Time) (bool, error)
	markTerminalFn func(ctx context.Context, id string, status domain.JobStatus) error
	cancelFn       func(ctx context.Context, id string) error
}

func (f *fakeJobRepo) Create(ctx context.Context, job *domain.ScheduledJob) error {
	if f.createFn != nil {
		return f.createFn(ctx, job)
	}
	return nil
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id string) (*domain.ScheduledJob, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeJobRepo) List(ctx context.Context, params repository.JobListParams) ([]domain.ScheduledJob, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, 0, nil
}

func (f *fakeJobRepo) GetDue(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledJob, error) {
	if f.getDueFn != nil {
		return f.getDueFn(ctx, now, limit)
	}
	return nil, nil
}

func (f *fakeJobRepo) Claim(ctx context.Context, id string, now time.Time) (bool, error) {
	if f.claimFn != nil {
		return f.claimFn(ctx, id, now)
	}
	return true, nil
}

func (f *fakeJobRepo) MarkTerminal(ctx context.Context, id string, status domain.JobStatus) error {
	if f.markTerminalFn != nil {
		return f.markTerminalFn(ctx, id, status)
	}
	return nil
}

func (f *fakeJobRepo) Cancel(ctx context.Context, id string) error {
	if f.cancelFn != nil {
		return f.cancelFn(ctx, id)
	}
	return nil
}

type fakeScheduleConfigRepo struct {
	upsertFn        func(ctx context.Context, cfg *domain.ScheduleConfig) error
	getByOperatorFn func(ctx context.Context, operatorID string) (*domain.ScheduleConfig, error)
	listEnabledFn   func(ctx context.Context) ([]domain.ScheduleConfig, error)
	claimFireFn     func(ctx context.Context, operatorID string, fireDate string) (bool, error)
	deleteFn        func(ctx context.Context, operatorID string) error
}

func (f *fakeScheduleConfigRepo) Upsert(ctx context.Context, cfg *domain.ScheduleConfig) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, cfg)
	}
	return nil
}

func (f *fakeScheduleConfigRepo) GetByOperator(ctx context.Context, operatorID string) (*domain.ScheduleConfig, error) {
	if f.getByOperatorFn != nil {
		return f.getByOperatorFn(ctx, operatorID)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeScheduleConfigRepo) ListEnabled(ctx context.Context) ([]domain.ScheduleConfig, error) {
	if f.listEnabledFn != nil {
		return f.listEnabledFn(ctx)
	}
	return nil, nil
}

func (f *fakeScheduleConfigRepo) ClaimFire(ctx context.Context, operatorID string, fireDate string) (bool, error) {
	if f.claimFireFn != nil {
		return f.claimFireFn(ctx, operatorID, fireDate)
	}
	return true, nil
}

func (f *fakeScheduleConfigRepo) Delete(ctx context.Context, operatorID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, operatorID)
	}
	return nil
}

type fakeDeliveryRepo struct {
	createFn func(ctx context.Context, record *domain.DeliveryRecord) error
	listFn   func(ctx context.Context, params repository.DeliveryListParams) ([]domain.DeliveryRecord, int64, error)
}

func (f *fakeDeliveryRepo) Create(ctx context.Context, record *domain.DeliveryRecord) error {
	if f.createFn != nil {
		return f.createFn(ctx, record)
	}
	return nil
}

func (f *fakeDeliveryRepo) List(ctx context.Context, params repository.DeliveryListParams) ([]domain.DeliveryRecord, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, 0, nil
}

type fakeTemplateRepo struct {
	upsertFn       func(ctx context.Context, tpl *domain.MessageTemplate) error
	getByPurposeFn func(ctx context.Context, purpose string) (*domain.MessageTemplate, error)
}

func (f *fakeTemplateRepo) Upsert(ctx context.Context, tpl *domain.MessageTemplate) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, tpl)
	}
	return nil
}

func (f *fakeTemplateRepo) GetByPurpose(ctx context.Context, purpose string) (*domain.MessageTemplate, error) {
	if f.getByPurposeFn != nil {
		return f.getByPurposeFn(ctx, purpose)
	}
	return nil, domain.ErrNotFound
}

type fakeProvider struct {
	sendFn func(ctx context.Context, mail provider.Mail) (*provider.SendResult, error)
}

func (f *fakeProvider) Send(ctx context.Context, mail provider.Mail) (*provider.SendResult, error) {
	if f.sendFn != nil {
		return f.sendFn(ctx, mail)
	}
	return &provider.SendResult{MessageID: "fake-message-id"}, nil
}

type fakeLocker struct {
	acquireFn func(ctx context.Context, key string) (func(), error)
}

func (f *fakeLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if f.acquireFn != nil {
		return f.acquireFn(ctx, key)
	}
	return func() {}, nil
}

type fakeResolver struct {
	resolveFn func(ctx context.Context, ids []string) ([]string, error)
}

func (f *fakeResolver) Resolve(ctx context.Context, ids []string) ([]string, error) {
	if f.resolveFn != nil {
		return f.resolveFn(ctx, ids)
	}
	return nil, nil
}

type fakeSuccessorScheduler struct {
	createSuccessorFn func(ctx context.Context, job *domain.ScheduledJob) (*domain.ScheduledJob, error)
	markTerminalFn    func(ctx context.Context, id string, status domain.JobStatus) error
}

func (f *fakeSuccessorScheduler) CreateSuccessor(ctx context.Context, job *domain.ScheduledJob) (*domain.ScheduledJob, error) {
	if f.createSuccessorFn != nil {
		return f.createSuccessorFn(ctx, job)
	}
	return nil, nil
}

func (f *fakeSuccessorScheduler) MarkJobTerminal(ctx context.Context, id string, status domain.JobStatus) error {
	if f.markTerminalFn != nil {
		return f.markTerminalFn(ctx, id, status)
	}
	return nil
}
