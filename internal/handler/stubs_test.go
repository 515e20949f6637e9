package handler

import (
	"context"

	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/repository"
	"github.com/innovast/followup/internal/service"
)

type stubListService struct {
	createFn      func(ctx context.Context, name string) (*domain.DistributionList, error)
	getFn         func(ctx context.Context, id string) (*domain.DistributionList, error)
	listFn        func(ctx context.Context) ([]domain.DistributionList, error)
	deleteFn      func(ctx context.Context, id string) error
	addEmailFn    func(ctx context.Context, id, email string) (*domain.DistributionList, error)
	removeEmailFn func(ctx context.Context, id, email string) (*domain.DistributionList, error)
}

func (s *stubListService) Create(ctx context.Context, name string) (*domain.DistributionList, error) {
	if s.createFn != nil {
		return s.createFn(ctx, name)
	}
	return nil, domain.ErrValidation
}

func (s *stubListService) Get(ctx context.Context, id string) (*domain.DistributionList, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (s *stubListService) List(ctx context.Context) ([]domain.DistributionList, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubListService) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *stubListService) AddEmail(ctx context.Context, id, email string) (*domain.DistributionList, error) {
	if s.addEmailFn != nil {
		return s.addEmailFn(ctx, id, email)
	}
	return nil, domain.ErrNotFound
}

func (s *stubListService) RemoveEmail(ctx context.Context, id, email string) (*domain.DistributionList, error) {
	if s.removeEmailFn != nil {
		return s.removeEmailFn(ctx, id, email)
	}
	return nil, domain.ErrNotFound
}

type stubLifecycleService struct {
	transitionFn   func(ctx context.Context, visitorID string, target domain.VisitorStatus) (*domain.Visitor, error)
	getByIDFn      func(ctx context.Context, visitorID string) (*domain.Visitor, error)
	listByStatusFn func(ctx context.Context, status domain.VisitorStatus) ([]domain.Visitor, error)
}

func (s *stubLifecycleService) Transition(ctx context.Context, visitorID string, target domain.VisitorStatus) (*domain.Visitor, error) {
	if s.transitionFn != nil {
		return s.transitionFn(ctx, visitorID, target)
	}
	return nil, domain.ErrNotFound
}

func (s *stubLifecycleService) GetByID(ctx context.Context, visitorID string) (*domain.Visitor, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, visitorID)
	}
	return nil, domain.ErrNotFound
}

func (s *stubLifecycleService) ListByStatus(ctx context.Context, status domain.VisitorStatus) ([]domain.Visitor, error) {
	if s.listByStatusFn != nil {
		return s.listByStatusFn(ctx, status)
	}
	return nil, nil
}

type stubTemplateService struct {
	saveFn func(ctx context.Context, tpl *domain.MessageTemplate) (*domain.MessageTemplate, error)
	getFn  func(ctx context.Context, purpose string) (*domain.MessageTemplate, error)
}

func (s *stubTemplateService) Save(ctx context.Context, tpl *domain.MessageTemplate) (*domain.MessageTemplate, error) {
	if s.saveFn != nil {
		return s.saveFn(ctx, tpl)
	}
	return tpl, nil
}

func (s *stubTemplateService) Get(ctx context.Context, purpose string) (*domain.MessageTemplate, error) {
	if s.getFn != nil {
		return s.getFn(ctx, purpose)
	}
	return nil, domain.ErrNotFound
}

type stubResolver struct {
	resolveFn func(ctx context.Context, ids []string) ([]string, error)
}

func (s *stubResolver) Resolve(ctx context.Context, ids []string) ([]string, error) {
	if s.resolveFn != nil {
		return s.resolveFn(ctx, ids)
	}
	return nil, nil
}

type stubDispatcher struct {
	dispatchNowFn func(ctx context.Context, req service.DispatchRequest) (*domain.DeliveryRecord, error)
}

func (s *stubDispatcher) DispatchNow(ctx context.Context, req service.DispatchRequest) (*domain.DeliveryRecord, error) {
	if s.dispatchNowFn != nil {
		return s.dispatchNowFn(ctx, req)
	}
	return &domain.DeliveryRecord{Outcome: domain.OutcomeSuccess, RecipientCount: len(req.Recipients)}, nil
}

type stubDispatchService struct {
	dispatchNowFn func(ctx context.Context, req service.DispatchRequest) (*domain.DeliveryRecord, error)
	deliveriesFn  func(ctx context.Context, params repository.DeliveryListParams) ([]domain.DeliveryRecord, int64, error)
}

func (s *stubDispatchService) DispatchNow(ctx context.Context, req service.DispatchRequest) (*domain.DeliveryRecord, error) {
	if s.dispatchNowFn != nil {
		return s.dispatchNowFn(ctx, req)
	}
	return &domain.DeliveryRecord{Outcome: domain.OutcomeSuccess, RecipientCount: len(req.Recipients)}, nil
}

func (s *stubDispatchService) Deliveries(ctx context.Context, params repository.DeliveryListParams) ([]domain.DeliveryRecord, int64, error) {
	if s.deliveriesFn != nil {
		return s.deliveriesFn(ctx, params)
	}
	return nil, 0, nil
}

type stubScheduleService struct {
	saveConfigFn   func(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error)
	getConfigFn    func(ctx context.Context, operatorID string) (*domain.ScheduleConfig, error)
	deleteConfigFn func(ctx context.Context, operatorID string) error
	createJobFn    func(ctx context.Context, job *domain.ScheduledJob) (*domain.ScheduledJob, error)
	getJobFn       func(ctx context.Context, id string) (*domain.ScheduledJob, error)
	listJobsFn     func(ctx context.Context, params repository.JobListParams) ([]domain.ScheduledJob, int64, error)
	cancelFn       func(ctx context.Context, id string) error
}

func (s *stubScheduleService) SaveConfig(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	if s.saveConfigFn != nil {
		return s.saveConfigFn(ctx, cfg)
	}
	return cfg, nil
}

func (s *stubScheduleService) GetConfig(ctx context.Context, operatorID string) (*domain.ScheduleConfig, error) {
	if s.getConfigFn != nil {
		return s.getConfigFn(ctx, operatorID)
	}
	return nil, domain.ErrNotFound
}

func (s *stubScheduleService) DeleteConfig(ctx context.Context, operatorID string) error {
	if s.deleteConfigFn != nil {
		return s.deleteConfigFn(ctx, operatorID)
	}
	return nil
}

func (s *stubScheduleService) CreateJob(ctx context.Context, job *domain.ScheduledJob) (*domain.ScheduledJob, error) {
	if s.createJobFn != nil {
		return s.createJobFn(ctx, job)
	}
	return job, nil
}

func (s *stubScheduleService) GetJob(ctx context.Context, id string) (*domain.ScheduledJob, error) {
	if s.getJobFn != nil {
		return s.getJobFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (s *stubScheduleService) ListJobs(ctx context.Context, params repository.JobListParams) ([]domain.ScheduledJob, int64, error) {
	if s.listJobsFn != nil {
		return s.listJobsFn(ctx, params)
	}
	return nil, 0, nil
}

func (s *stubScheduleService) Cancel(ctx context.Context, id string) error {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, id)
	}
	return nil
}
