package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/observability"
	"github.com/innovast/followup/internal/provider"
	"github.com/innovast/followup/internal/render"
	"github.com/innovast/followup/internal/repository"
	"go.uber.org/zap"
)

// successorScheduler is the slice of the schedule service the dispatch
// engine needs to regenerate recurring jobs.
type successorScheduler interface {
	CreateSuccessor(ctx context.Context, job *domain.ScheduledJob) (*domain.ScheduledJob, error)
	MarkJobTerminal(ctx context.Context, id string, status domain.JobStatus) error
}

// DispatchRequest describes one immediate send. Subject/Body carry the final
// text unless Template is set, in which case the renderer produces them from
// Template and Context.
type DispatchRequest struct {
	Event      string
	Recipients []string
	Subject    string
	Body       string
	Template   *domain.MessageTemplate
	Context    map[string]string
}

// DispatchService is the sole writer of delivery records. Every send path
// (immediate, scheduled job, recurring reminder) funnels through it.
//
// Transport failures are absorbed: the record carries the FAILURE outcome and
// callers read it from there. Only a failure to persist the record itself is
// returned as an error.
type DispatchService struct {
	deliveries repository.DeliveryRepository
	transport  provider.Provider
	renderer   *render.Renderer
	schedules  successorScheduler
	metrics    *observability.Metrics
	from       string
	now        func() time.Time
	logger     *zap.Logger
}

func NewDispatchService(
	deliveries repository.DeliveryRepository,
	transport provider.Provider,
	renderer *render.Renderer,
	schedules successorScheduler,
	metrics *observability.Metrics,
	from string,
	logger *zap.Logger,
) (*DispatchService, error) {
	if deliveries == nil {
		return nil, fmt.Errorf("delivery repository is required")
	}
	if transport == nil {
		return nil, fmt.Errorf("mail provider is required")
	}
	if renderer == nil {
		renderer = render.Default()
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DispatchService{
		deliveries: deliveries,
		transport:  transport,
		renderer:   renderer,
		schedules:  schedules,
		metrics:    metrics,
		from:       from,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}, nil
}

// DispatchNow sends one mail to the full recipient set and records the
// attempt.
func (s *DispatchService) DispatchNow(ctx context.Context, req DispatchRequest) (*domain.DeliveryRecord, error) {
	return s.dispatch(ctx, req, nil)
}

// DispatchJob sends a claimed scheduled job, moves it to its terminal
// status, and regenerates the next occurrence for recurring jobs that
// dispatched successfully.
func (s *DispatchService) DispatchJob(ctx context.Context, job *domain.ScheduledJob) (*domain.DeliveryRecord, error) {
	if job == nil {
		return nil, fmt.Errorf("%w: job is required", domain.ErrValidation)
	}

	record, err := s.dispatch(ctx, DispatchRequest{
		Event:      "scheduled-job",
		Recipients: job.Recipients,
		Subject:    job.Subject,
		Body:       job.Body,
	}, &job.ID)
	if err != nil {
		return nil, err
	}

	if record.Outcome == domain.OutcomeSuccess && job.Recurrence != domain.RecurrenceNone && s.schedules != nil {
		if _, err := s.schedules.CreateSuccessor(ctx, job); err != nil {
			s.logger.Error("failed to schedule next occurrence of recurring job",
				zap.String("jobId", job.ID),
				zap.Error(err),
			)
		}
	}

	return record, nil
}

func (s *DispatchService) dispatch(ctx context.Context, req DispatchRequest, jobID *string) (*domain.DeliveryRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	event := strings.TrimSpace(req.Event)
	if event == "" {
		return nil, fmt.Errorf("%w: dispatch event is required", domain.ErrValidation)
	}

	if len(req.Recipients) == 0 {
		s.markJob(ctx, jobID, domain.JobStatusFailed)
		detail := domain.NoRecipientsDetail
		return s.writeRecord(ctx, event, &domain.DeliveryRecord{
			JobID:       jobID,
			Event:       event,
			Outcome:     domain.OutcomeFailure,
			ErrorDetail: &detail,
			AttemptedAt: s.now(),
		})
	}

	subject, body := req.Subject, req.Body
	if req.Template != nil {
		subject, body = s.renderer.Render(*req.Template, req.Context)
	}

	start := s.now()
	result, sendErr := s.transport.Send(ctx, provider.Mail{
		From:    s.from,
		To:      req.Recipients,
		Subject: subject,
		HTML:    body,
	})
	s.metrics.ObserveSendDuration(event, time.Since(start))

	record := &domain.DeliveryRecord{
		JobID:          jobID,
		Event:          event,
		RecipientCount: len(req.Recipients),
		AttemptedAt:    s.now(),
	}

	if sendErr != nil {
		s.logger.Warn("mail transport send failed",
			zap.String("event", event),
			zap.Int("recipients", len(req.Recipients)),
			zap.Error(sendErr),
		)
		s.markJob(ctx, jobID, domain.JobStatusFailed)

		detail := sendErr.Error()
		record.Outcome = domain.OutcomeFailure
		record.ErrorDetail = &detail
		return s.writeRecord(ctx, event, record)
	}

	s.markJob(ctx, jobID, domain.JobStatusSent)

	record.Outcome = domain.OutcomeSuccess
	if result != nil && strings.TrimSpace(result.MessageID) != "" {
		messageID := result.MessageID
		record.ProviderMessageID = &messageID
	}
	return s.writeRecord(ctx, event, record)
}

func (s *DispatchService) markJob(ctx context.Context, jobID *string, status domain.JobStatus) {
	if jobID == nil || s.schedules == nil {
		return
	}
	if err := s.schedules.MarkJobTerminal(ctx, *jobID, status); err != nil {
		s.logger.Error("failed to finalize job status",
			zap.String("jobId", *jobID),
			zap.String("status", status.String()),
			zap.Error(err),
		)
	}
}

// writeRecord persists the delivery record. This write is unconditional on
// the transport outcome; losing it loses the audit trail, so its failure is
// surfaced hard.
func (s *DispatchService) writeRecord(ctx context.Context, event string, record *domain.DeliveryRecord) (*domain.DeliveryRecord, error) {
	if strings.TrimSpace(record.ID) == "" {
		record.ID = uuid.NewString()
	}

	if err := s.deliveries.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to write delivery record: %w", err)
	}

	s.metrics.IncDispatch(event, record.Outcome.String())
	return record, nil
}

// Deliveries exposes the audit trail for the API.
func (s *DispatchService) Deliveries(ctx context.Context, params repository.DeliveryListParams) ([]domain.DeliveryRecord, int64, error) {
	return s.deliveries.List(ctx, params)
}
