package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/repository"
	"go.uber.org/zap"
)

const defaultDueJobLimit = 100

// ScheduleService manages per-operator reminder configs and future-dated
// jobs. It owns the correctness half of scheduling (what is due, who may
// dispatch it, when the next occurrence falls); the trigger owns punctuality.
type ScheduleService struct {
	configs  repository.ScheduleConfigRepository
	jobs     repository.JobRepository
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

func NewScheduleService(
	configs repository.ScheduleConfigRepository,
	jobs repository.JobRepository,
	location *time.Location,
	logger *zap.Logger,
) (*ScheduleService, error) {
	if configs == nil {
		return nil, fmt.Errorf("schedule config repository is required")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job repository is required")
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ScheduleService{
		configs:  configs,
		jobs:     jobs,
		location: location,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}, nil
}

func (s *ScheduleService) SaveConfig(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: schedule config is required", domain.ErrValidation)
	}

	cfg.OperatorID = strings.TrimSpace(cfg.OperatorID)
	normalizedDays := make([]string, 0, len(cfg.Days))
	for _, day := range cfg.Days {
		normalizedDays = append(normalizedDays, strings.ToLower(strings.TrimSpace(day)))
	}
	cfg.Days = normalizedDays

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := s.configs.Upsert(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *ScheduleService) GetConfig(ctx context.Context, operatorID string) (*domain.ScheduleConfig, error) {
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return nil, fmt.Errorf("%w: operator id is required", domain.ErrValidation)
	}
	return s.configs.GetByOperator(ctx, operatorID)
}

func (s *ScheduleService) DeleteConfig(ctx context.Context, operatorID string) error {
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return fmt.Errorf("%w: operator id is required", domain.ErrValidation)
	}
	return s.configs.Delete(ctx, operatorID)
}

// CreateJob validates and persists a future-dated job. Recipients pass
// through the same normalization rules as list members.
func (s *ScheduleService) CreateJob(ctx context.Context, job *domain.ScheduledJob) (*domain.ScheduledJob, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if job == nil {
		return nil, fmt.Errorf("%w: job is required", domain.ErrValidation)
	}

	seen := make(map[string]struct{}, len(job.Recipients))
	recipients := make([]string, 0, len(job.Recipients))
	for _, recipient := range job.Recipients {
		normalized := domain.NormalizeEmail(recipient)
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		recipients = append(recipients, normalized)
	}
	sort.Strings(recipients)
	job.Recipients = recipients

	job.ID = strings.TrimSpace(job.ID)
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Recurrence == "" {
		job.Recurrence = domain.RecurrenceNone
	}
	job.Status = domain.JobStatusPending
	job.ClaimedAt = nil

	if err := job.Validate(s.now()); err != nil {
		return nil, err
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *ScheduleService) GetJob(ctx context.Context, id string) (*domain.ScheduledJob, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: job id is required", domain.ErrValidation)
	}
	return s.jobs.GetByID(ctx, id)
}

func (s *ScheduleService) ListJobs(ctx context.Context, params repository.JobListParams) ([]domain.ScheduledJob, int64, error) {
	return s.jobs.List(ctx, params)
}

// DueJobs returns pending unclaimed jobs whose send time has passed.
func (s *ScheduleService) DueJobs(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledJob, error) {
	if limit <= 0 {
		limit = defaultDueJobLimit
	}
	return s.jobs.GetDue(ctx, now, limit)
}

// ClaimJob grants the caller exclusive dispatch rights for the job. Losing
// the race returns (false, nil); the loser simply moves on.
func (s *ScheduleService) ClaimJob(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("%w: job id is required", domain.ErrValidation)
	}
	return s.jobs.Claim(ctx, id, s.now())
}

// MarkJobTerminal moves a claimed job out of PENDING exactly once.
func (s *ScheduleService) MarkJobTerminal(ctx context.Context, id string, status domain.JobStatus) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: job id is required", domain.ErrValidation)
	}
	return s.jobs.MarkTerminal(ctx, id, status)
}

// Cancel succeeds only while the job is pending and unclaimed. A job already
// claimed by a concurrent trigger pass (or already terminal) conflicts.
func (s *ScheduleService) Cancel(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: job id is required", domain.ErrValidation)
	}
	return s.jobs.Cancel(ctx, id)
}

// CreateSuccessor persists the next occurrence of a recurring job that just
// dispatched successfully. Returns nil for non-recurring jobs.
func (s *ScheduleService) CreateSuccessor(ctx context.Context, job *domain.ScheduledJob) (*domain.ScheduledJob, error) {
	if job == nil || job.Recurrence == domain.RecurrenceNone {
		return nil, nil
	}

	next := s.NextOccurrence(job)
	if next.IsZero() {
		return nil, nil
	}

	successor := &domain.ScheduledJob{
		ID:         uuid.NewString(),
		Recipients: append([]string{}, job.Recipients...),
		Subject:    job.Subject,
		Body:       job.Body,
		SendAt:     next,
		Recurrence: job.Recurrence,
		Status:     domain.JobStatusPending,
	}
	if err := s.jobs.Create(ctx, successor); err != nil {
		return nil, fmt.Errorf("failed to create successor job: %w", err)
	}

	s.logger.Info("recurring job rescheduled",
		zap.String("jobId", job.ID),
		zap.String("successorId", successor.ID),
		zap.Time("sendAt", next),
	)
	return successor, nil
}

// NextOccurrence computes the follow-up send time for a recurring job in the
// reference location. Wall-clock components are re-derived after the calendar
// step, so a 09:00 job stays a 09:00 job across DST boundaries. Monthly
// recurrence keeps the day-of-month, clamped to the last valid day of the
// target month.
func (s *ScheduleService) NextOccurrence(job *domain.ScheduledJob) time.Time {
	if job == nil {
		return time.Time{}
	}

	local := job.SendAt.In(s.location)
	year, month, day := local.Date()
	hour, minute, sec := local.Clock()

	switch job.Recurrence {
	case domain.RecurrenceDaily:
		day++
	case domain.RecurrenceWeekly:
		day += 7
	case domain.RecurrenceMonthly:
		month++
		if day > daysInMonth(year, month) {
			day = daysInMonth(year, month)
		}
	default:
		return time.Time{}
	}

	return time.Date(year, month, day, hour, minute, sec, 0, s.location)
}

// daysInMonth handles month values outside 1..12 the same way time.Date
// does: December+1 is January of the following year.
func daysInMonth(year int, month time.Month) int {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// DueReminders returns enabled configs that should fire now: today is a
// configured day in the reference location, the configured time has passed,
// and today's reminder has not fired yet.
func (s *ScheduleService) DueReminders(ctx context.Context, now time.Time) ([]domain.ScheduleConfig, error) {
	configs, err := s.configs.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}

	due := make([]domain.ScheduleConfig, 0, len(configs))
	for i := range configs {
		if configs[i].FiresOn(now, s.location) {
			due = append(due, configs[i])
		}
	}
	return due, nil
}

// ClaimReminder conditionally advances last_fired_on to today's date, so
// each config fires at most once per calendar day even with overlapping
// trigger instances.
func (s *ScheduleService) ClaimReminder(ctx context.Context, operatorID string, now time.Time) (bool, error) {
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return false, fmt.Errorf("%w: operator id is required", domain.ErrValidation)
	}
	fireDate := now.In(s.location).Format(domain.DateLayout)
	return s.configs.ClaimFire(ctx, operatorID, fireDate)
}
