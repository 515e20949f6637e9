package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/observability"
	"go.uber.org/zap"
)

const (
	defaultTriggerInterval = 30 * time.Second
	defaultTriggerScanSize = 100
)

// recipientResolver is the slice of the list service the trigger needs to
// turn a reminder config's list ids into addresses.
type recipientResolver interface {
	Resolve(ctx context.Context, ids []string) ([]string, error)
}

// Trigger is the single periodic loop in the system. Each tick pulls due
// jobs and due reminders from the schedule manager, claims each, and hands
// winners to the dispatch engine. Everything it does is a pull; missing a
// tick delays work but never loses it.
type Trigger struct {
	schedules *ScheduleService
	dispatch  *DispatchService
	lists     recipientResolver
	metrics   *observability.Metrics
	interval  time.Duration
	limit     int
	now       func() time.Time
	logger    *zap.Logger
}

func NewTrigger(
	schedules *ScheduleService,
	dispatch *DispatchService,
	lists recipientResolver,
	metrics *observability.Metrics,
	interval time.Duration,
	logger *zap.Logger,
) (*Trigger, error) {
	if schedules == nil {
		return nil, fmt.Errorf("schedule service is required")
	}
	if dispatch == nil {
		return nil, fmt.Errorf("dispatch service is required")
	}
	if lists == nil {
		return nil, fmt.Errorf("list resolver is required")
	}
	if interval <= 0 {
		interval = defaultTriggerInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Trigger{
		schedules: schedules,
		dispatch:  dispatch,
		lists:     lists,
		metrics:   metrics,
		interval:  interval,
		limit:     defaultTriggerScanSize,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}, nil
}

func (t *Trigger) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run an initial scan so already-due work does not wait for the first
	// ticker edge.
	if err := t.Scan(ctx); err != nil && ctx.Err() == nil {
		t.logger.Error("trigger initial scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := t.Scan(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				t.logger.Error("trigger scan failed", zap.Error(err))
			}
		}
	}
}

// Scan runs one trigger pass: due jobs first, then due reminders.
func (t *Trigger) Scan(ctx context.Context) error {
	t.metrics.IncTriggerScan()
	now := t.now()

	if err := t.scanJobs(ctx, now); err != nil {
		return err
	}
	return t.scanReminders(ctx, now)
}

func (t *Trigger) scanJobs(ctx context.Context, now time.Time) error {
	due, err := t.schedules.DueJobs(ctx, now, t.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch due jobs: %w", err)
	}

	for i := range due {
		job := due[i]

		claimed, err := t.schedules.ClaimJob(ctx, job.ID)
		if err != nil {
			t.logger.Error("failed to claim due job",
				zap.String("jobId", job.ID),
				zap.Error(err),
			)
			continue
		}
		if !claimed {
			t.metrics.IncClaimConflict("job")
			t.logger.Debug("due job claimed elsewhere", zap.String("jobId", job.ID))
			continue
		}

		if _, err := t.dispatch.DispatchJob(ctx, &job); err != nil {
			t.logger.Error("failed to dispatch claimed job",
				zap.String("jobId", job.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (t *Trigger) scanReminders(ctx context.Context, now time.Time) error {
	due, err := t.schedules.DueReminders(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to fetch due reminders: %w", err)
	}

	for i := range due {
		cfg := due[i]

		claimed, err := t.schedules.ClaimReminder(ctx, cfg.OperatorID, now)
		if err != nil {
			t.logger.Error("failed to claim due reminder",
				zap.String("operatorId", cfg.OperatorID),
				zap.Error(err),
			)
			continue
		}
		if !claimed {
			t.metrics.IncClaimConflict("reminder")
			t.logger.Debug("reminder fired elsewhere", zap.String("operatorId", cfg.OperatorID))
			continue
		}

		recipients, err := t.lists.Resolve(ctx, cfg.ListIDs)
		if err != nil {
			t.logger.Error("failed to resolve reminder recipients",
				zap.String("operatorId", cfg.OperatorID),
				zap.Error(err),
			)
			continue
		}

		// Routing through the renderer converts the message's stored \n
		// escapes into transport line breaks.
		if _, err := t.dispatch.DispatchNow(ctx, DispatchRequest{
			Event:      "reminder",
			Recipients: recipients,
			Template: &domain.MessageTemplate{
				Purpose: domain.TemplatePurposeReminder,
				Subject: reminderSubject(cfg.Message),
				Body:    cfg.Message,
			},
		}); err != nil {
			t.logger.Error("failed to dispatch reminder",
				zap.String("operatorId", cfg.OperatorID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// reminderSubject derives a subject from the first line of the configured
// message, since reminder configs store a single text.
func reminderSubject(message string) string {
	message = strings.TrimSpace(message)
	if idx := strings.Index(message, `\n`); idx > 0 {
		message = message[:idx]
	}
	if idx := strings.IndexByte(message, '\n'); idx > 0 {
		message = message[:idx]
	}
	const maxSubject = 78
	if len(message) > maxSubject {
		return message[:maxSubject]
	}
	if message == "" {
		return "Reminder"
	}
	return message
}
