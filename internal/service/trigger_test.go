package service

import (
	"context"
	"testing"
	"time"

	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/provider"
)

type triggerFixture struct {
	trigger   *Trigger
	jobs      *fakeJobRepo
	configs   *fakeScheduleConfigRepo
	transport *fakeProvider
	resolver  *fakeResolver
}

func newTriggerFixture(t *testing.T) *triggerFixture {
	t.Helper()

	f := &triggerFixture{
		jobs:      &fakeJobRepo{},
		configs:   &fakeScheduleConfigRepo{},
		transport: &fakeProvider{},
		resolver:  &fakeResolver{},
	}

	schedules, err := NewScheduleService(f.configs, f.jobs, time.UTC, nil)
	if err != nil {
		t.Fatalf("NewScheduleService() error = %v", err)
	}

	dispatch, err := NewDispatchService(&fakeDeliveryRepo{}, f.transport, nil, schedules, nil, "visitors@example.com", nil)
	if err != nil {
		t.Fatalf("NewDispatchService() error = %v", err)
	}

	trigger, err := NewTrigger(schedules, dispatch, f.resolver, nil, time.Minute, nil)
	if err != nil {
		t.Fatalf("NewTrigger() error = %v", err)
	}
	f.trigger = trigger
	return f
}

func TestTriggerScanDispatchesClaimedJob(t *testing.T) {
	t.Parallel()

	f := newTriggerFixture(t)

	dueJob := domain.ScheduledJob{
		ID:         "job-1",
		Recipients: []string{"a@example.com"},
		Subject:    "Weekly digest",
		Body:       "Content",
		Recurrence: domain.RecurrenceNone,
		Status:     domain.JobStatusPending,
	}
	f.jobs.getDueFn = func(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledJob, error) {
		return []domain.ScheduledJob{dueJob}, nil
	}

	claimedID := ""
	f.jobs.claimFn = func(ctx context.Context, id string, now time.Time) (bool, error) {
		claimedID = id
		return true, nil
	}

	var sent provider.Mail
	f.transport.sendFn = func(ctx context.Context, mail provider.Mail) (*provider.SendResult, error) {
		sent = mail
		return &provider.SendResult{MessageID: "msg-1"}, nil
	}

	if err := f.trigger.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if claimedID != "job-1" {
		t.Fatalf("claimed job = %q, want job-1", claimedID)
	}
	if sent.Subject != "Weekly digest" {
		t.Fatalf("sent subject = %q, want the job subject", sent.Subject)
	}
}

func TestTriggerScanSkipsLostJobClaim(t *testing.T) {
	t.Parallel()

	f := newTriggerFixture(t)

	f.jobs.getDueFn = func(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledJob, error) {
		return []domain.ScheduledJob{{ID: "job-1", Recipients: []string{"a@example.com"}, Subject: "s", Body: "b"}}, nil
	}
	f.jobs.claimFn = func(ctx context.Context, id string, now time.Time) (bool, error) {
		return false, nil
	}
	f.transport.sendFn = func(ctx context.Context, mail provider.Mail) (*provider.SendResult, error) {
		t.Fatal("claim loser must not dispatch")
		return nil, nil
	}

	if err := f.trigger.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
}

func TestTriggerScanFiresDueReminder(t *testing.T) {
	t.Parallel()

	f := newTriggerFixture(t)
	// 2026-03-02 is a Monday.
	f.trigger.now = func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) }

	f.configs.listEnabledFn = func(ctx context.Context) ([]domain.ScheduleConfig, error) {
		return []domain.ScheduleConfig{{
			OperatorID: "op-1",
			Enabled:    true,
			Days:       []string{"monday"},
			TimeOfDay:  "09:00",
			Message:    `Weekly follow-up\nPlease review the visitor dashboard.`,
			ListIDs:    []string{"welcome-team"},
		}}, nil
	}

	claimedDate := ""
	f.configs.claimFireFn = func(ctx context.Context, operatorID string, fireDate string) (bool, error) {
		claimedDate = fireDate
		return true, nil
	}

	var resolvedIDs []string
	f.resolver.resolveFn = func(ctx context.Context, ids []string) ([]string, error) {
		resolvedIDs = ids
		return []string{"a@example.com", "b@example.com"}, nil
	}

	var sent provider.Mail
	f.transport.sendFn = func(ctx context.Context, mail provider.Mail) (*provider.SendResult, error) {
		sent = mail
		return &provider.SendResult{MessageID: "msg-1"}, nil
	}

	if err := f.trigger.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if claimedDate != "2026-03-02" {
		t.Fatalf("claimed fire date = %q, want 2026-03-02", claimedDate)
	}
	if len(resolvedIDs) != 1 || resolvedIDs[0] != "welcome-team" {
		t.Fatalf("resolved lists = %v, want [welcome-team]", resolvedIDs)
	}
	if len(sent.To) != 2 {
		t.Fatalf("sent to %d recipients, want 2", len(sent.To))
	}
	if sent.Subject != "Weekly follow-up" {
		t.Fatalf("subject = %q, want first message line", sent.Subject)
	}
}

func TestTriggerScanSkipsLostReminderClaim(t *testing.T) {
	t.Parallel()

	f := newTriggerFixture(t)
	f.trigger.now = func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) }

	f.configs.listEnabledFn = func(ctx context.Context) ([]domain.ScheduleConfig, error) {
		return []domain.ScheduleConfig{{
			OperatorID: "op-1",
			Enabled:    true,
			Days:       []string{"monday"},
			TimeOfDay:  "09:00",
			Message:    "m",
			ListIDs:    []string{"welcome-team"},
		}}, nil
	}
	f.configs.claimFireFn = func(ctx context.Context, operatorID string, fireDate string) (bool, error) {
		return false, nil
	}
	f.transport.sendFn = func(ctx context.Context, mail provider.Mail) (*provider.SendResult, error) {
		t.Fatal("lost reminder claim must not dispatch")
		return nil, nil
	}

	if err := f.trigger.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
}

func TestTriggerStartStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	f := newTriggerFixture(t)
	f.trigger.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.trigger.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after context cancel")
	}
}
