package domain

import (
	"fmt"
	"strings"
	"time"
)

// Recurrence governs automatic regeneration of a scheduled job after a
// successful dispatch.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "NONE"
	RecurrenceDaily   Recurrence = "DAILY"
	RecurrenceWeekly  Recurrence = "WEEKLY"
	RecurrenceMonthly Recurrence = "MONTHLY"
)

func (r Recurrence) String() string { return string(r) }

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

func ParseRecurrenceFromString(s string) (Recurrence, error) {
	r := Recurrence(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: invalid recurrence %q", ErrValidation, s)
	}
	return r, nil
}

// JobStatus is the processing state of a scheduled job. PENDING is the only
// mutable state; it is left exactly once, to a terminal value. Claiming does
// not change status (see ScheduledJob.ClaimedAt).
type JobStatus string

const (
	JobStatusPending  JobStatus = "PENDING"
	JobStatusSent     JobStatus = "SENT"
	JobStatusCanceled JobStatus = "CANCELED"
	JobStatusFailed   JobStatus = "FAILED"
)

func (s JobStatus) String() string { return string(s) }

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusSent, JobStatusCanceled, JobStatusFailed:
		return true
	}
	return false
}

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSent || s == JobStatusCanceled || s == JobStatusFailed
}

func ParseJobStatusFromString(s string) (JobStatus, error) {
	st := JobStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid job status %q", ErrValidation, s)
	}
	return st, nil
}

// ScheduledJob is a one-off or recurring future-dated dispatch. A recurring
// job produces a fresh PENDING row for its next occurrence rather than
// mutating itself. ClaimedAt is set by the atomic claim that grants exactly
// one trigger invocation the right to dispatch the job.
type ScheduledJob struct {
	ID         string
	Recipients []string
	Subject    string
	Body       string
	SendAt     time.Time
	Recurrence Recurrence
	Status     JobStatus
	ClaimedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks creation invariants; now is injected so the strictly-future
// rule is testable.
func (j *ScheduledJob) Validate(now time.Time) error {
	if len(j.Recipients) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrValidation)
	}
	for _, recipient := range j.Recipients {
		if err := ValidateEmail(recipient); err != nil {
			return err
		}
	}
	if strings.TrimSpace(j.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if strings.TrimSpace(j.Body) == "" {
		return fmt.Errorf("%w: body is required", ErrValidation)
	}
	if !j.Recurrence.IsValid() {
		return fmt.Errorf("%w: invalid recurrence %q", ErrValidation, j.Recurrence)
	}
	if !j.SendAt.After(now) {
		return fmt.Errorf("%w: send_at must be in the future", ErrValidation)
	}
	return nil
}
