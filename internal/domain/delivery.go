package domain

import "time"

// Outcome classifies one dispatch attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomePartial Outcome = "PARTIAL"
	OutcomeFailure Outcome = "FAILURE"
)

func (o Outcome) String() string { return string(o) }

func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomePartial, OutcomeFailure:
		return true
	}
	return false
}

// NoRecipientsDetail marks failure records written when a dispatch resolved
// to an empty recipient set, so silent no-op sends stay observable.
const NoRecipientsDetail = "no recipients resolved"

// DeliveryRecord is one row per dispatch attempt (not per recipient).
// Append-only; written exclusively by the dispatch engine.
type DeliveryRecord struct {
	ID                string
	JobID             *string
	Event             string
	RecipientCount    int
	Outcome           Outcome
	ProviderMessageID *string
	ErrorDetail       *string
	AttemptedAt       time.Time
}
