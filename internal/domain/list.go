package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// DistributionList is a named, deduplicated set of recipient addresses.
// Version is the optimistic concurrency token guarding read-modify-write
// mutations on the member set.
type DistributionList struct {
	ID        string
	Name      string
	Emails    []string
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l *DistributionList) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("%w: list id is required", ErrValidation)
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: list name is required", ErrValidation)
	}
	seen := make(map[string]struct{}, len(l.Emails))
	for _, email := range l.Emails {
		if email != NormalizeEmail(email) {
			return fmt.Errorf("%w: email %q is not normalized", ErrValidation, email)
		}
		if _, ok := seen[email]; ok {
			return fmt.Errorf("%w: email %q appears twice", ErrDuplicate, email)
		}
		seen[email] = struct{}{}
	}
	return nil
}

// Contains reports membership of the normalized form of email.
func (l *DistributionList) Contains(email string) bool {
	normalized := NormalizeEmail(email)
	for _, member := range l.Emails {
		if member == normalized {
			return true
		}
	}
	return false
}

// NormalizeEmail lowercases and trims an address. All comparisons and stored
// members use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail rejects syntactically malformed addresses before any mutation.
func ValidateEmail(email string) error {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, email)
	}
	return nil
}
