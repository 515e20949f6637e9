package domain

import (
	"fmt"
	"strings"
	"time"
)

// Template purposes with a single current template each. Updates are
// last-writer-wins upserts keyed by purpose.
const (
	TemplatePurposeAttendanceUpdate = "attendance-update"
	TemplatePurposeReminder         = "reminder"
)

const (
	MaxTemplateSubject = 200
	MaxTemplateBody    = 2000
)

// MessageTemplate stores subject and body text carrying zero or more
// placeholders. Bodies are stored transport-agnostic; line-break conversion
// happens at render time.
type MessageTemplate struct {
	Purpose   string
	Subject   string
	Body      string
	UpdatedAt time.Time
}

func (t *MessageTemplate) Validate() error {
	if strings.TrimSpace(t.Purpose) == "" {
		return fmt.Errorf("%w: template purpose is required", ErrValidation)
	}
	if strings.TrimSpace(t.Subject) == "" {
		return fmt.Errorf("%w: template subject is required", ErrValidation)
	}
	if strings.TrimSpace(t.Body) == "" {
		return fmt.Errorf("%w: template body is required", ErrValidation)
	}
	if len([]rune(t.Subject)) > MaxTemplateSubject {
		return fmt.Errorf("%w: subject exceeds %d characters", ErrValidation, MaxTemplateSubject)
	}
	if len([]rune(t.Body)) > MaxTemplateBody {
		return fmt.Errorf("%w: body exceeds %d characters", ErrValidation, MaxTemplateBody)
	}
	return nil
}

// DefaultAttendanceTemplate is used until an operator saves their own.
func DefaultAttendanceTemplate() MessageTemplate {
	return MessageTemplate{
		Purpose: TemplatePurposeAttendanceUpdate,
		Subject: "Visitor Status Update: {{attendance_date}}",
		Body:    `The following guest(s) have returned for a second visit:\n\n{{visitor_list}}`,
	}
}
