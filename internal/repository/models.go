package repository

import (
	"encoding/json"
	"time"

	"github.com/innovast/followup/internal/domain"
)

// VisitorModel is the persistence model for the visitors table. The table is
// owned by the surrounding CRUD system; this subsystem only reads rows and
// mutates status.
type VisitorModel struct {
	ID        string               `gorm:"type:uuid;primaryKey"`
	FullName  string               `gorm:"type:varchar(255);not null"`
	Email     *string              `gorm:"type:varchar(255)"`
	Phone     *string              `gorm:"type:varchar(50)"`
	Status    domain.VisitorStatus `gorm:"type:varchar(20);not null"`
	VisitDate time.Time            `gorm:"type:timestamptz"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (VisitorModel) TableName() string {
	return "visitors"
}

// DistributionListModel is the persistence model for distribution_lists.
// Version backs the optimistic concurrency check on member mutations.
type DistributionListModel struct {
	ID        string `gorm:"type:varchar(120);primaryKey"`
	Name      string `gorm:"type:varchar(100);not null"`
	Emails    string `gorm:"type:jsonb;not null;default:'[]'"`
	Version   int    `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DistributionListModel) TableName() string {
	return "distribution_lists"
}

// MessageTemplateModel is the persistence model for message_templates.
type MessageTemplateModel struct {
	Purpose   string `gorm:"type:varchar(64);primaryKey"`
	Subject   string `gorm:"type:varchar(200);not null"`
	Body      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (MessageTemplateModel) TableName() string {
	return "message_templates"
}

// ScheduleConfigModel is the persistence model for schedule_configs.
type ScheduleConfigModel struct {
	OperatorID  string `gorm:"type:varchar(120);primaryKey"`
	Enabled     bool   `gorm:"not null;default:false"`
	Days        string `gorm:"type:jsonb;not null;default:'[]'"`
	TimeOfDay   string `gorm:"type:varchar(5)"`
	Message     string `gorm:"type:text"`
	ListIDs     string `gorm:"type:jsonb;not null;default:'[]'"`
	LastFiredOn string `gorm:"type:varchar(10)"`
	UpdatedAt   time.Time
}

func (ScheduleConfigModel) TableName() string {
	return "schedule_configs"
}

// ScheduledJobModel is the persistence model for scheduled_jobs.
type ScheduledJobModel struct {
	ID         string            `gorm:"type:uuid;primaryKey"`
	Recipients string            `gorm:"type:jsonb;not null"`
	Subject    string            `gorm:"type:varchar(200);not null"`
	Body       string            `gorm:"type:text;not null"`
	SendAt     time.Time         `gorm:"type:timestamptz;not null"`
	Recurrence domain.Recurrence `gorm:"type:varchar(10);not null"`
	Status     domain.JobStatus  `gorm:"type:varchar(10);not null"`
	ClaimedAt  *time.Time        `gorm:"type:timestamptz"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ScheduledJobModel) TableName() string {
	return "scheduled_jobs"
}

// DeliveryRecordModel is the persistence model for delivery_records.
type DeliveryRecordModel struct {
	ID                string         `gorm:"type:uuid;primaryKey"`
	JobID             *string        `gorm:"type:uuid"`
	Event             string         `gorm:"type:varchar(120);not null"`
	RecipientCount    int            `gorm:"not null"`
	Outcome           domain.Outcome `gorm:"type:varchar(10);not null"`
	ProviderMessageID *string        `gorm:"type:varchar(255)"`
	ErrorDetail       *string        `gorm:"type:text"`
	AttemptedAt       time.Time      `gorm:"type:timestamptz;not null"`
}

func (DeliveryRecordModel) TableName() string {
	return "delivery_records"
}

func visitorModelToDomain(m *VisitorModel) *domain.Visitor {
	if m == nil {
		return nil
	}

	return &domain.Visitor{
		ID:        m.ID,
		FullName:  m.FullName,
		Email:     m.Email,
		Phone:     m.Phone,
		Status:    m.Status,
		VisitDate: m.VisitDate,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func listModelFromDomain(l *domain.DistributionList) (*DistributionListModel, error) {
	if l == nil {
		return nil, nil
	}

	emails, err := marshalStrings(l.Emails)
	if err != nil {
		return nil, err
	}

	return &DistributionListModel{
		ID:        l.ID,
		Name:      l.Name,
		Emails:    emails,
		Version:   l.Version,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}, nil
}

func listModelToDomain(m *DistributionListModel) (*domain.DistributionList, error) {
	if m == nil {
		return nil, nil
	}

	emails, err := unmarshalStrings(m.Emails)
	if err != nil {
		return nil, err
	}

	return &domain.DistributionList{
		ID:        m.ID,
		Name:      m.Name,
		Emails:    emails,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func templateModelFromDomain(t *domain.MessageTemplate) *MessageTemplateModel {
	if t == nil {
		return nil
	}

	return &MessageTemplateModel{
		Purpose:   t.Purpose,
		Subject:   t.Subject,
		Body:      t.Body,
		UpdatedAt: t.UpdatedAt,
	}
}

func templateModelToDomain(m *MessageTemplateModel) *domain.MessageTemplate {
	if m == nil {
		return nil
	}

	return &domain.MessageTemplate{
		Purpose:   m.Purpose,
		Subject:   m.Subject,
		Body:      m.Body,
		UpdatedAt: m.UpdatedAt,
	}
}

func scheduleConfigModelFromDomain(c *domain.ScheduleConfig) (*ScheduleConfigModel, error) {
	if c == nil {
		return nil, nil
	}

	days, err := marshalStrings(c.Days)
	if err != nil {
		return nil, err
	}
	listIDs, err := marshalStrings(c.ListIDs)
	if err != nil {
		return nil, err
	}

	return &ScheduleConfigModel{
		OperatorID:  c.OperatorID,
		Enabled:     c.Enabled,
		Days:        days,
		TimeOfDay:   c.TimeOfDay,
		Message:     c.Message,
		ListIDs:     listIDs,
		LastFiredOn: c.LastFiredOn,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}

func scheduleConfigModelToDomain(m *ScheduleConfigModel) (*domain.ScheduleConfig, error) {
	if m == nil {
		return nil, nil
	}

	days, err := unmarshalStrings(m.Days)
	if err != nil {
		return nil, err
	}
	listIDs, err := unmarshalStrings(m.ListIDs)
	if err != nil {
		return nil, err
	}

	return &domain.ScheduleConfig{
		OperatorID:  m.OperatorID,
		Enabled:     m.Enabled,
		Days:        days,
		TimeOfDay:   m.TimeOfDay,
		Message:     m.Message,
		ListIDs:     listIDs,
		LastFiredOn: m.LastFiredOn,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func jobModelFromDomain(j *domain.ScheduledJob) (*ScheduledJobModel, error) {
	if j == nil {
		return nil, nil
	}

	recipients, err := marshalStrings(j.Recipients)
	if err != nil {
		return nil, err
	}

	return &ScheduledJobModel{
		ID:         j.ID,
		Recipients: recipients,
		Subject:    j.Subject,
		Body:       j.Body,
		SendAt:     j.SendAt,
		Recurrence: j.Recurrence,
		Status:     j.Status,
		ClaimedAt:  j.ClaimedAt,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}, nil
}

func jobModelToDomain(m *ScheduledJobModel) (*domain.ScheduledJob, error) {
	if m == nil {
		return nil, nil
	}

	recipients, err := unmarshalStrings(m.Recipients)
	if err != nil {
		return nil, err
	}

	return &domain.ScheduledJob{
		ID:         m.ID,
		Recipients: recipients,
		Subject:    m.Subject,
		Body:       m.Body,
		SendAt:     m.SendAt,
		Recurrence: m.Recurrence,
		Status:     m.Status,
		ClaimedAt:  m.ClaimedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

func deliveryModelFromDomain(r *domain.DeliveryRecord) *DeliveryRecordModel {
	if r == nil {
		return nil
	}

	return &DeliveryRecordModel{
		ID:                r.ID,
		JobID:             r.JobID,
		Event:             r.Event,
		RecipientCount:    r.RecipientCount,
		Outcome:           r.Outcome,
		ProviderMessageID: r.ProviderMessageID,
		ErrorDetail:       r.ErrorDetail,
		AttemptedAt:       r.AttemptedAt,
	}
}

func deliveryModelToDomain(m *DeliveryRecordModel) *domain.DeliveryRecord {
	if m == nil {
		return nil
	}

	return &domain.DeliveryRecord{
		ID:                m.ID,
		JobID:             m.JobID,
		Event:             m.Event,
		RecipientCount:    m.RecipientCount,
		Outcome:           m.Outcome,
		ProviderMessageID: m.ProviderMessageID,
		ErrorDetail:       m.ErrorDetail,
		AttemptedAt:       m.AttemptedAt,
	}
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func unmarshalStrings(payload string) ([]string, error) {
	if payload == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(payload), &values); err != nil {
		return nil, err
	}
	return values, nil
}
