package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100
)

type ScheduleService interface {
	SaveConfig(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error)
	GetConfig(ctx context.Context, operatorID string) (*domain.ScheduleConfig, error)
	DeleteConfig(ctx context.Context, operatorID string) error
	CreateJob(ctx context.Context, job *domain.ScheduledJob) (*domain.ScheduledJob, error)
	GetJob(ctx context.Context, id string) (*domain.ScheduledJob, error)
	ListJobs(ctx context.Context, params repository.JobListParams) ([]domain.ScheduledJob, int64, error)
	Cancel(ctx context.Context, id string) error
}

type ScheduleHandler struct {
	service ScheduleService
}

func NewScheduleHandler(service ScheduleService) (*ScheduleHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("schedule service is required")
	}
	return &ScheduleHandler{service: service}, nil
}

func RegisterScheduleRoutes(router fiber.Router, service ScheduleService) error {
	h, err := NewScheduleHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/schedule/:operatorId", h.GetConfig)
	v1.Put("/schedule/:operatorId", h.SaveConfig)
	v1.Delete("/schedule/:operatorId", h.DeleteConfig)
	v1.Post("/jobs", h.CreateJob)
	v1.Get("/jobs", h.ListJobs)
	v1.Get("/jobs/:id", h.GetJob)
	v1.Post("/jobs/:id/cancel", h.CancelJob)

	return nil
}

type scheduleConfigRequest struct {
	Enabled   bool     `json:"enabled"`
	Days      []string `json:"days"`
	TimeOfDay string   `json:"timeOfDay"`
	Message   string   `json:"message"`
	ListIDs   []string `json:"listIds"`
}

type scheduleConfigResponse struct {
	OperatorID  string    `json:"operatorId"`
	Enabled     bool      `json:"enabled"`
	Days        []string  `json:"days"`
	TimeOfDay   string    `json:"timeOfDay,omitempty"`
	Message     string    `json:"message,omitempty"`
	ListIDs     []string  `json:"listIds"`
	LastFiredOn string    `json:"lastFiredOn,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

type createJobRequest struct {
	Recipients []string  `json:"recipients"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	SendAt     time.Time `json:"sendAt"`
	Recurrence string    `json:"recurrence"`
}

type jobResponse struct {
	ID         string     `json:"id"`
	Recipients []string   `json:"recipients"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	SendAt     time.Time  `json:"sendAt"`
	Recurrence string     `json:"recurrence"`
	Status     string     `json:"status"`
	ClaimedAt  *time.Time `json:"claimedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt,omitempty"`
}

type listJobsResponse struct {
	Data []jobResponse `json:"data"`
	Meta listMeta      `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

func (h *ScheduleHandler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.service.GetConfig(c.Context(), trimmedParam(c, "operatorId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toScheduleConfigResponse(cfg))
}

func (h *ScheduleHandler) SaveConfig(c *fiber.Ctx) error {
	var req scheduleConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cfg, err := h.service.SaveConfig(c.Context(), &domain.ScheduleConfig{
		OperatorID: trimmedParam(c, "operatorId"),
		Enabled:    req.Enabled,
		Days:       req.Days,
		TimeOfDay:  strings.TrimSpace(req.TimeOfDay),
		Message:    req.Message,
		ListIDs:    req.ListIDs,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toScheduleConfigResponse(cfg))
}

func (h *ScheduleHandler) DeleteConfig(c *fiber.Ctx) error {
	if err := h.service.DeleteConfig(c.Context(), trimmedParam(c, "operatorId")); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ScheduleHandler) CreateJob(c *fiber.Ctx) error {
	var req createJobRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	recurrence := domain.RecurrenceNone
	if strings.TrimSpace(req.Recurrence) != "" {
		parsed, err := domain.ParseRecurrenceFromString(req.Recurrence)
		if err != nil {
			return toHTTPError(err)
		}
		recurrence = parsed
	}

	job, err := h.service.CreateJob(c.Context(), &domain.ScheduledJob{
		Recipients: req.Recipients,
		Subject:    strings.TrimSpace(req.Subject),
		Body:       req.Body,
		SendAt:     req.SendAt,
		Recurrence: recurrence,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(toJobResponse(job))
}

func (h *ScheduleHandler) GetJob(c *fiber.Ctx) error {
	job, err := h.service.GetJob(c.Context(), trimmedParam(c, "id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toJobResponse(job))
}

func (h *ScheduleHandler) ListJobs(c *fiber.Ctx) error {
	params, err := parseJobListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	jobs, total, err := h.service.ListJobs(c.Context(), params)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]jobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, toJobResponse(&jobs[i]))
	}
	return c.Status(fiber.StatusOK).JSON(listJobsResponse{
		Data: responses,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func (h *ScheduleHandler) CancelJob(c *fiber.Ctx) error {
	id := trimmedParam(c, "id")
	if err := h.service.Cancel(c.Context(), id); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"jobId":  id,
		"status": domain.JobStatusCanceled.String(),
	})
}

func parseJobListParams(c *fiber.Ctx) (repository.JobListParams, error) {
	params := repository.JobListParams{
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.JobListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.JobListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseJobStatusFromString(rawStatus)
		if err != nil {
			return repository.JobListParams{}, err
		}
		params.Status = &status
	}

	return params, nil
}

func toScheduleConfigResponse(cfg *domain.ScheduleConfig) scheduleConfigResponse {
	if cfg == nil {
		return scheduleConfigResponse{}
	}

	days := cfg.Days
	if days == nil {
		days = []string{}
	}
	listIDs := cfg.ListIDs
	if listIDs == nil {
		listIDs = []string{}
	}
	return scheduleConfigResponse{
		OperatorID:  cfg.OperatorID,
		Enabled:     cfg.Enabled,
		Days:        days,
		TimeOfDay:   cfg.TimeOfDay,
		Message:     cfg.Message,
		ListIDs:     listIDs,
		LastFiredOn: cfg.LastFiredOn,
		UpdatedAt:   cfg.UpdatedAt,
	}
}

func toJobResponse(job *domain.ScheduledJob) jobResponse {
	if job == nil {
		return jobResponse{}
	}

	recipients := job.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	return jobResponse{
		ID:         job.ID,
		Recipients: recipients,
		Subject:    job.Subject,
		Body:       job.Body,
		SendAt:     job.SendAt,
		Recurrence: job.Recurrence.String(),
		Status:     job.Status.String(),
		ClaimedAt:  job.ClaimedAt,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
	}
}
