package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/repository"
	"github.com/innovast/followup/internal/service"
)

type DispatchService interface {
	DispatchNow(ctx context.Context, req service.DispatchRequest) (*domain.DeliveryRecord, error)
	Deliveries(ctx context.Context, params repository.DeliveryListParams) ([]domain.DeliveryRecord, int64, error)
}

// DispatchHandler exposes the immediate send endpoint and the delivery audit
// trail.
type DispatchHandler struct {
	dispatch DispatchService
	lists    RecipientResolver
}

func NewDispatchHandler(dispatch DispatchService, lists RecipientResolver) (*DispatchHandler, error) {
	if dispatch == nil {
		return nil, fmt.Errorf("dispatch service is required")
	}
	if lists == nil {
		return nil, fmt.Errorf("list resolver is required")
	}
	return &DispatchHandler{dispatch: dispatch, lists: lists}, nil
}

func RegisterDispatchRoutes(router fiber.Router, dispatch DispatchService, lists RecipientResolver) error {
	h, err := NewDispatchHandler(dispatch, lists)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/dispatch", h.DispatchNow)
	v1.Get("/deliveries", h.ListDeliveries)

	return nil
}

type dispatchRequest struct {
	ListIDs []string `json:"listIds"`
	Emails  []string `json:"emails"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

type deliveryResponse struct {
	ID                string    `json:"id"`
	JobID             *string   `json:"jobId,omitempty"`
	Event             string    `json:"event"`
	RecipientCount    int       `json:"recipientCount"`
	Outcome           string    `json:"outcome"`
	ProviderMessageID *string   `json:"providerMessageId,omitempty"`
	ErrorDetail       *string   `json:"errorDetail,omitempty"`
	AttemptedAt       time.Time `json:"attemptedAt"`
}

type listDeliveriesResponse struct {
	Data []deliveryResponse `json:"data"`
	Meta listMeta           `json:"meta"`
}

func (h *DispatchHandler) DispatchNow(c *fiber.Ctx) error {
	var req dispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Subject) == "" {
		return toHTTPError(fmt.Errorf("%w: subject is required", domain.ErrValidation))
	}
	if strings.TrimSpace(req.Body) == "" {
		return toHTTPError(fmt.Errorf("%w: body is required", domain.ErrValidation))
	}
	if len(req.ListIDs) == 0 && len(req.Emails) == 0 {
		return toHTTPError(fmt.Errorf("%w: listIds or emails is required", domain.ErrValidation))
	}

	recipients, err := h.resolveRecipients(c.Context(), req.ListIDs, req.Emails)
	if err != nil {
		return toHTTPError(err)
	}

	record, err := h.dispatch.DispatchNow(c.Context(), service.DispatchRequest{
		Event:      "immediate",
		Recipients: recipients,
		Subject:    strings.TrimSpace(req.Subject),
		Body:       req.Body,
	})
	if err != nil {
		return toHTTPError(err)
	}

	status := fiber.StatusOK
	if record.Outcome != domain.OutcomeSuccess {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(toDeliveryResponse(record))
}

// resolveRecipients merges resolved list members with explicit addresses
// into one deduplicated, sorted set.
func (h *DispatchHandler) resolveRecipients(ctx context.Context, listIDs, emails []string) ([]string, error) {
	resolved, err := h.lists.Resolve(ctx, listIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(resolved)+len(emails))
	recipients := make([]string, 0, len(resolved)+len(emails))
	for _, email := range resolved {
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		recipients = append(recipients, email)
	}
	for _, email := range emails {
		if err := domain.ValidateEmail(email); err != nil {
			return nil, err
		}
		normalized := domain.NormalizeEmail(email)
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		recipients = append(recipients, normalized)
	}

	sort.Strings(recipients)
	return recipients, nil
}

func (h *DispatchHandler) ListDeliveries(c *fiber.Ctx) error {
	params, err := parseDeliveryListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	records, total, err := h.dispatch.Deliveries(c.Context(), params)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]deliveryResponse, 0, len(records))
	for i := range records {
		responses = append(responses, toDeliveryResponse(&records[i]))
	}
	return c.Status(fiber.StatusOK).JSON(listDeliveriesResponse{
		Data: responses,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func parseDeliveryListParams(c *fiber.Ctx) (repository.DeliveryListParams, error) {
	params := repository.DeliveryListParams{
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.DeliveryListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.DeliveryListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawOutcome := strings.TrimSpace(c.Query("outcome")); rawOutcome != "" {
		outcome := domain.Outcome(strings.ToUpper(rawOutcome))
		if !outcome.IsValid() {
			return repository.DeliveryListParams{}, fmt.Errorf("%w: invalid outcome %q", domain.ErrValidation, rawOutcome)
		}
		params.Outcome = &outcome
	}

	if jobID := strings.TrimSpace(c.Query("jobId")); jobID != "" {
		params.JobID = &jobID
	}

	return params, nil
}

func toDeliveryResponse(record *domain.DeliveryRecord) deliveryResponse {
	if record == nil {
		return deliveryResponse{}
	}

	return deliveryResponse{
		ID:                record.ID,
		JobID:             record.JobID,
		Event:             record.Event,
		RecipientCount:    record.RecipientCount,
		Outcome:           record.Outcome.String(),
		ProviderMessageID: record.ProviderMessageID,
		ErrorDetail:       record.ErrorDetail,
		AttemptedAt:       record.AttemptedAt,
	}
}
