package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/render"
	"github.com/innovast/followup/internal/service"
)

type LifecycleService interface {
	Transition(ctx context.Context, visitorID string, target domain.VisitorStatus) (*domain.Visitor, error)
	GetByID(ctx context.Context, visitorID string) (*domain.Visitor, error)
	ListByStatus(ctx context.Context, status domain.VisitorStatus) ([]domain.Visitor, error)
}

type TemplateService interface {
	Save(ctx context.Context, tpl *domain.MessageTemplate) (*domain.MessageTemplate, error)
	Get(ctx context.Context, purpose string) (*domain.MessageTemplate, error)
}

type RecipientResolver interface {
	Resolve(ctx context.Context, ids []string) ([]string, error)
}

type Dispatcher interface {
	DispatchNow(ctx context.Context, req service.DispatchRequest) (*domain.DeliveryRecord, error)
}

// VisitorHandler exposes lifecycle transitions plus the attendance flow:
// mark returning visitors, then notify the configured lists in one send.
type VisitorHandler struct {
	lifecycle LifecycleService
	templates TemplateService
	lists     RecipientResolver
	dispatch  Dispatcher
	location  *time.Location
	now       func() time.Time
}

func NewVisitorHandler(
	lifecycle LifecycleService,
	templates TemplateService,
	lists RecipientResolver,
	dispatch Dispatcher,
	location *time.Location,
) (*VisitorHandler, error) {
	if lifecycle == nil {
		return nil, fmt.Errorf("lifecycle service is required")
	}
	if templates == nil {
		return nil, fmt.Errorf("template service is required")
	}
	if lists == nil {
		return nil, fmt.Errorf("list resolver is required")
	}
	if dispatch == nil {
		return nil, fmt.Errorf("dispatch service is required")
	}
	if location == nil {
		location = time.UTC
	}

	return &VisitorHandler{
		lifecycle: lifecycle,
		templates: templates,
		lists:     lists,
		dispatch:  dispatch,
		location:  location,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func RegisterVisitorRoutes(
	router fiber.Router,
	lifecycle LifecycleService,
	templates TemplateService,
	lists RecipientResolver,
	dispatch Dispatcher,
	location *time.Location,
) error {
	h, err := NewVisitorHandler(lifecycle, templates, lists, dispatch, location)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/visitors", h.ListVisitors)
	v1.Get("/visitors/:id", h.GetVisitor)
	v1.Post("/visitors/:id/transition", h.TransitionVisitor)
	v1.Post("/attendance", h.RecordAttendance)

	return nil
}

type transitionRequest struct {
	Status string `json:"status"`
}

type attendanceRequest struct {
	VisitorIDs []string `json:"visitorIds"`
	ListIDs    []string `json:"listIds"`
}

type visitorResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Status    string    `json:"status"`
	VisitDate time.Time `json:"visitDate"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

type attendanceFailure struct {
	VisitorID string `json:"visitorId"`
	Reason    string `json:"reason"`
}

type attendanceResponse struct {
	Transitioned []visitorResponse   `json:"transitioned"`
	Failed       []attendanceFailure `json:"failed,omitempty"`
	Outcome      string              `json:"outcome,omitempty"`
	Recipients   int                 `json:"recipients"`
	Warning      string              `json:"warning,omitempty"`
}

func (h *VisitorHandler) GetVisitor(c *fiber.Ctx) error {
	visitor, err := h.lifecycle.GetByID(c.Context(), trimmedParam(c, "id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toVisitorResponse(visitor))
}

func (h *VisitorHandler) ListVisitors(c *fiber.Ctx) error {
	status, err := domain.ParseVisitorStatusFromString(c.Query("status", domain.StatusFirstVisit.String()))
	if err != nil {
		return toHTTPError(err)
	}

	visitors, err := h.lifecycle.ListByStatus(c.Context(), status)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]visitorResponse, 0, len(visitors))
	for i := range visitors {
		responses = append(responses, toVisitorResponse(&visitors[i]))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

func (h *VisitorHandler) TransitionVisitor(c *fiber.Ctx) error {
	var req transitionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	status, err := domain.ParseVisitorStatusFromString(req.Status)
	if err != nil {
		return toHTTPError(err)
	}

	visitor, err := h.lifecycle.Transition(c.Context(), trimmedParam(c, "id"), status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toVisitorResponse(visitor))
}

// RecordAttendance transitions the selected visitors to SECOND_VISIT and
// sends the attendance summary to the selected lists. Status changes commit
// per visitor before any transport call; a failed send keeps them and comes
// back as a warning.
func (h *VisitorHandler) RecordAttendance(c *fiber.Ctx) error {
	var req attendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.VisitorIDs) == 0 {
		return toHTTPError(fmt.Errorf("%w: visitorIds is required", domain.ErrValidation))
	}

	resp := attendanceResponse{Transitioned: []visitorResponse{}}
	names := make([]string, 0, len(req.VisitorIDs))
	for _, visitorID := range req.VisitorIDs {
		visitor, err := h.lifecycle.Transition(c.Context(), visitorID, domain.StatusSecondVisit)
		if err != nil {
			resp.Failed = append(resp.Failed, attendanceFailure{
				VisitorID: visitorID,
				Reason:    err.Error(),
			})
			continue
		}
		resp.Transitioned = append(resp.Transitioned, toVisitorResponse(visitor))
		names = append(names, visitor.FullName)
	}

	if len(names) == 0 {
		return c.Status(fiber.StatusOK).JSON(resp)
	}

	tpl, err := h.templates.Get(c.Context(), domain.TemplatePurposeAttendanceUpdate)
	if err != nil {
		resp.Warning = fmt.Sprintf("statuses updated but notification skipped: %v", err)
		return c.Status(fiber.StatusOK).JSON(resp)
	}

	recipients, err := h.lists.Resolve(c.Context(), req.ListIDs)
	if err != nil {
		resp.Warning = fmt.Sprintf("statuses updated but notification skipped: %v", err)
		return c.Status(fiber.StatusOK).JSON(resp)
	}

	record, err := h.dispatch.DispatchNow(c.Context(), service.DispatchRequest{
		Event:      domain.TemplatePurposeAttendanceUpdate,
		Recipients: recipients,
		Template:   tpl,
		Context: map[string]string{
			render.PlaceholderVisitorList:    strings.Join(names, "\n"),
			render.PlaceholderAttendanceDate: h.now().In(h.location).Format(domain.DateLayout),
		},
	})
	if err != nil {
		return toHTTPError(err)
	}

	resp.Outcome = record.Outcome.String()
	resp.Recipients = record.RecipientCount
	if record.Outcome != domain.OutcomeSuccess && record.ErrorDetail != nil {
		resp.Warning = fmt.Sprintf("statuses updated but notification failed: %s", *record.ErrorDetail)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func toVisitorResponse(v *domain.Visitor) visitorResponse {
	if v == nil {
		return visitorResponse{}
	}

	return visitorResponse{
		ID:        v.ID,
		FullName:  v.FullName,
		Email:     v.Email,
		Phone:     v.Phone,
		Status:    v.Status.String(),
		VisitDate: v.VisitDate,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
