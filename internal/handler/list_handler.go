package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/innovast/followup/internal/domain"
)

type ListService interface {
	Create(ctx context.Context, name string) (*domain.DistributionList, error)
	Get(ctx context.Context, id string) (*domain.DistributionList, error)
	List(ctx context.Context) ([]domain.DistributionList, error)
	Delete(ctx context.Context, id string) error
	AddEmail(ctx context.Context, id, email string) (*domain.DistributionList, error)
	RemoveEmail(ctx context.Context, id, email string) (*domain.DistributionList, error)
}

type ListHandler struct {
	service ListService
}

func NewListHandler(service ListService) (*ListHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("list service is required")
	}
	return &ListHandler{service: service}, nil
}

func RegisterListRoutes(router fiber.Router, service ListService) error {
	h, err := NewListHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/lists", h.CreateList)
	v1.Get("/lists", h.ListLists)
	v1.Get("/lists/:id", h.GetList)
	v1.Delete("/lists/:id", h.DeleteList)
	v1.Post("/lists/:id/emails", h.AddEmail)
	v1.Delete("/lists/:id/emails", h.RemoveEmail)

	return nil
}

type createListRequest struct {
	Name string `json:"name"`
}

type memberRequest struct {
	Email string `json:"email"`
}

type listResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Emails    []string  `json:"emails"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

func (h *ListHandler) CreateList(c *fiber.Ctx) error {
	var req createListRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	list, err := h.service.Create(c.Context(), req.Name)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toListResponse(list))
}

func (h *ListHandler) ListLists(c *fiber.Ctx) error {
	lists, err := h.service.List(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]listResponse, 0, len(lists))
	for i := range lists {
		responses = append(responses, toListResponse(&lists[i]))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

func (h *ListHandler) GetList(c *fiber.Ctx) error {
	list, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toListResponse(list))
}

func (h *ListHandler) DeleteList(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ListHandler) AddEmail(c *fiber.Ctx) error {
	var req memberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	list, err := h.service.AddEmail(c.Context(), c.Params("id"), req.Email)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toListResponse(list))
}

func (h *ListHandler) RemoveEmail(c *fiber.Ctx) error {
	var req memberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	list, err := h.service.RemoveEmail(c.Context(), c.Params("id"), req.Email)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toListResponse(list))
}

func toListResponse(list *domain.DistributionList) listResponse {
	if list == nil {
		return listResponse{}
	}

	emails := list.Emails
	if emails == nil {
		emails = []string{}
	}
	return listResponse{
		ID:        list.ID,
		Name:      list.Name,
		Emails:    emails,
		Version:   list.Version,
		CreatedAt: list.CreatedAt,
		UpdatedAt: list.UpdatedAt,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}

// trimmedParam strips surrounding whitespace from a route parameter.
func trimmedParam(c *fiber.Ctx, name string) string {
	return strings.TrimSpace(c.Params(name))
}
