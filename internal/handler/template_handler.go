package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/innovast/followup/internal/domain"
)

type TemplateHandler struct {
	service TemplateService
}

func NewTemplateHandler(service TemplateService) (*TemplateHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("template service is required")
	}
	return &TemplateHandler{service: service}, nil
}

func RegisterTemplateRoutes(router fiber.Router, service TemplateService) error {
	h, err := NewTemplateHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/templates/:purpose", h.GetTemplate)
	v1.Put("/templates/:purpose", h.SaveTemplate)

	return nil
}

type templateRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type templateResponse struct {
	Purpose   string    `json:"purpose"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

func (h *TemplateHandler) GetTemplate(c *fiber.Ctx) error {
	tpl, err := h.service.Get(c.Context(), trimmedParam(c, "purpose"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toTemplateResponse(tpl))
}

func (h *TemplateHandler) SaveTemplate(c *fiber.Ctx) error {
	var req templateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	tpl, err := h.service.Save(c.Context(), &domain.MessageTemplate{
		Purpose: trimmedParam(c, "purpose"),
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toTemplateResponse(tpl))
}

func toTemplateResponse(tpl *domain.MessageTemplate) templateResponse {
	if tpl == nil {
		return templateResponse{}
	}

	return templateResponse{
		Purpose:   tpl.Purpose,
		Subject:   tpl.Subject,
		Body:      tpl.Body,
		UpdatedAt: tpl.UpdatedAt,
	}
}
