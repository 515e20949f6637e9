package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/repository"
)

// TemplateService stores one current template per purpose, last writer wins.
type TemplateService struct {
	templates repository.TemplateRepository
}

func NewTemplateService(templates repository.TemplateRepository) (*TemplateService, error) {
	if templates == nil {
		return nil, fmt.Errorf("template repository is required")
	}
	return &TemplateService{templates: templates}, nil
}

func (s *TemplateService) Save(ctx context.Context, tpl *domain.MessageTemplate) (*domain.MessageTemplate, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: template is required", domain.ErrValidation)
	}

	tpl.Purpose = strings.TrimSpace(tpl.Purpose)
	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	if err := s.templates.Upsert(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Get returns the stored template for the purpose. The attendance purpose
// falls back to the built-in default until an operator saves their own.
func (s *TemplateService) Get(ctx context.Context, purpose string) (*domain.MessageTemplate, error) {
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return nil, fmt.Errorf("%w: template purpose is required", domain.ErrValidation)
	}

	tpl, err := s.templates.GetByPurpose(ctx, purpose)
	if errors.Is(err, domain.ErrNotFound) && purpose == domain.TemplatePurposeAttendanceUpdate {
		fallback := domain.DefaultAttendanceTemplate()
		return &fallback, nil
	}
	if err != nil {
		return nil, err
	}
	return tpl, nil
}
