package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/repository"
	"go.uber.org/zap"
)

// LifecycleService owns visitor status transitions. It has no dispatch side
// effects; callers that want a notification after a transition orchestrate
// the two steps themselves.
type LifecycleService struct {
	visitors repository.VisitorRepository
	graph    domain.TransitionGraph
	logger   *zap.Logger
}

func NewLifecycleService(
	visitors repository.VisitorRepository,
	graph domain.TransitionGraph,
	logger *zap.Logger,
) (*LifecycleService, error) {
	if visitors == nil {
		return nil, fmt.Errorf("visitor repository is required")
	}
	if graph == nil {
		graph = domain.DefaultTransitionGraph()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LifecycleService{
		visitors: visitors,
		graph:    graph,
		logger:   logger,
	}, nil
}

// Transition moves a visitor to target. Requesting the status the visitor
// already has is an idempotent no-op, so a retried request cannot re-trigger
// downstream notifications.
func (s *LifecycleService) Transition(ctx context.Context, visitorID string, target domain.VisitorStatus) (*domain.Visitor, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return nil, fmt.Errorf("%w: visitor id is required", domain.ErrValidation)
	}
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: invalid visitor status %q", domain.ErrValidation, target)
	}

	visitor, err := s.visitors.GetByID(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	if visitor.Status == target {
		return visitor, nil
	}

	if !s.graph.Allows(visitor.Status, target) {
		return nil, fmt.Errorf("%w: transition %s -> %s is not permitted",
			domain.ErrConflict, visitor.Status, target)
	}

	updated, err := s.visitors.UpdateStatusFrom(ctx, visitorID, visitor.Status, target)
	if err != nil {
		return nil, err
	}
	if !updated {
		s.logger.Info("visitor status changed concurrently during transition",
			zap.String("visitorId", visitorID),
			zap.String("expected", visitor.Status.String()),
		)
		return nil, fmt.Errorf("%w: visitor status changed concurrently", domain.ErrConflict)
	}

	visitor.Status = target
	return visitor, nil
}

func (s *LifecycleService) GetByID(ctx context.Context, visitorID string) (*domain.Visitor, error) {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return nil, fmt.Errorf("%w: visitor id is required", domain.ErrValidation)
	}
	return s.visitors.GetByID(ctx, visitorID)
}

func (s *LifecycleService) ListByStatus(ctx context.Context, status domain.VisitorStatus) ([]domain.Visitor, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid visitor status %q", domain.ErrValidation, status)
	}
	return s.visitors.ListByStatus(ctx, status)
}
