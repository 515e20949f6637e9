package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/innovast/followup/internal/domain"
	"github.com/innovast/followup/internal/lock"
	"github.com/innovast/followup/internal/repository"
	"go.uber.org/zap"
)

// membershipRetries bounds the optimistic-version retry loop backing the
// lock. With per-list locking the loop normally runs once.
const membershipRetries = 3

// ListService manages distribution lists. Every mutation of a member set
// holds the per-list lock and writes through a version check, so concurrent
// add/remove on the same list never lose updates.
type ListService struct {
	lists  repository.ListRepository
	locker lock.Locker
	logger *zap.Logger
}

func NewListService(
	lists repository.ListRepository,
	locker lock.Locker,
	logger *zap.Logger,
) (*ListService, error) {
	if lists == nil {
		return nil, fmt.Errorf("list repository is required")
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ListService{
		lists:  lists,
		locker: locker,
		logger: logger,
	}, nil
}

// Create builds a list whose id is the slug of its name. Names that slug to
// an existing id are duplicates.
func (s *ListService) Create(ctx context.Context, name string) (*domain.DistributionList, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: list name is required", domain.ErrValidation)
	}

	id, err := slug.Normalize(name)
	if err != nil || strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: list name %q does not yield a usable id", domain.ErrValidation, name)
	}

	list := &domain.DistributionList{
		ID:     id,
		Name:   name,
		Emails: []string{},
	}
	if err := list.Validate(); err != nil {
		return nil, err
	}

	if err := s.lists.Create(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ListService) Get(ctx context.Context, id string) (*domain.DistributionList, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: list id is required", domain.ErrValidation)
	}
	return s.lists.GetByID(ctx, id)
}

func (s *ListService) List(ctx context.Context) ([]domain.DistributionList, error) {
	return s.lists.List(ctx)
}

func (s *ListService) Delete(ctx context.Context, id string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: list id is required", domain.ErrValidation)
	}

	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to acquire list lock: %w", err)
	}
	defer release()

	return s.lists.Delete(ctx, id)
}

// AddEmail appends the normalized address to the list member set.
func (s *ListService) AddEmail(ctx context.Context, id, email string) (*domain.DistributionList, error) {
	return s.mutateMembers(ctx, id, email, func(list *domain.DistributionList, normalized string) ([]string, error) {
		if list.Contains(normalized) {
			return nil, fmt.Errorf("%w: %q is already a member", domain.ErrDuplicate, normalized)
		}
		return append(append([]string{}, list.Emails...), normalized), nil
	})
}

// RemoveEmail drops the normalized address from the list member set.
func (s *ListService) RemoveEmail(ctx context.Context, id, email string) (*domain.DistributionList, error) {
	return s.mutateMembers(ctx, id, email, func(list *domain.DistributionList, normalized string) ([]string, error) {
		if !list.Contains(normalized) {
			return nil, fmt.Errorf("%w: %q is not a member", domain.ErrNotFound, normalized)
		}
		remaining := make([]string, 0, len(list.Emails))
		for _, member := range list.Emails {
			if member != normalized {
				remaining = append(remaining, member)
			}
		}
		return remaining, nil
	})
}

func (s *ListService) mutateMembers(
	ctx context.Context,
	id, email string,
	apply func(list *domain.DistributionList, normalized string) ([]string, error),
) (*domain.DistributionList, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: list id is required", domain.ErrValidation)
	}
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	normalized := domain.NormalizeEmail(email)

	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire list lock: %w", err)
	}
	defer release()

	for attempt := 0; attempt < membershipRetries; attempt++ {
		list, err := s.lists.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		emails, err := apply(list, normalized)
		if err != nil {
			return nil, err
		}

		updated, err := s.lists.UpdateMembers(ctx, id, emails, list.Version)
		if err != nil {
			return nil, err
		}
		if updated {
			list.Emails = emails
			list.Version++
			return list, nil
		}

		s.logger.Info("list version check lost, retrying membership update",
			zap.String("listId", id),
			zap.Int("attempt", attempt+1),
		)
	}

	return nil, fmt.Errorf("%w: list %q changed concurrently", domain.ErrConflict, id)
}

// Resolve produces the deduplicated union of member addresses across the
// given lists, sorted so the same inputs always yield the same recipient
// slice. Unknown list ids are skipped rather than failing the dispatch.
func (s *ListService) Resolve(ctx context.Context, ids []string) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	trimmed := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			trimmed = append(trimmed, id)
		}
	}
	if len(trimmed) == 0 {
		return nil, nil
	}

	lists, err := s.lists.GetByIDs(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	union := make([]string, 0)
	for i := range lists {
		for _, email := range lists[i].Emails {
			normalized := domain.NormalizeEmail(email)
			if _, ok := seen[normalized]; ok {
				continue
			}
			seen[normalized] = struct{}{}
			union = append(union, normalized)
		}
	}

	sort.Strings(union)
	return union, nil
}
