package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/comunityalert/backend/internal/domain"
	"github.com/comunityalert/backend/internal/repo"
)

// TagService implements the tag catalog: the administrator-curated label set
// and the membership validation the issue lifecycle relies on.
type TagService struct {
	tags repo.TagRepo
}

// NewTagService constructs a TagService backed by the provided TagRepo.
func NewTagService(tags repo.TagRepo) *TagService {
	return &TagService{tags: tags}
}

// Create validates and persists a new tag. The name must be non-blank and
// not already in use (case-sensitive match).
func (s *TagService) Create(ctx context.Context, name, description string) (domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: name is required: %w", domain.ErrValidation)
	}

	tag, err := s.tags.Create(ctx, name, description)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	return tag, nil
}

// GetByID returns a single tag by id.
func (s *TagService) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.GetByID: %w", err)
	}
	return tag, nil
}

// GetByName returns a single tag by exact name.
func (s *TagService) GetByName(ctx context.Context, name string) (domain.Tag, error) {
	tag, err := s.tags.GetByName(ctx, name)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.GetByName: %w", err)
	}
	return tag, nil
}

// List returns the full catalog, or only active tags when activeOnly is set
// (the resident-facing selection listing).
func (s *TagService) List(ctx context.Context, activeOnly bool) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return tags, nil
}

// ListPaged returns one catalog page plus the total count.
func (s *TagService) ListPaged(ctx context.Context, activeOnly bool, p domain.PaginationParams, sort domain.SortParams) ([]domain.Tag, int64, error) {
	tags, total, err := s.tags.ListPaged(ctx, activeOnly, p, sort)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TagService.ListPaged: %w", err)
	}
	return tags, total, nil
}

// Search returns tags whose name contains query, case-insensitively.
func (s *TagService) Search(ctx context.Context, query string) ([]domain.Tag, error) {
	tags, err := s.tags.SearchByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.Search: %w", err)
	}
	return tags, nil
}

// ListUsed returns tags attached to at least one issue.
func (s *TagService) ListUsed(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.tags.ListUsed(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.ListUsed: %w", err)
	}
	return tags, nil
}

// ListUnused returns tags attached to no issue.
func (s *TagService) ListUnused(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.tags.ListUnused(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.ListUnused: %w", err)
	}
	return tags, nil
}

// Update overwrites name and active, and overwrites description only when the
// caller supplied one. Renaming to a name held by a different tag fails with
// ErrConflict.
func (s *TagService) Update(ctx context.Context, id uuid.UUID, in domain.UpdateTag) (domain.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: name is required: %w", domain.ErrValidation)
	}

	existing, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}

	description := existing.Description
	if in.Description != nil {
		description = *in.Description
	}

	tag, err := s.tags.Update(ctx, id, in.Name, description, in.Active)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}
	return tag, nil
}

// Activate makes the tag selectable again. Membership is untouched.
func (s *TagService) Activate(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	tag, err := s.tags.SetActive(ctx, id, true)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Activate: %w", err)
	}
	return tag, nil
}

// Deactivate hides the tag from resident-facing selection. Issues already
// holding it keep it.
func (s *TagService) Deactivate(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	tag, err := s.tags.SetActive(ctx, id, false)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Deactivate: %w", err)
	}
	return tag, nil
}

// Delete removes the tag permanently, detaching it from every issue that
// holds it first.
func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}
	return nil
}

// ValidateTagIDs checks that every id resolves to an existing, active tag.
// An empty input is a no-op. An unknown id yields ErrNotFound; a resolved but
// inactive tag yields ErrValidation. Called during issue creation, where
// inactive tags may not be selected.
func (s *TagService) ValidateTagIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	tags, err := s.tags.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("service.TagService.ValidateTagIDs: %w", err)
	}
	if len(tags) != len(unique) {
		return fmt.Errorf("service.TagService.ValidateTagIDs: unknown tag id: %w", domain.ErrNotFound)
	}
	for _, tag := range tags {
		if !tag.Active {
			return fmt.Errorf("service.TagService.ValidateTagIDs: tag %q is inactive: %w", tag.Name, domain.ErrValidation)
		}
	}
	return nil
}
