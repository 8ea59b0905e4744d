package service

import (
	"context"
	"time"

	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/telemetry"
)

// CategoryRepositoryInterface defines the repository interface for category persistence
type CategoryRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, libraryID, name string) (*domain.Category, error)
	List(ctx context.Context, libraryID string) ([]*domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
	PromptCounts(ctx context.Context, libraryID string) ([]CategoryCount, error)
}

// CategoryService handles business logic for categories
type CategoryService struct {
	repo        CategoryRepositoryInterface
	auditor     Auditor
	invalidator SearchInvalidator
	uuidGen     UUIDGenerator
}

// NewCategoryService creates a new CategoryService instance
func NewCategoryService(repo CategoryRepositoryInterface, auditor Auditor, invalidator SearchInvalidator) *CategoryService {
	return &CategoryService{
		repo:        repo,
		auditor:     auditor,
		invalidator: invalidator,
		uuidGen:     &DefaultUUIDGenerator{},
	}
}

// NewCategoryServiceWithUUIDGen creates a new CategoryService with custom UUID generator (for testing)
func NewCategoryServiceWithUUIDGen(repo CategoryRepositoryInterface, auditor Auditor, invalidator SearchInvalidator, uuidGen UUIDGenerator) *CategoryService {
	svc := NewCategoryService(repo, auditor, invalidator)
	svc.uuidGen = uuidGen
	return svc
}

// CreateCategoryInput represents the input for creating a category
type CreateCategoryInput struct {
	LibraryID   string
	Name        string
	Description string
	Actor       string
}

// UpdateCategoryInput represents the input for updating a category
type UpdateCategoryInput struct {
	CategoryID  string
	LibraryID   string
	Name        string
	Description string
	Actor       string
}

// Create creates a category. Names are unique within a library.
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "CategoryService.Create", telemetry.SpanAttributes{
		LibraryID: input.LibraryID,
		Operation: "create",
	})
	defer span.End()

	if existing, err := s.repo.GetByName(ctx, input.LibraryID, input.Name); err == nil && existing != nil {
		return nil, domain.ErrCategoryAlreadyExists
	}

	category := domain.NewCategory(s.uuidGen.NewString(), input.LibraryID,
		input.Name, input.Description, time.Now().UTC())

	if err := domain.ValidateCategory(category); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid category", err)
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntry{
		LibraryID:    input.LibraryID,
		Action:       domain.AuditCategoryCreate,
		ResourceType: "category",
		ResourceID:   category.ID,
		Actor:        input.Actor,
		Details:      map[string]any{"name": category.Name},
	})

	return category, nil
}

// Get retrieves a category by ID.
func (s *CategoryService) Get(ctx context.Context, libraryID, id string) (*domain.Category, error) {
	return s.getOwned(ctx, libraryID, id)
}

// List returns the library's categories in name order.
func (s *CategoryService) List(ctx context.Context, libraryID string) ([]*domain.Category, error) {
	return s.repo.List(ctx, libraryID)
}

// Update renames or re-describes a category.
func (s *CategoryService) Update(ctx context.Context, input UpdateCategoryInput) (*domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "CategoryService.Update", telemetry.SpanAttributes{
		LibraryID:  input.LibraryID,
		CategoryID: input.CategoryID,
		Operation:  "update",
	})
	defer span.End()

	category, err := s.getOwned(ctx, input.LibraryID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	if input.Name != category.Name {
		if existing, err := s.repo.GetByName(ctx, input.LibraryID, input.Name); err == nil && existing != nil {
			return nil, domain.ErrCategoryAlreadyExists
		}
	}

	category.Name = input.Name
	category.Description = input.Description
	category.UpdatedAt = time.Now().UTC()

	if err := domain.ValidateCategory(category); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid category", err)
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntry{
		LibraryID:    input.LibraryID,
		Action:       domain.AuditCategoryUpdate,
		ResourceType: "category",
		ResourceID:   category.ID,
		Actor:        input.Actor,
		Details:      map[string]any{"name": category.Name},
	})
	s.invalidator.InvalidateCache()

	return category, nil
}

// Delete removes a category. Prompts referencing it keep existing with a
// null category (SET NULL at the schema level).
func (s *CategoryService) Delete(ctx context.Context, libraryID, id, actor string) error {
	ctx, span := telemetry.StartSpan(ctx, "CategoryService.Delete", telemetry.SpanAttributes{
		LibraryID:  libraryID,
		CategoryID: id,
		Operation:  "delete",
	})
	defer span.End()

	if _, err := s.getOwned(ctx, libraryID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, AuditEntry{
		LibraryID:    libraryID,
		Action:       domain.AuditCategoryDelete,
		ResourceType: "category",
		ResourceID:   id,
		Actor:        actor,
	})
	s.invalidator.InvalidateCache()

	return nil
}

// Stats returns the prompt count per category.
func (s *CategoryService) Stats(ctx context.Context, libraryID string) ([]CategoryCount, error) {
	return s.repo.PromptCounts(ctx, libraryID)
}

func (s *CategoryService) getOwned(ctx context.Context, libraryID, id string) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.LibraryID != libraryID {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}
