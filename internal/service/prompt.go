package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/pagination"
	"github.com/promptuary/promptuary/internal/telemetry"
)

// PromptRepositoryInterface defines the repository interface for prompt persistence
type PromptRepositoryInterface interface {
	Create(ctx context.Context, p *domain.Prompt) error
	GetByID(ctx context.Context, id string) (*domain.Prompt, error)
	ListWithCursor(ctx context.Context, libraryID string, cursor *pagination.Cursor, limit int) (*PromptPageResult, error)
	ListFavorites(ctx context.Context, libraryID string) ([]*domain.Prompt, error)
	Update(ctx context.Context, p *domain.Prompt) error
	SoftDelete(ctx context.Context, id string) error
	SetFavorite(ctx context.Context, id string, favorite bool) error
	IncrementUsage(ctx context.Context, id string, usedAt time.Time) (*domain.Prompt, error)
	CreateVersion(ctx context.Context, v *domain.PromptVersion) error
	GetVersions(ctx context.Context, promptID string) ([]*domain.PromptVersion, error)
	GetVersion(ctx context.Context, promptID string, number int64) (*domain.PromptVersion, error)
	Stats(ctx context.Context, libraryID string) (*PromptStats, error)
}

type PromptPageResult struct {
	Items      []*domain.Prompt
	NextCursor string
	HasMore    bool
}

// CategoryCount is one row of the per-category prompt breakdown.
type CategoryCount struct {
	CategoryID   string
	CategoryName string
	PromptCount  int64
}

// PromptStats aggregates library-wide prompt numbers for the analytics view.
type PromptStats struct {
	TotalPrompts    int64
	TotalFavorites  int64
	TotalUsage      int64
	MostUsed        []*domain.Prompt
	RecentlyUpdated []*domain.Prompt
	ByCategory      []CategoryCount
}

// EmbeddingJobRepositoryInterface defines the repository interface for embedding job persistence
type EmbeddingJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

// SearchInvalidator drops memoized search results after prompt mutations.
type SearchInvalidator interface {
	InvalidateCache()
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// PromptService handles business logic for prompts
type PromptService struct {
	promptRepo       PromptRepositoryInterface
	embeddingJobRepo EmbeddingJobRepositoryInterface
	txRunner         TxRunner
	auditor          Auditor
	invalidator      SearchInvalidator
	uuidGen          UUIDGenerator
}

// NewPromptService creates a new PromptService instance
func NewPromptService(
	promptRepo PromptRepositoryInterface,
	embeddingJobRepo EmbeddingJobRepositoryInterface,
	txRunner TxRunner,
	auditor Auditor,
	invalidator SearchInvalidator,
) *PromptService {
	return &PromptService{
		promptRepo:       promptRepo,
		embeddingJobRepo: embeddingJobRepo,
		txRunner:         txRunner,
		auditor:          auditor,
		invalidator:      invalidator,
		uuidGen:          &DefaultUUIDGenerator{},
	}
}

// NewPromptServiceWithUUIDGen creates a new PromptService with custom UUID generator (for testing)
func NewPromptServiceWithUUIDGen(
	promptRepo PromptRepositoryInterface,
	embeddingJobRepo EmbeddingJobRepositoryInterface,
	txRunner TxRunner,
	auditor Auditor,
	invalidator SearchInvalidator,
	uuidGen UUIDGenerator,
) *PromptService {
	svc := NewPromptService(promptRepo, embeddingJobRepo, txRunner, auditor, invalidator)
	svc.uuidGen = uuidGen
	return svc
}

// CreatePromptInput represents the input for creating a prompt
type CreatePromptInput struct {
	LibraryID   string
	Title       string
	Description string
	Content     string
	CategoryID  *string
	Tags        []string
	Author      string
	Actor       string
}

// UpdatePromptInput represents the input for updating a prompt. A non-nil
// ExpectedVersion enables optimistic concurrency: the update is rejected
// with a CONFLICT when the prompt has moved past that version.
type UpdatePromptInput struct {
	PromptID        string
	LibraryID       string
	Title           string
	Description     string
	Content         string
	CategoryID      *string
	Tags            []string
	ChangeSummary   string
	ExpectedVersion *int64
	Actor           string
}

type ListPromptsInput struct {
	LibraryID string
	Cursor    string
	Limit     int
}

type ListPromptsOutput struct {
	Items   []*domain.Prompt
	Cursor  string
	HasMore bool
}

// Create creates a new prompt with its first version in one transaction,
// queues an embedding job, audits the creation, and clears the search cache.
func (s *PromptService) Create(ctx context.Context, input CreatePromptInput) (*domain.Prompt, error) {
	ctx, span := telemetry.StartSpan(ctx, "PromptService.Create", telemetry.SpanAttributes{
		LibraryID: input.LibraryID,
		Operation: "create",
	})
	defer span.End()

	now := time.Now().UTC()
	promptID := s.uuidGen.NewString()
	versionID := s.uuidGen.NewString()
	jobID := s.uuidGen.NewString()

	prompt := domain.NewPrompt(promptID, input.LibraryID, input.Title, input.Description,
		input.Content, input.CategoryID, input.Tags, input.Author, now)

	if err := domain.ValidatePrompt(prompt); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid prompt", err)
	}

	version := domain.NewPromptVersion(versionID, promptID, 1, input.Title,
		input.Description, input.Content, input.Tags, "initial version", now)

	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Prompts().Create(ctx, prompt); err != nil {
			return err
		}
		if err := repos.Prompts().CreateVersion(ctx, version); err != nil {
			return err
		}
		job := domain.NewEmbeddingJob(jobID, promptID, domain.EmbeddingJobStatusPending, 0, "", now, nil)
		return repos.EmbeddingJobs().Create(ctx, job)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntry{
		LibraryID:    input.LibraryID,
		Action:       domain.AuditPromptCreate,
		ResourceType: "prompt",
		ResourceID:   promptID,
		Actor:        input.Actor,
		Details:      map[string]any{"title": prompt.Title},
	})
	s.invalidator.InvalidateCache()

	return prompt, nil
}

// Get retrieves an active prompt and audits the view.
func (s *PromptService) Get(ctx context.Context, libraryID, id, actor string) (*domain.Prompt, error) {
	ctx, span := telemetry.StartSpan(ctx, "PromptService.Get", telemetry.SpanAttributes{
		LibraryID: libraryID,
		PromptID:  id,
		Operation: "get",
	})
	defer span.End()

	prompt, err := s.getOwned(ctx, libraryID, id)
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntry{
		LibraryID:    libraryID,
		Action:       domain.AuditPromptView,
		ResourceType: "prompt",
		ResourceID:   id,
		Actor:        actor,
	})

	return prompt, nil
}

// Update applies field changes. A content change bumps the current version
// and appends a new immutable PromptVersion in the same transaction.
func (s *PromptService) Update(ctx context.Context, input UpdatePromptInput) (*domain.Prompt, error) {
	ctx, span := telemetry.StartSpan(ctx, "PromptService.Update", telemetry.SpanAttributes{
		LibraryID: input.LibraryID,
		PromptID:  input.PromptID,
		Operation: "update",
	})
	defer span.End()

	prompt, err := s.getOwned(ctx, input.LibraryID, input.PromptID)
	if err != nil {
		return nil, err
	}

	if input.ExpectedVersion != nil && *input.ExpectedVersion != prompt.CurrentVersion {
		return nil, domain.ErrVersionConflict
	}

	now := time.Now().UTC()
	contentChanged := prompt.ContentChanged(input.Title, input.Description, input.Content, input.Tags)

	prompt.Title = input.Title
	prompt.Description = input.Description
	prompt.Content = input.Content
	prompt.CategoryID = input.CategoryID
	prompt.Tags = input.Tags
	prompt.UpdatedAt = now
	if contentChanged {
		prompt.CurrentVersion++
	}

	if err := domain.ValidatePrompt(prompt); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid prompt", err)
	}

	versionID := s.uuidGen.NewString()
	jobID := s.uuidGen.NewString()

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Prompts().Update(ctx, prompt); err != nil {
			return err
		}
		if !contentChanged {
			return nil
		}
		summary := input.ChangeSummary
		if summary == "" {
			summary = "updated"
		}
		version := domain.NewPromptVersion(versionID, prompt.ID, prompt.CurrentVersion,
			input.Title, input.Description, input.Content, input.Tags, summary, now)
		if err := repos.Prompts().CreateVersion(ctx, version); err != nil {
			return err
		}
		job := domain.NewEmbeddingJob(jobID, prompt.ID, domain.EmbeddingJobStatusPending, 0, "", now, nil)
		return repos.EmbeddingJobs().Create(ctx, job)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntry{
		LibraryID:    input.LibraryID,
		Action:       domain.AuditPromptUpdate,
		ResourceType: "prompt",
		ResourceID:   prompt.ID,
		Actor:        input.Actor,
		Details:      map[string]any{"version": prompt.CurrentVersion, "content_changed": contentChanged},
	})
	s.invalidator.InvalidateCache()

	return prompt, nil
}

// Delete soft-deletes a prompt. Versions and audit rows stay behind.
func (s *PromptService) Delete(ctx context.Context, libraryID, id, actor string) error {
	ctx, span := telemetry.StartSpan(ctx, "PromptService.Delete", telemetry.SpanAttributes{
		LibraryID: libraryID,
		PromptID:  id,
		Operation: "delete",
	})
	defer span.End()

	if _, err := s.getOwned(ctx, libraryID, id); err != nil {
		return err
	}

	if err := s.promptRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, AuditEntry{
		LibraryID:    libraryID,
		Action:       domain.AuditPromptDelete,
		ResourceType: "prompt",
		ResourceID:   id,
		Actor:        actor,
	})
	s.invalidator.InvalidateCache()

	return nil
}

// Use atomically bumps the usage counter and stamps last_used_at, returning
// the prompt so the caller can hand back its content.
func (s *PromptService) Use(ctx context.Context, libraryID, id, actor string) (*domain.Prompt, error) {
	ctx, span := telemetry.StartSpan(ctx, "PromptService.Use", telemetry.SpanAttributes{
		LibraryID: libraryID,
		PromptID:  id,
		Operation: "use",
	})
	defer span.End()

	if _, err := s.getOwned(ctx, libraryID, id); err != nil {
		return nil, err
	}

	prompt, err := s.promptRepo.IncrementUsage(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntry{
		LibraryID:    libraryID,
		Action:       domain.AuditPromptUse,
		ResourceType: "prompt",
		ResourceID:   id,
		Actor:        actor,
		Details:      map[string]any{"usage_count": prompt.UsageCount},
	})

	return prompt, nil
}

// SetFavorite marks or unmarks a prompt as a favorite.
func (s *PromptService) SetFavorite(ctx context.Context, libraryID, id string, favorite bool) (*domain.Prompt, error) {
	prompt, err := s.getOwned(ctx, libraryID, id)
	if err != nil {
		return nil, err
	}

	if err := s.promptRepo.SetFavorite(ctx, id, favorite); err != nil {
		return nil, err
	}
	prompt.IsFavorite = favorite
	return prompt, nil
}

// ListFavorites returns the library's favorite prompts.
func (s *PromptService) ListFavorites(ctx context.Context, libraryID string) ([]*domain.Prompt, error) {
	return s.promptRepo.ListFavorites(ctx, libraryID)
}

// List pages through the library's prompts, newest updates first.
func (s *PromptService) List(ctx context.Context, input ListPromptsInput) (*ListPromptsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "PromptService.List", telemetry.SpanAttributes{
		LibraryID: input.LibraryID,
		Operation: "list",
	})
	defer span.End()

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	result, err := s.promptRepo.ListWithCursor(ctx, input.LibraryID, cursor, pagination.ClampLimit(input.Limit))
	if err != nil {
		return nil, err
	}

	return &ListPromptsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// Versions lists a prompt's version history, newest first.
func (s *PromptService) Versions(ctx context.Context, libraryID, promptID string) ([]*domain.PromptVersion, error) {
	if _, err := s.getOwned(ctx, libraryID, promptID); err != nil {
		return nil, err
	}
	return s.promptRepo.GetVersions(ctx, promptID)
}

// GetVersion returns one version of a prompt.
func (s *PromptService) GetVersion(ctx context.Context, libraryID, promptID string, number int64) (*domain.PromptVersion, error) {
	if _, err := s.getOwned(ctx, libraryID, promptID); err != nil {
		return nil, err
	}
	return s.promptRepo.GetVersion(ctx, promptID, number)
}

// RestoreVersion copies an old version's fields onto the prompt as a new
// version. History is append-only: restoring never rewrites it.
func (s *PromptService) RestoreVersion(ctx context.Context, libraryID, promptID string, number int64, actor string) (*domain.Prompt, error) {
	ctx, span := telemetry.StartSpan(ctx, "PromptService.RestoreVersion", telemetry.SpanAttributes{
		LibraryID: libraryID,
		PromptID:  promptID,
		Operation: "restore_version",
	})
	defer span.End()

	prompt, err := s.getOwned(ctx, libraryID, promptID)
	if err != nil {
		return nil, err
	}

	version, err := s.promptRepo.GetVersion(ctx, promptID, number)
	if err != nil {
		return nil, err
	}

	return s.Update(ctx, UpdatePromptInput{
		PromptID:      promptID,
		LibraryID:     libraryID,
		Title:         version.Title,
		Description:   version.Description,
		Content:       version.Content,
		CategoryID:    prompt.CategoryID,
		Tags:          version.Tags,
		ChangeSummary: restoreSummary(number),
		Actor:         actor,
	})
}

// Stats aggregates library-wide prompt numbers.
func (s *PromptService) Stats(ctx context.Context, libraryID string) (*PromptStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "PromptService.Stats", telemetry.SpanAttributes{
		LibraryID: libraryID,
		Operation: "stats",
	})
	defer span.End()

	return s.promptRepo.Stats(ctx, libraryID)
}

// getOwned fetches a prompt and hides prompts belonging to other libraries
// behind the same not-found error as missing ones.
func (s *PromptService) getOwned(ctx context.Context, libraryID, id string) (*domain.Prompt, error) {
	prompt, err := s.promptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prompt.LibraryID != libraryID {
		return nil, domain.ErrPromptNotFound
	}
	if !prompt.IsActive {
		return nil, domain.ErrPromptNotFound
	}
	return prompt, nil
}

func restoreSummary(number int64) string {
	return "restored from version " + strconv.FormatInt(number, 10)
}
