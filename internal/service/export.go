package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/telemetry"
)

// exportSchemaVersion versions the snapshot format for future importers.
const exportSchemaVersion = 1

// StorageClientInterface is the object-storage surface exports need.
type StorageClientInterface interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

// ExportRepositoryInterface reads the full library content for a snapshot.
type ExportRepositoryInterface interface {
	ListAllPrompts(ctx context.Context, libraryID string) ([]*domain.Prompt, error)
	GetVersions(ctx context.Context, promptID string) ([]*domain.PromptVersion, error)
}

// ExportSnapshot is the JSON document uploaded to object storage.
type ExportSnapshot struct {
	SchemaVersion int               `json:"schema_version"`
	ExportedAt    time.Time         `json:"exported_at"`
	Library       *ExportLibrary    `json:"library"`
	Categories    []*ExportCategory `json:"categories"`
	Prompts       []*ExportPrompt   `json:"prompts"`
}

type ExportLibrary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type ExportCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ExportPrompt struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Content     string           `json:"content"`
	CategoryID  *string          `json:"category_id,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Author      string           `json:"author"`
	IsFavorite  bool             `json:"is_favorite"`
	UsageCount  int64            `json:"usage_count"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Versions    []*ExportVersion `json:"versions"`
}

type ExportVersion struct {
	VersionNumber int64     `json:"version_number"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Content       string    `json:"content"`
	Tags          []string  `json:"tags,omitempty"`
	ChangeSummary string    `json:"change_summary,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExportResult points at the uploaded snapshot.
type ExportResult struct {
	Key         string
	DownloadURL string
	PromptCount int
	ExportedAt  time.Time
}

// ExportServiceInterface is implemented by the real service and the NoOp
// fallback used when object storage is not configured.
type ExportServiceInterface interface {
	Export(ctx context.Context, libraryID, actor string) (*ExportResult, error)
}

// ExportService builds a JSON snapshot of a library, uploads it to object
// storage, and hands back a presigned download link.
type ExportService struct {
	libraryRepo  LibraryRepository
	categoryRepo CategoryRepositoryInterface
	exportRepo   ExportRepositoryInterface
	storage      StorageClientInterface
	auditor      Auditor
}

// NewExportService creates a new ExportService instance
func NewExportService(
	libraryRepo LibraryRepository,
	categoryRepo CategoryRepositoryInterface,
	exportRepo ExportRepositoryInterface,
	storage StorageClientInterface,
	auditor Auditor,
) *ExportService {
	return &ExportService{
		libraryRepo:  libraryRepo,
		categoryRepo: categoryRepo,
		exportRepo:   exportRepo,
		storage:      storage,
		auditor:      auditor,
	}
}

// Export snapshots the library and uploads it.
func (s *ExportService) Export(ctx context.Context, libraryID, actor string) (*ExportResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ExportService.Export", telemetry.SpanAttributes{
		LibraryID: libraryID,
		Operation: "export",
	})
	defer span.End()

	library, err := s.libraryRepo.GetByID(ctx, libraryID)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.List(ctx, libraryID)
	if err != nil {
		return nil, err
	}

	prompts, err := s.exportRepo.ListAllPrompts(ctx, libraryID)
	if err != nil {
		return nil, err
	}

	exportedAt := time.Now().UTC()
	snapshot := &ExportSnapshot{
		SchemaVersion: exportSchemaVersion,
		ExportedAt:    exportedAt,
		Library: &ExportLibrary{
			ID:        library.ID,
			Name:      library.Name,
			CreatedAt: library.CreatedAt,
		},
		Categories: make([]*ExportCategory, 0, len(categories)),
		Prompts:    make([]*ExportPrompt, 0, len(prompts)),
	}

	for _, c := range categories {
		snapshot.Categories = append(snapshot.Categories, &ExportCategory{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
		})
	}

	for _, p := range prompts {
		versions, err := s.exportRepo.GetVersions(ctx, p.ID)
		if err != nil {
			return nil, err
		}

		ep := &ExportPrompt{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Content:     p.Content,
			CategoryID:  p.CategoryID,
			Tags:        p.Tags,
			Author:      p.Author,
			IsFavorite:  p.IsFavorite,
			UsageCount:  p.UsageCount,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
			Versions:    make([]*ExportVersion, 0, len(versions)),
		}
		for _, v := range versions {
			ep.Versions = append(ep.Versions, &ExportVersion{
				VersionNumber: v.VersionNumber,
				Title:         v.Title,
				Description:   v.Description,
				Content:       v.Content,
				Tags:          v.Tags,
				ChangeSummary: v.ChangeSummary,
				CreatedAt:     v.CreatedAt,
			})
		}
		snapshot.Prompts = append(snapshot.Prompts, ep)
	}

	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to encode snapshot", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", libraryID, exportedAt.Format("20060102T150405Z"))
	if err := s.storage.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to upload snapshot", err)
	}

	url, err := s.storage.GenerateDownloadURL(ctx, key)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to presign download", err)
	}

	s.auditor.Record(ctx, AuditEntry{
		LibraryID:    libraryID,
		Action:       domain.AuditDataExport,
		ResourceType: "export",
		ResourceID:   key,
		Actor:        actor,
		Details:      map[string]any{"prompt_count": len(prompts)},
	})

	return &ExportResult{
		Key:         key,
		DownloadURL: url,
		PromptCount: len(prompts),
		ExportedAt:  exportedAt,
	}, nil
}

// NoOpExportService is wired when object storage is not configured.
type NoOpExportService struct{}

func (NoOpExportService) Export(ctx context.Context, libraryID, actor string) (*ExportResult, error) {
	return nil, domain.ErrExportNotConfigured
}
