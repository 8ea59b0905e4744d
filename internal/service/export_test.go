package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/promptuary/promptuary/internal/domain"
)

// MockExportRepository is a mock implementation of ExportRepositoryInterface
type MockExportRepository struct {
	mock.Mock
}

func (m *MockExportRepository) ListAllPrompts(ctx context.Context, libraryID string) ([]*domain.Prompt, error) {
	args := m.Called(ctx, libraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Prompt), args.Error(1)
}

func (m *MockExportRepository) GetVersions(ctx context.Context, promptID string) ([]*domain.PromptVersion, error) {
	args := m.Called(ctx, promptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PromptVersion), args.Error(1)
}

// MockStorageClient is a mock implementation of StorageClientInterface
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}

func (m *MockStorageClient) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type exportFixture struct {
	libraryRepo  *MockLibraryRepository
	categoryRepo *MockCategoryRepository
	exportRepo   *MockExportRepository
	storage      *MockStorageClient
	auditor      *recordingAuditor
	svc          *ExportService
}

func newExportFixture() *exportFixture {
	f := &exportFixture{
		libraryRepo:  new(MockLibraryRepository),
		categoryRepo: new(MockCategoryRepository),
		exportRepo:   new(MockExportRepository),
		storage:      new(MockStorageClient),
		auditor:      &recordingAuditor{},
	}
	f.svc = NewExportService(f.libraryRepo, f.categoryRepo, f.exportRepo, f.storage, f.auditor)
	return f
}

func TestExportService_Export(t *testing.T) {
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	t.Run("uploads snapshot and returns presigned link", func(t *testing.T) {
		f := newExportFixture()

		library := domain.NewLibrary("lib-1", "default", now)
		categories := []*domain.Category{
			domain.NewCategory("cat-1", "lib-1", "engineering", "Prompts for engineers", now),
		}
		prompt := activePrompt()
		versions := []*domain.PromptVersion{
			{ID: "ver-1", PromptID: prompt.ID, VersionNumber: 1, Title: prompt.Title, Content: prompt.Content, ChangeSummary: "initial version", CreatedAt: now},
		}

		f.libraryRepo.On("GetByID", mock.Anything, "lib-1").Return(library, nil)
		f.categoryRepo.On("List", mock.Anything, "lib-1").Return(categories, nil)
		f.exportRepo.On("ListAllPrompts", mock.Anything, "lib-1").Return([]*domain.Prompt{prompt}, nil)
		f.exportRepo.On("GetVersions", mock.Anything, prompt.ID).Return(versions, nil)

		var uploadedKey string
		var uploadedBody []byte
		f.storage.On("PutObject", mock.Anything, mock.AnythingOfType("string"), "application/json", mock.Anything).
			Run(func(args mock.Arguments) {
				uploadedKey = args.String(1)
				uploadedBody = args.Get(3).([]byte)
			}).Return(nil)
		f.storage.On("GenerateDownloadURL", mock.Anything, mock.AnythingOfType("string")).
			Return("https://s3.example.com/presigned", nil)

		result, err := f.svc.Export(context.Background(), "lib-1", "key-1")

		require.NoError(t, err)
		assert.Equal(t, uploadedKey, result.Key)
		assert.True(t, strings.HasPrefix(result.Key, "exports/lib-1/"))
		assert.True(t, strings.HasSuffix(result.Key, ".json"))
		assert.Equal(t, "https://s3.example.com/presigned", result.DownloadURL)
		assert.Equal(t, 1, result.PromptCount)

		var snapshot ExportSnapshot
		require.NoError(t, json.Unmarshal(uploadedBody, &snapshot))
		assert.Equal(t, 1, snapshot.SchemaVersion)
		assert.Equal(t, "lib-1", snapshot.Library.ID)
		require.Len(t, snapshot.Categories, 1)
		assert.Equal(t, "engineering", snapshot.Categories[0].Name)
		require.Len(t, snapshot.Prompts, 1)
		assert.Equal(t, prompt.Title, snapshot.Prompts[0].Title)
		require.Len(t, snapshot.Prompts[0].Versions, 1)
		assert.Equal(t, "initial version", snapshot.Prompts[0].Versions[0].ChangeSummary)

		require.Len(t, f.auditor.entries, 1)
		entry := f.auditor.entries[0]
		assert.Equal(t, domain.AuditDataExport, entry.Action)
		assert.Equal(t, result.Key, entry.ResourceID)
		assert.Equal(t, 1, entry.Details["prompt_count"])
	})

	t.Run("exports an empty library", func(t *testing.T) {
		f := newExportFixture()

		f.libraryRepo.On("GetByID", mock.Anything, "lib-1").Return(domain.NewLibrary("lib-1", "default", now), nil)
		f.categoryRepo.On("List", mock.Anything, "lib-1").Return([]*domain.Category{}, nil)
		f.exportRepo.On("ListAllPrompts", mock.Anything, "lib-1").Return([]*domain.Prompt{}, nil)
		f.storage.On("PutObject", mock.Anything, mock.AnythingOfType("string"), "application/json", mock.Anything).Return(nil)
		f.storage.On("GenerateDownloadURL", mock.Anything, mock.AnythingOfType("string")).Return("https://s3.example.com/presigned", nil)

		result, err := f.svc.Export(context.Background(), "lib-1", "key-1")

		require.NoError(t, err)
		assert.Equal(t, 0, result.PromptCount)
		f.exportRepo.AssertNotCalled(t, "GetVersions", mock.Anything, mock.Anything)
	})

	t.Run("fails when the library does not exist", func(t *testing.T) {
		f := newExportFixture()

		f.libraryRepo.On("GetByID", mock.Anything, "lib-missing").Return(nil, domain.ErrLibraryNotFound)

		_, err := f.svc.Export(context.Background(), "lib-missing", "key-1")

		assert.ErrorIs(t, err, domain.ErrLibraryNotFound)
		f.storage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wraps upload failure as internal error", func(t *testing.T) {
		f := newExportFixture()

		f.libraryRepo.On("GetByID", mock.Anything, "lib-1").Return(domain.NewLibrary("lib-1", "default", now), nil)
		f.categoryRepo.On("List", mock.Anything, "lib-1").Return([]*domain.Category{}, nil)
		f.exportRepo.On("ListAllPrompts", mock.Anything, "lib-1").Return([]*domain.Prompt{}, nil)
		f.storage.On("PutObject", mock.Anything, mock.AnythingOfType("string"), "application/json", mock.Anything).
			Return(errors.New("bucket unreachable"))

		_, err := f.svc.Export(context.Background(), "lib-1", "key-1")

		require.Error(t, err)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeInternalError, domainErr.Code)
		assert.Empty(t, f.auditor.entries)
	})

	t.Run("wraps presign failure as internal error", func(t *testing.T) {
		f := newExportFixture()

		f.libraryRepo.On("GetByID", mock.Anything, "lib-1").Return(domain.NewLibrary("lib-1", "default", now), nil)
		f.categoryRepo.On("List", mock.Anything, "lib-1").Return([]*domain.Category{}, nil)
		f.exportRepo.On("ListAllPrompts", mock.Anything, "lib-1").Return([]*domain.Prompt{}, nil)
		f.storage.On("PutObject", mock.Anything, mock.AnythingOfType("string"), "application/json", mock.Anything).Return(nil)
		f.storage.On("GenerateDownloadURL", mock.Anything, mock.AnythingOfType("string")).
			Return("", errors.New("presign failed"))

		_, err := f.svc.Export(context.Background(), "lib-1", "key-1")

		require.Error(t, err)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeInternalError, domainErr.Code)
	})
}

func TestNoOpExportService(t *testing.T) {
	_, err := NoOpExportService{}.Export(context.Background(), "lib-1", "key-1")
	assert.ErrorIs(t, err, domain.ErrExportNotConfigured)
}
