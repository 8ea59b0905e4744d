package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/search"
)

// MockSearchRepository is a mock implementation of SearchRepositoryInterface
type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) SearchPrompts(ctx context.Context, libraryID, query string, filters search.Filters, limit int) ([]search.Result, error) {
	args := m.Called(ctx, libraryID, query, filters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]search.Result), args.Error(1)
}

func (m *MockSearchRepository) SearchByEmbedding(ctx context.Context, libraryID string, embedding []float32, minSimilarity float64, limit int) ([]SemanticHit, error) {
	args := m.Called(ctx, libraryID, embedding, minSimilarity, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SemanticHit), args.Error(1)
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockSearchLogRepository is a mock implementation of SearchLogRepositoryInterface
type MockSearchLogRepository struct {
	mock.Mock
}

func (m *MockSearchLogRepository) CreateSearchLog(ctx context.Context, entry SearchLogEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

func lexicalResult(id, title, content string) search.Result {
	return search.Result{ID: id, Title: title, Content: content}
}

func TestSearchService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects blank query", func(t *testing.T) {
		repo := new(MockSearchRepository)
		svc := NewSearchService(repo, nil, nil, zap.NewNop())

		result, err := svc.Search(ctx, SearchInput{LibraryID: "lib-1", Query: "   "})

		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrBlankSearchQuery)
	})

	t.Run("lexical search logs and returns results", func(t *testing.T) {
		repo := new(MockSearchRepository)
		logRepo := new(MockSearchLogRepository)
		svc := NewSearchService(repo, nil, logRepo, zap.NewNop())

		repo.On("SearchPrompts", mock.Anything, "lib-1", "reviewer", search.Filters{}, DefaultSearchLimit).
			Return([]search.Result{lexicalResult("p-1", "Code Reviewer", "You are a thorough reviewer.")}, nil)
		logRepo.On("CreateSearchLog", mock.Anything, mock.MatchedBy(func(entry SearchLogEntry) bool {
			return entry.LibraryID == "lib-1" && entry.Query == "reviewer" && entry.ResultCount == 1
		})).Return("log-1", nil)

		result, err := svc.Search(ctx, SearchInput{LibraryID: "lib-1", Query: "reviewer"})

		require.NoError(t, err)
		assert.False(t, result.Cached)
		require.Len(t, result.Results, 1)
		assert.Contains(t, result.Results[0].Snippet, "reviewer")
		repo.AssertExpectations(t)
		logRepo.AssertExpectations(t)
	})

	t.Run("second identical search hits the cache", func(t *testing.T) {
		repo := new(MockSearchRepository)
		logRepo := new(MockSearchLogRepository)
		svc := NewSearchService(repo, nil, logRepo, zap.NewNop())

		repo.On("SearchPrompts", mock.Anything, "lib-1", "reviewer", search.Filters{}, DefaultSearchLimit).
			Return([]search.Result{lexicalResult("p-1", "Code Reviewer", "content")}, nil).Once()
		logRepo.On("CreateSearchLog", mock.Anything, mock.Anything).Return("log-1", nil).Once()

		first, err := svc.Search(ctx, SearchInput{LibraryID: "lib-1", Query: "reviewer"})
		require.NoError(t, err)
		assert.False(t, first.Cached)

		second, err := svc.Search(ctx, SearchInput{LibraryID: "lib-1", Query: "reviewer"})
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, first.Results, second.Results)

		repo.AssertExpectations(t)
	})

	t.Run("invalidation forces a fresh search", func(t *testing.T) {
		repo := new(MockSearchRepository)
		svc := NewSearchService(repo, nil, nil, zap.NewNop())

		repo.On("SearchPrompts", mock.Anything, "lib-1", "reviewer", search.Filters{}, DefaultSearchLimit).
			Return([]search.Result{}, nil).Twice()

		_, err := svc.Search(ctx, SearchInput{LibraryID: "lib-1", Query: "reviewer"})
		require.NoError(t, err)

		svc.InvalidateCache()

		result, err := svc.Search(ctx, SearchInput{LibraryID: "lib-1", Query: "reviewer"})
		require.NoError(t, err)
		assert.False(t, result.Cached)

		repo.AssertExpectations(t)
	})

	t.Run("different libraries never share cache entries", func(t *testing.T) {
		repo := new(MockSearchRepository)
		svc := NewSearchService(repo, nil, nil, zap.NewNop())

		repo.On("SearchPrompts", mock.Anything, "lib-1", "reviewer", search.Filters{}, DefaultSearchLimit).
			Return([]search.Result{lexicalResult("p-1", "A", "a")}, nil).Once()
		repo.On("SearchPrompts", mock.Anything, "lib-2", "reviewer", search.Filters{}, DefaultSearchLimit).
			Return([]search.Result{lexicalResult("p-2", "B", "b")}, nil).Once()

		first, err := svc.Search(ctx, SearchInput{LibraryID: "lib-1", Query: "reviewer"})
		require.NoError(t, err)

		second, err := svc.Search(ctx, SearchInput{LibraryID: "lib-2", Query: "reviewer"})
		require.NoError(t, err)

		assert.False(t, second.Cached)
		assert.NotEqual(t, first.Results[0].ID, second.Results[0].ID)
		repo.AssertExpectations(t)
	})

	t.Run("semantic arm appends non-duplicate hits", func(t *testing.T) {
		repo := new(MockSearchRepository)
		embedder := new(MockEmbeddingClient)
		svc := NewSearchService(repo, embedder, nil, zap.NewNop())

		embedding := []float32{0.1, 0.2, 0.3}
		embedder.On("GenerateEmbedding", mock.Anything, "reviewer").Return(embedding, nil)

		repo.On("SearchPrompts", mock.Anything, "lib-1", "reviewer", search.Filters{}, DefaultSearchLimit).
			Return([]search.Result{lexicalResult("p-1", "Code Reviewer", "content")}, nil)
		repo.On("SearchByEmbedding", mock.Anything, "lib-1", embedding, 0.3, DefaultSearchLimit).
			Return([]SemanticHit{
				{Result: lexicalResult("p-1", "Code Reviewer", "content"), Similarity: 0.9},
				{Result: lexicalResult("p-2", "PR Feedback", "content"), Similarity: 0.7},
			}, nil)

		result, err := svc.Search(ctx, SearchInput{LibraryID: "lib-1", Query: "reviewer", Semantic: true})

		require.NoError(t, err)
		require.Len(t, result.Results, 2)
		assert.Equal(t, "p-1", result.Results[0].ID)
		assert.Equal(t, "p-2", result.Results[1].ID)
		repo.AssertExpectations(t)
		embedder.AssertExpectations(t)
	})

	t.Run("embedding failure surfaces as internal error", func(t *testing.T) {
		repo := new(MockSearchRepository)
		embedder := new(MockEmbeddingClient)
		svc := NewSearchService(repo, embedder, nil, zap.NewNop())

		repo.On("SearchPrompts", mock.Anything, "lib-1", "reviewer", search.Filters{}, DefaultSearchLimit).
			Return([]search.Result{}, nil)
		embedder.On("GenerateEmbedding", mock.Anything, "reviewer").Return(nil, errors.New("model down"))

		result, err := svc.Search(ctx, SearchInput{LibraryID: "lib-1", Query: "reviewer", Semantic: true})

		require.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("semantic flag without embedder stays lexical", func(t *testing.T) {
		repo := new(MockSearchRepository)
		svc := NewSearchService(repo, nil, nil, zap.NewNop())

		repo.On("SearchPrompts", mock.Anything, "lib-1", "reviewer", search.Filters{}, DefaultSearchLimit).
			Return([]search.Result{}, nil)

		result, err := svc.Search(ctx, SearchInput{LibraryID: "lib-1", Query: "reviewer", Semantic: true})

		require.NoError(t, err)
		assert.Empty(t, result.Results)
		repo.AssertNotCalled(t, "SearchByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed search log is swallowed", func(t *testing.T) {
		repo := new(MockSearchRepository)
		logRepo := new(MockSearchLogRepository)
		svc := NewSearchService(repo, nil, logRepo, zap.NewNop())

		repo.On("SearchPrompts", mock.Anything, "lib-1", "reviewer", search.Filters{}, DefaultSearchLimit).
			Return([]search.Result{}, nil)
		logRepo.On("CreateSearchLog", mock.Anything, mock.Anything).Return("", errors.New("log table gone"))

		result, err := svc.Search(ctx, SearchInput{LibraryID: "lib-1", Query: "reviewer"})

		require.NoError(t, err)
		assert.NotNil(t, result)
	})

	t.Run("limit is clamped to the maximum", func(t *testing.T) {
		repo := new(MockSearchRepository)
		svc := NewSearchService(repo, nil, nil, zap.NewNop())

		repo.On("SearchPrompts", mock.Anything, "lib-1", "reviewer", search.Filters{}, MaxSearchLimit).
			Return([]search.Result{}, nil)

		_, err := svc.Search(ctx, SearchInput{LibraryID: "lib-1", Query: "reviewer", Limit: 5000})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestSnippet(t *testing.T) {
	t.Run("centers on the first match", func(t *testing.T) {
		content := "Lorem ipsum dolor sit amet, consectetur adipiscing elit. " +
			"The reviewer checks every diff carefully. " +
			"Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua. " +
			"Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris " +
			"nisi ut aliquip ex ea commodo consequat."
		r := search.Result{Content: content}

		snippet := Snippet(r, "reviewer")

		assert.Contains(t, snippet, "reviewer")
		assert.LessOrEqual(t, len(snippet), snippetMaxChars+len("……"))
	})

	t.Run("falls back to description", func(t *testing.T) {
		r := search.Result{
			Content:     "Nothing relevant here.",
			Description: "A prompt for thorough code review sessions.",
		}

		snippet := Snippet(r, "code review")

		assert.Contains(t, snippet, "code review")
	})

	t.Run("falls back to content head when nothing matches", func(t *testing.T) {
		r := search.Result{Content: "Short content."}

		snippet := Snippet(r, "zzz")

		assert.Equal(t, "Short content.", snippet)
	})

	t.Run("empty content yields empty snippet", func(t *testing.T) {
		assert.Empty(t, Snippet(search.Result{}, "query"))
	})
}
