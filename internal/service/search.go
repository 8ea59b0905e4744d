package service

import (
	"context"
	"strings"
	"time"

	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/metrics"
	"github.com/promptuary/promptuary/internal/search"
	"github.com/promptuary/promptuary/internal/telemetry"
	"go.uber.org/zap"
)

const (
	// DefaultSearchLimit is the result count used when the caller does not set one.
	DefaultSearchLimit = 50
	// MaxSearchLimit caps the result count a caller may request.
	MaxSearchLimit = 100
	// snippetMaxChars bounds the match snippet attached to each result.
	snippetMaxChars = 200
	// semanticSimilarityFloor drops weak vector matches.
	semanticSimilarityFloor = 0.3
)

// SearchRepositoryInterface defines the repository interface for prompt search
type SearchRepositoryInterface interface {
	SearchPrompts(ctx context.Context, libraryID, query string, filters search.Filters, limit int) ([]search.Result, error)
	SearchByEmbedding(ctx context.Context, libraryID string, embedding []float32, minSimilarity float64, limit int) ([]SemanticHit, error)
}

// SemanticHit is one vector-search match with its cosine similarity.
type SemanticHit struct {
	Result     search.Result
	Similarity float64
}

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// SearchInput is one search request.
type SearchInput struct {
	LibraryID string
	Query     string
	Semantic  bool
	Filters   search.Filters
	Limit     int
	Actor     string
}

// SearchOutput carries the ordered results plus whether they came from the
// cache, so clients can observe hits.
type SearchOutput struct {
	Results    []search.Result
	Cached     bool
	DurationMs int64
}

// SearchService runs prompt searches: cache lookup, lexical SQL search, an
// optional semantic arm, local ranking, and snippet extraction. Successful
// searches are memoized and logged; failed ones leave the cache untouched.
type SearchService struct {
	repo     SearchRepositoryInterface
	embedder EmbeddingClient
	cache    *search.Cache
	logRepo  SearchLogRepositoryInterface
	logger   *zap.Logger
}

// NewSearchService creates a new SearchService instance. The embedder may be
// nil, which disables the semantic arm.
func NewSearchService(repo SearchRepositoryInterface, embedder EmbeddingClient, logRepo SearchLogRepositoryInterface, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		repo:     repo,
		embedder: embedder,
		cache:    search.NewCache(search.DefaultCacheCapacity),
		logRepo:  logRepo,
		logger:   logger,
	}
}

// InvalidateCache drops every memoized search. Called by the prompt and
// category services after mutations.
func (s *SearchService) InvalidateCache() {
	s.cache.Clear()
}

// Search runs one search request.
func (s *SearchService) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		LibraryID: input.LibraryID,
		Operation: "search",
	})
	defer span.End()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.ErrBlankSearchQuery
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	start := time.Now()

	// The cache key includes the library so tenants never see each
	// other's memoized results.
	key := search.Key(input.LibraryID+"\x00"+query, input.Semantic, input.Filters)
	if cached, ok := s.cache.Lookup(key); ok {
		metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
		return &SearchOutput{
			Results:    cached,
			Cached:     true,
			DurationMs: time.Since(start).Milliseconds(),
		}, nil
	}
	metrics.SearchCacheTotal.WithLabelValues("miss").Inc()

	results, err := s.repo.SearchPrompts(ctx, input.LibraryID, query, input.Filters, limit)
	if err != nil {
		return nil, err
	}

	if input.Semantic && s.embedder != nil {
		results, err = s.mergeSemantic(ctx, input.LibraryID, query, results, limit)
		if err != nil {
			return nil, err
		}
	}

	results = search.Order(results, query, input.Filters.Sort)
	if len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Snippet = Snippet(results[i], query)
	}

	s.cache.Store(key, results)

	duration := time.Since(start)
	s.logSearch(ctx, input, query, len(results), duration)

	return &SearchOutput{
		Results:    results,
		Cached:     false,
		DurationMs: duration.Milliseconds(),
	}, nil
}

// mergeSemantic runs the vector arm and appends semantic-only hits after
// the lexical ones, keeping their similarity order. Duplicates keep the
// lexical copy.
func (s *SearchService) mergeSemantic(ctx context.Context, libraryID, query string, lexical []search.Result, limit int) ([]search.Result, error) {
	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "semantic search failed", err)
	}

	hits, err := s.repo.SearchByEmbedding(ctx, libraryID, embedding, semanticSimilarityFloor, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(lexical))
	for _, r := range lexical {
		seen[r.ID] = struct{}{}
	}

	merged := lexical
	for _, hit := range hits {
		if _, dup := seen[hit.Result.ID]; dup {
			continue
		}
		seen[hit.Result.ID] = struct{}{}
		merged = append(merged, hit.Result)
	}
	return merged, nil
}

// logSearch writes the search log row. Failures are logged and swallowed;
// the search itself already succeeded.
func (s *SearchService) logSearch(ctx context.Context, input SearchInput, query string, resultCount int, duration time.Duration) {
	if s.logRepo == nil {
		return
	}

	entry := SearchLogEntry{
		LibraryID:   input.LibraryID,
		Query:       query,
		Semantic:    input.Semantic,
		Filters:     input.Filters,
		ResultCount: resultCount,
		DurationMs:  duration.Milliseconds(),
	}
	if _, err := s.logRepo.CreateSearchLog(ctx, entry); err != nil {
		s.logger.Warn("search log dropped: write failed",
			zap.String("library_id", input.LibraryID),
			zap.Error(err))
	}
}

// Snippet extracts ~200 characters of content around the first match of the
// query, preferring content over description. Falls back to the head of the
// content when nothing matches.
func Snippet(r search.Result, query string) string {
	q := strings.ToLower(strings.TrimSpace(query))

	source := r.Content
	idx := -1
	if q != "" {
		idx = strings.Index(strings.ToLower(source), q)
		if idx < 0 && r.Description != "" {
			if descIdx := strings.Index(strings.ToLower(r.Description), q); descIdx >= 0 {
				source, idx = r.Description, descIdx
			}
		}
	}

	if source == "" {
		return ""
	}
	if idx < 0 {
		idx = 0
	}

	start := idx - snippetMaxChars/4
	if start < 0 {
		start = 0
	}
	end := start + snippetMaxChars
	if end > len(source) {
		end = len(source)
	}

	snippet := source[start:end]
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(source) {
		snippet += "…"
	}
	return snippet
}
