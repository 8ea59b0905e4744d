package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/promptuary/promptuary/internal/api"
	"github.com/promptuary/promptuary/internal/api/middleware"
	"github.com/promptuary/promptuary/internal/search"
	"github.com/promptuary/promptuary/internal/service"
)

type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchResultResponse struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Snippet    string   `json:"snippet"`
	Tags       []string `json:"tags"`
	Category   string   `json:"category,omitempty"`
	UsageCount int64    `json:"usage_count"`
	CreatedAt  string   `json:"created_at"`
	Score      int      `json:"score"`
}

type SearchResponse struct {
	Results    []SearchResultResponse `json:"results"`
	Cached     bool                   `json:"cached"`
	DurationMs int64                  `json:"duration_ms"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()

	sort, err := search.ParseSortMode(q.Get("sort"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid sort mode")
		return
	}

	filters := search.Filters{
		CategoryID: q.Get("category_id"),
		Author:     q.Get("author"),
		Sort:       sort,
	}
	if tags := q.Get("tags"); tags != "" {
		filters.Tags = strings.Split(tags, ",")
	}
	if v := q.Get("min_usage"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid min_usage")
			return
		}
		filters.MinUsageCount = &n
	}
	if v := q.Get("max_usage"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid max_usage")
			return
		}
		filters.MaxUsageCount = &n
	}
	if v := q.Get("created_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid created_after")
			return
		}
		filters.CreatedAfter = &t
	}
	if v := q.Get("created_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid created_before")
			return
		}
		filters.CreatedBefore = &t
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	output, err := h.svc.Search(r.Context(), service.SearchInput{
		LibraryID: libraryID,
		Query:     q.Get("q"),
		Semantic:  q.Get("semantic") == "true",
		Filters:   filters,
		Limit:     limit,
		Actor:     middleware.GetActor(r.Context()),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]SearchResultResponse, len(output.Results))
	for i, res := range output.Results {
		results[i] = SearchResultResponse{
			ID:         res.ID,
			Title:      res.Title,
			Snippet:    res.Snippet,
			Tags:       res.Tags,
			Category:   res.Category,
			UsageCount: res.UsageCount,
			CreatedAt:  res.CreatedAt.Format(time.RFC3339),
			Score:      res.Score,
		}
	}

	api.Success(w, http.StatusOK, SearchResponse{
		Results:    results,
		Cached:     output.Cached,
		DurationMs: output.DurationMs,
	})
}
