package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/promptuary/promptuary/internal/api"
	"github.com/promptuary/promptuary/internal/api/middleware"
	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/service"
)

type PromptService interface {
	Create(ctx context.Context, input service.CreatePromptInput) (*domain.Prompt, error)
	Get(ctx context.Context, libraryID, id, actor string) (*domain.Prompt, error)
	Update(ctx context.Context, input service.UpdatePromptInput) (*domain.Prompt, error)
	Delete(ctx context.Context, libraryID, id, actor string) error
	Use(ctx context.Context, libraryID, id, actor string) (*domain.Prompt, error)
	SetFavorite(ctx context.Context, libraryID, id string, favorite bool) (*domain.Prompt, error)
	ListFavorites(ctx context.Context, libraryID string) ([]*domain.Prompt, error)
	List(ctx context.Context, input service.ListPromptsInput) (*service.ListPromptsOutput, error)
	Versions(ctx context.Context, libraryID, promptID string) ([]*domain.PromptVersion, error)
	GetVersion(ctx context.Context, libraryID, promptID string, number int64) (*domain.PromptVersion, error)
	RestoreVersion(ctx context.Context, libraryID, promptID string, number int64, actor string) (*domain.Prompt, error)
	Stats(ctx context.Context, libraryID string) (*service.PromptStats, error)
}

type PromptHandler struct {
	svc PromptService
}

func NewPromptHandler(svc PromptService) *PromptHandler {
	return &PromptHandler{svc: svc}
}

type CreatePromptRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	CategoryID  *string  `json:"category_id"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author"`
}

type UpdatePromptRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Content         string   `json:"content"`
	CategoryID      *string  `json:"category_id"`
	Tags            []string `json:"tags"`
	ChangeSummary   string   `json:"change_summary"`
	ExpectedVersion *int64   `json:"expected_version"`
}

type PromptResponse struct {
	ID             string   `json:"id"`
	LibraryID      string   `json:"library_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Content        string   `json:"content"`
	CategoryID     *string  `json:"category_id"`
	Tags           []string `json:"tags"`
	Author         string   `json:"author"`
	IsFavorite     bool     `json:"is_favorite"`
	UsageCount     int64    `json:"usage_count"`
	LastUsedAt     string   `json:"last_used_at,omitempty"`
	CurrentVersion int64    `json:"current_version"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

type PromptVersionResponse struct {
	ID            string   `json:"id"`
	PromptID      string   `json:"prompt_id"`
	VersionNumber int64    `json:"version_number"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags"`
	ChangeSummary string   `json:"change_summary"`
	CreatedAt     string   `json:"created_at"`
}

func promptToResponse(p *domain.Prompt) *PromptResponse {
	resp := &PromptResponse{
		ID:             p.ID,
		LibraryID:      p.LibraryID,
		Title:          p.Title,
		Description:    p.Description,
		Content:        p.Content,
		CategoryID:     p.CategoryID,
		Tags:           p.Tags,
		Author:         p.Author,
		IsFavorite:     p.IsFavorite,
		UsageCount:     p.UsageCount,
		CurrentVersion: p.CurrentVersion,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
	if p.LastUsedAt != nil {
		resp.LastUsedAt = p.LastUsedAt.Format(time.RFC3339)
	}
	return resp
}

func versionToResponse(v *domain.PromptVersion) *PromptVersionResponse {
	return &PromptVersionResponse{
		ID:            v.ID,
		PromptID:      v.PromptID,
		VersionNumber: v.VersionNumber,
		Title:         v.Title,
		Description:   v.Description,
		Content:       v.Content,
		Tags:          v.Tags,
		ChangeSummary: v.ChangeSummary,
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
}

func (h *PromptHandler) Create(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	prompt, err := h.svc.Create(r.Context(), service.CreatePromptInput{
		LibraryID:   libraryID,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		CategoryID:  req.CategoryID,
		Tags:        req.Tags,
		Author:      req.Author,
		Actor:       middleware.GetActor(r.Context()),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, promptToResponse(prompt))
}

func (h *PromptHandler) Get(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	prompt, err := h.svc.Get(r.Context(), libraryID, id, middleware.GetActor(r.Context()))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, promptToResponse(prompt))
}

type PromptListResponse struct {
	Items   []*PromptResponse `json:"items"`
	Cursor  string            `json:"cursor,omitempty"`
	HasMore bool              `json:"has_more"`
}

func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	output, err := h.svc.List(r.Context(), service.ListPromptsInput{
		LibraryID: libraryID,
		Cursor:    r.URL.Query().Get("cursor"),
		Limit:     limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*PromptResponse, len(output.Items))
	for i, p := range output.Items {
		responses[i] = promptToResponse(p)
	}

	api.Success(w, http.StatusOK, PromptListResponse{
		Items:   responses,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}

func (h *PromptHandler) Update(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req UpdatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	prompt, err := h.svc.Update(r.Context(), service.UpdatePromptInput{
		PromptID:        id,
		LibraryID:       libraryID,
		Title:           req.Title,
		Description:     req.Description,
		Content:         req.Content,
		CategoryID:      req.CategoryID,
		Tags:            req.Tags,
		ChangeSummary:   req.ChangeSummary,
		ExpectedVersion: req.ExpectedVersion,
		Actor:           middleware.GetActor(r.Context()),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, promptToResponse(prompt))
}

func (h *PromptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), libraryID, id, middleware.GetActor(r.Context())); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *PromptHandler) Use(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	prompt, err := h.svc.Use(r.Context(), libraryID, id, middleware.GetActor(r.Context()))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, promptToResponse(prompt))
}

type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

func (h *PromptHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt, err := h.svc.SetFavorite(r.Context(), libraryID, id, req.Favorite)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, promptToResponse(prompt))
}

func (h *PromptHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	prompts, err := h.svc.ListFavorites(r.Context(), libraryID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*PromptResponse, len(prompts))
	for i, p := range prompts {
		responses[i] = promptToResponse(p)
	}

	api.Success(w, http.StatusOK, responses)
}

func (h *PromptHandler) Versions(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	versions, err := h.svc.Versions(r.Context(), libraryID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*PromptVersionResponse, len(versions))
	for i, v := range versions {
		responses[i] = versionToResponse(v)
	}

	api.Success(w, http.StatusOK, responses)
}

func (h *PromptHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	number, err := strconv.ParseInt(chi.URLParam(r, "number"), 10, 64)
	if err != nil || number < 1 {
		api.Error(w, http.StatusBadRequest, "invalid version number")
		return
	}

	version, err := h.svc.GetVersion(r.Context(), libraryID, id, number)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, versionToResponse(version))
}

func (h *PromptHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	number, err := strconv.ParseInt(chi.URLParam(r, "number"), 10, 64)
	if err != nil || number < 1 {
		api.Error(w, http.StatusBadRequest, "invalid version number")
		return
	}

	prompt, err := h.svc.RestoreVersion(r.Context(), libraryID, id, number, middleware.GetActor(r.Context()))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, promptToResponse(prompt))
}

type PromptStatsResponse struct {
	TotalPrompts    int64                   `json:"total_prompts"`
	TotalFavorites  int64                   `json:"total_favorites"`
	TotalUsage      int64                   `json:"total_usage"`
	MostUsed        []*PromptResponse       `json:"most_used"`
	RecentlyUpdated []*PromptResponse       `json:"recently_updated"`
	ByCategory      []CategoryCountResponse `json:"by_category"`
}

type CategoryCountResponse struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	PromptCount  int64  `json:"prompt_count"`
}

func (h *PromptHandler) Stats(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.svc.Stats(r.Context(), libraryID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := PromptStatsResponse{
		TotalPrompts:   stats.TotalPrompts,
		TotalFavorites: stats.TotalFavorites,
		TotalUsage:     stats.TotalUsage,
	}
	for _, p := range stats.MostUsed {
		resp.MostUsed = append(resp.MostUsed, promptToResponse(p))
	}
	for _, p := range stats.RecentlyUpdated {
		resp.RecentlyUpdated = append(resp.RecentlyUpdated, promptToResponse(p))
	}
	for _, cc := range stats.ByCategory {
		resp.ByCategory = append(resp.ByCategory, CategoryCountResponse{
			CategoryID:   cc.CategoryID,
			CategoryName: cc.CategoryName,
			PromptCount:  cc.PromptCount,
		})
	}

	api.Success(w, http.StatusOK, resp)
}
