package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/promptuary/promptuary/internal/api"
	"github.com/promptuary/promptuary/internal/api/middleware"
	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/service"
)

type CategoryService interface {
	Create(ctx context.Context, input service.CreateCategoryInput) (*domain.Category, error)
	Get(ctx context.Context, libraryID, id string) (*domain.Category, error)
	List(ctx context.Context, libraryID string) ([]*domain.Category, error)
	Update(ctx context.Context, input service.UpdateCategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, libraryID, id, actor string) error
	Stats(ctx context.Context, libraryID string) ([]service.CategoryCount, error)
}

type CategoryHandler struct {
	svc CategoryService
}

func NewCategoryHandler(svc CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryResponse struct {
	ID          string `json:"id"`
	LibraryID   string `json:"library_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func categoryToResponse(c *domain.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          c.ID,
		LibraryID:   c.LibraryID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	category, err := h.svc.Create(r.Context(), service.CreateCategoryInput{
		LibraryID:   libraryID,
		Name:        req.Name,
		Description: req.Description,
		Actor:       middleware.GetActor(r.Context()),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, categoryToResponse(category))
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	category, err := h.svc.Get(r.Context(), libraryID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, categoryToResponse(category))
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	categories, err := h.svc.List(r.Context(), libraryID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		responses[i] = categoryToResponse(c)
	}

	api.Success(w, http.StatusOK, responses)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	category, err := h.svc.Update(r.Context(), service.UpdateCategoryInput{
		CategoryID:  id,
		LibraryID:   libraryID,
		Name:        req.Name,
		Description: req.Description,
		Actor:       middleware.GetActor(r.Context()),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, categoryToResponse(category))
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *CategoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	counts, err := h.svc.Stats(r.Context(), libraryID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]CategoryCountResponse, len(counts))
	for i, cc := range counts {
		responses[i] = CategoryCountResponse{
			CategoryID:   cc.CategoryID,
			CategoryName: cc.CategoryName,
			PromptCount:  cc.PromptCount,
		}
	}

	api.Success(w, http.StatusOK, responses)
}
