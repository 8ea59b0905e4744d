package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/promptuary/promptuary/internal/api"
	"github.com/promptuary/promptuary/internal/theme"
)

type ThemeService interface {
	Generate(ctx context.Context, name, baseColor string) (*theme.Theme, error)
	Get(ctx context.Context, id string) (*theme.Theme, error)
	List(ctx context.Context) ([]*theme.Theme, error)
	CSS(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

type ThemeHandler struct {
	svc ThemeService
}

func NewThemeHandler(svc ThemeService) *ThemeHandler {
	return &ThemeHandler{svc: svc}
}

type GenerateThemeRequest struct {
	Name      string `json:"name"`
	BaseColor string `json:"base_color"`
}

type ThemeResponse struct {
	ID        string                       `json:"id"`
	Name      string                       `json:"name"`
	BaseColor string                       `json:"base_color"`
	BuiltIn   bool                         `json:"built_in"`
	Palettes  map[string]map[string]string `json:"palettes"`
	CreatedAt string                       `json:"created_at"`
}

func themeToResponse(t *theme.Theme) *ThemeResponse {
	palettes := make(map[string]map[string]string, len(t.Palettes))
	for role, palette := range t.Palettes {
		shades := make(map[string]string, len(theme.ShadeKeys))
		for _, key := range theme.ShadeKeys {
			shades[strconv.Itoa(key)] = palette[key].Hex()
		}
		palettes[string(role)] = shades
	}

	return &ThemeResponse{
		ID:        t.ID,
		Name:      t.Name,
		BaseColor: t.Base.Hex(),
		BuiltIn:   t.BuiltIn,
		Palettes:  palettes,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func (h *ThemeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.BaseColor == "" {
		api.Error(w, http.StatusBadRequest, "base_color is required")
		return
	}

	t, err := h.svc.Generate(r.Context(), req.Name, req.BaseColor)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, themeToResponse(t))
}

func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, themeToResponse(t))
}

func (h *ThemeHandler) List(w http.ResponseWriter, r *http.Request) {
	themes, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ThemeResponse, len(themes))
	for i, t := range themes {
		responses[i] = themeToResponse(t)
	}

	api.Success(w, http.StatusOK, responses)
}

// CSS serves the theme's custom properties as a stylesheet, not JSON.
func (h *ThemeHandler) CSS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	css, err := h.svc.CSS(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(css))
}

func (h *ThemeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "deleted"})
}
