package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/promptuary/promptuary/internal/api"
	"github.com/promptuary/promptuary/internal/api/middleware"
	"github.com/promptuary/promptuary/internal/domain"
)

type AuthService interface {
	GetLibrary(ctx context.Context, id string) (*domain.Library, error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type ValidateKeyResponse struct {
	LibraryID   string `json:"library_id"`
	LibraryName string `json:"library_name"`
	KeyName     string `json:"key_name"`
	ValidatedAt string `json:"validated_at"`
}

// Validate introspects the key that authenticated this request. Reaching
// the handler at all means the middleware accepted it.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	library, err := h.svc.GetLibrary(r.Context(), libraryID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ValidateKeyResponse{
		LibraryID:   library.ID,
		LibraryName: library.Name,
		KeyName:     middleware.GetActor(r.Context()),
		ValidatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}
