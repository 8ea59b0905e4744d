package handlers

import (
	"net/http"
	"time"

	"github.com/promptuary/promptuary/internal/api"
	"github.com/promptuary/promptuary/internal/api/middleware"
	"github.com/promptuary/promptuary/internal/service"
)

type ExportHandler struct {
	svc service.ExportServiceInterface
}

func NewExportHandler(svc service.ExportServiceInterface) *ExportHandler {
	return &ExportHandler{svc: svc}
}

type ExportResponse struct {
	Key         string `json:"key"`
	DownloadURL string `json:"download_url"`
	PromptCount int    `json:"prompt_count"`
	ExportedAt  string `json:"exported_at"`
}

func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.svc.Export(r.Context(), libraryID, middleware.GetActor(r.Context()))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ExportResponse{
		Key:         result.Key,
		DownloadURL: result.DownloadURL,
		PromptCount: result.PromptCount,
		ExportedAt:  result.ExportedAt.Format(time.RFC3339),
	})
}
