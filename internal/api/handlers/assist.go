package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/promptuary/promptuary/internal/api"
	"github.com/promptuary/promptuary/internal/api/middleware"
	"github.com/promptuary/promptuary/internal/service"
)

type AssistHandler struct {
	svc service.AssistServiceInterface
}

func NewAssistHandler(svc service.AssistServiceInterface) *AssistHandler {
	return &AssistHandler{svc: svc}
}

type SuggestionsRequest struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (h *AssistHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SuggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind, err := service.ParseSuggestionType(req.Type)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	suggestions, err := h.svc.Suggestions(r.Context(), libraryID, middleware.GetActor(r.Context()), kind, req.Topic)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

type ContentRequest struct {
	Content string `json:"content"`
}

type AssistTextResponse struct {
	Result string `json:"result"`
}

func (h *AssistHandler) Improve(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	improved, err := h.svc.Improve(r.Context(), libraryID, middleware.GetActor(r.Context()), req.Content)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AssistTextResponse{Result: improved})
}

func (h *AssistHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	analysis, err := h.svc.Analyze(r.Context(), libraryID, middleware.GetActor(r.Context()), req.Content)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AssistTextResponse{Result: analysis})
}

type AssistStatusResponse struct {
	Available      bool     `json:"available"`
	ChatModel      string   `json:"chat_model,omitempty"`
	EmbeddingModel string   `json:"embedding_model,omitempty"`
	Models         []string `json:"models,omitempty"`
	Error          string   `json:"error,omitempty"`
}

func (h *AssistHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Status(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AssistStatusResponse{
		Available:      status.Available,
		ChatModel:      status.ChatModel,
		EmbeddingModel: status.EmbeddingModel,
		Models:         status.Models,
		Error:          status.Error,
	})
}
