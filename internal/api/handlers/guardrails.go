package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/promptuary/promptuary/internal/api"
	"github.com/promptuary/promptuary/internal/api/middleware"
	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/guardrails"
	"github.com/promptuary/promptuary/internal/service"
)

type GuardrailService interface {
	Validate(ctx context.Context, libraryID, content, actor string) (*guardrails.Report, error)
	Status(ctx context.Context) (*service.GuardrailStatus, error)
	GetConfig(ctx context.Context, libraryID string, configType domain.GuardrailConfigType) (*domain.GuardrailConfig, error)
	UpdateConfig(ctx context.Context, libraryID string, configType domain.GuardrailConfigType, configuration map[string]any) (*domain.GuardrailConfig, error)
}

type GuardrailHandler struct {
	svc GuardrailService
}

func NewGuardrailHandler(svc GuardrailService) *GuardrailHandler {
	return &GuardrailHandler{svc: svc}
}

type ValidateRequest struct {
	Content string `json:"content"`
}

type ValidateResponse struct {
	Allowed     bool     `json:"allowed"`
	RiskLevel   string   `json:"risk_level"`
	Violations  []string `json:"violations,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (h *GuardrailHandler) Validate(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	report, err := h.svc.Validate(r.Context(), libraryID, req.Content, middleware.GetActor(r.Context()))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := ValidateResponse{
		Allowed:     report.Allowed,
		RiskLevel:   string(report.RiskLevel),
		Suggestions: report.Suggestions,
	}
	for _, v := range report.Violations {
		resp.Violations = append(resp.Violations, string(v))
	}

	api.Success(w, http.StatusOK, resp)
}

type GuardrailStatusResponse struct {
	InputRules  int      `json:"input_rules"`
	OutputRules int      `json:"output_rules"`
	Categories  []string `json:"categories"`
	RulesPath   string   `json:"rules_path,omitempty"`
}

func (h *GuardrailHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Status(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, GuardrailStatusResponse{
		InputRules:  status.InputRules,
		OutputRules: status.OutputRules,
		Categories:  status.Categories,
		RulesPath:   status.RulesPath,
	})
}

type GuardrailConfigResponse struct {
	ID            string         `json:"id"`
	ConfigType    string         `json:"config_type"`
	Configuration map[string]any `json:"configuration"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}

func configToResponse(c *domain.GuardrailConfig) *GuardrailConfigResponse {
	return &GuardrailConfigResponse{
		ID:            c.ID,
		ConfigType:    string(c.ConfigType),
		Configuration: c.Configuration,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *GuardrailHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	configType := domain.GuardrailConfigType(r.URL.Query().Get("type"))
	if configType == "" {
		configType = domain.GuardrailInputValidation
	}

	config, err := h.svc.GetConfig(r.Context(), libraryID, configType)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, configToResponse(config))
}

type UpdateConfigRequest struct {
	ConfigType    string         `json:"config_type"`
	Configuration map[string]any `json:"configuration"`
}

func (h *GuardrailHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ConfigType == "" {
		api.Error(w, http.StatusBadRequest, "config_type is required")
		return
	}

	config, err := h.svc.UpdateConfig(r.Context(), libraryID, domain.GuardrailConfigType(req.ConfigType), req.Configuration)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, configToResponse(config))
}
