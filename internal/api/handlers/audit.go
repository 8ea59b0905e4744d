package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/promptuary/promptuary/internal/api"
	"github.com/promptuary/promptuary/internal/api/middleware"
	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/service"
)

type AuditService interface {
	List(ctx context.Context, input service.ListAuditInput) (*service.ListAuditOutput, error)
	Statistics(ctx context.Context, libraryID string) (*service.AuditStatistics, error)
	SecurityEvents(ctx context.Context, libraryID string, limit int) ([]*domain.AuditLog, error)
}

type AuditHandler struct {
	svc AuditService
}

func NewAuditHandler(svc AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

type AuditLogResponse struct {
	ID           string         `json:"id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Actor        string         `json:"actor"`
	Details      map[string]any `json:"details,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	CreatedAt    string         `json:"created_at"`
}

func auditLogToResponse(l *domain.AuditLog) *AuditLogResponse {
	return &AuditLogResponse{
		ID:           l.ID,
		Action:       string(l.Action),
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		Actor:        l.Actor,
		Details:      l.Details,
		IPAddress:    l.IPAddress,
		UserAgent:    l.UserAgent,
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
	}
}

type AuditListResponse struct {
	Items   []*AuditLogResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()

	filter := service.AuditFilter{
		Action:       domain.AuditAction(q.Get("action")),
		ResourceType: q.Get("resource_type"),
	}
	if v := q.Get("after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid after timestamp")
			return
		}
		filter.After = &t
	}
	if v := q.Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid before timestamp")
			return
		}
		filter.Before = &t
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	output, err := h.svc.List(r.Context(), service.ListAuditInput{
		LibraryID: libraryID,
		Filter:    filter,
		Cursor:    q.Get("cursor"),
		Limit:     limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*AuditLogResponse, len(output.Items))
	for i, l := range output.Items {
		responses[i] = auditLogToResponse(l)
	}

	api.Success(w, http.StatusOK, AuditListResponse{
		Items:   responses,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}

type AuditStatisticsResponse struct {
	TotalEntries int64                `json:"total_entries"`
	ByAction     map[string]int64     `json:"by_action"`
	Last24hCount int64                `json:"last_24h_count"`
	TopActors    []ActorCountResponse `json:"top_actors"`
}

type ActorCountResponse struct {
	Actor string `json:"actor"`
	Count int64  `json:"count"`
}

func (h *AuditHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.svc.Statistics(r.Context(), libraryID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	byAction := make(map[string]int64, len(stats.ByAction))
	for action, count := range stats.ByAction {
		byAction[string(action)] = count
	}

	resp := AuditStatisticsResponse{
		TotalEntries: stats.TotalEntries,
		ByAction:     byAction,
		Last24hCount: stats.Last24hCount,
	}
	for _, ac := range stats.TopActors {
		resp.TopActors = append(resp.TopActors, ActorCountResponse{Actor: ac.Actor, Count: ac.Count})
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *AuditHandler) SecurityEvents(w http.ResponseWriter, r *http.Request) {
	libraryID := middleware.GetLibraryID(r.Context())
	if libraryID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := h.svc.SecurityEvents(r.Context(), libraryID, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*AuditLogResponse, len(events))
	for i, l := range events {
		responses[i] = auditLogToResponse(l)
	}

	api.Success(w, http.StatusOK, responses)
}
