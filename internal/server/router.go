package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/promptuary/promptuary/internal/api"
	"github.com/promptuary/promptuary/internal/api/handlers"
	"github.com/promptuary/promptuary/internal/api/middleware"
	"github.com/promptuary/promptuary/internal/metrics"
	"github.com/promptuary/promptuary/internal/ratelimit"
	"github.com/promptuary/promptuary/internal/service"
	"go.uber.org/zap"
)

type RouterConfig struct {
	AuthValidator    middleware.AuthValidator
	Limiter          ratelimit.Limiter
	Auditor          service.Auditor
	Logger           *zap.Logger
	PromptHandler    *handlers.PromptHandler
	CategoryHandler  *handlers.CategoryHandler
	SearchHandler    *handlers.SearchHandler
	ThemeHandler     *handlers.ThemeHandler
	AssistHandler    *handlers.AssistHandler
	GuardrailHandler *handlers.GuardrailHandler
	AuditHandler     *handlers.AuditHandler
	ExportHandler    *handlers.ExportHandler
	AuthHandler      *handlers.AuthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(metrics.Middleware())
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	rateLimited := middleware.RateLimit(cfg.Limiter, cfg.Auditor, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator, cfg.Logger))

		r.Route("/prompts", func(r chi.Router) {
			r.Post("/", cfg.PromptHandler.Create)
			r.Get("/", cfg.PromptHandler.List)
			r.Get("/search", cfg.SearchHandler.Search)
			r.Get("/favorites", cfg.PromptHandler.ListFavorites)
			r.Get("/stats", cfg.PromptHandler.Stats)
			r.Get("/{id}", cfg.PromptHandler.Get)
			r.Put("/{id}", cfg.PromptHandler.Update)
			r.Delete("/{id}", cfg.PromptHandler.Delete)
			r.Post("/{id}/favorite", cfg.PromptHandler.SetFavorite)
			r.Post("/{id}/use", cfg.PromptHandler.Use)
			r.Get("/{id}/versions", cfg.PromptHandler.Versions)
			r.Get("/{id}/versions/{number}", cfg.PromptHandler.GetVersion)
			r.Post("/{id}/versions/{number}/restore", cfg.PromptHandler.RestoreVersion)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", cfg.CategoryHandler.Create)
			r.Get("/", cfg.CategoryHandler.List)
			r.Get("/stats", cfg.CategoryHandler.Stats)
			r.Get("/{id}", cfg.CategoryHandler.Get)
			r.Put("/{id}", cfg.CategoryHandler.Update)
			r.Delete("/{id}", cfg.CategoryHandler.Delete)
		})

		r.Route("/themes", func(r chi.Router) {
			r.Post("/", cfg.ThemeHandler.Generate)
			r.Get("/", cfg.ThemeHandler.List)
			r.Get("/{id}", cfg.ThemeHandler.Get)
			r.Get("/{id}/css", cfg.ThemeHandler.CSS)
			r.Delete("/{id}", cfg.ThemeHandler.Delete)
		})

		// Model-backed endpoints are the expensive ones, so only they
		// sit behind the rate limiter.
		r.Route("/assist", func(r chi.Router) {
			r.Use(rateLimited)
			r.Post("/suggestions", cfg.AssistHandler.Suggestions)
			r.Post("/improve", cfg.AssistHandler.Improve)
			r.Post("/analyze", cfg.AssistHandler.Analyze)
			r.Get("/status", cfg.AssistHandler.Status)
		})

		r.Route("/guardrails", func(r chi.Router) {
			r.With(rateLimited).Post("/validate", cfg.GuardrailHandler.Validate)
			r.Get("/status", cfg.GuardrailHandler.Status)
			r.Get("/config", cfg.GuardrailHandler.GetConfig)
			r.Put("/config", cfg.GuardrailHandler.UpdateConfig)
		})

		r.Route("/audit-logs", func(r chi.Router) {
			r.Get("/", cfg.AuditHandler.List)
			r.Get("/statistics", cfg.AuditHandler.Statistics)
			r.Get("/security-events", cfg.AuditHandler.SecurityEvents)
		})

		r.Post("/export", cfg.ExportHandler.Export)
		r.Get("/auth/validate", cfg.AuthHandler.Validate)
	})

	return r
}
