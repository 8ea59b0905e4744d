package middleware

import (
	"net/http"

	"github.com/promptuary/promptuary/internal/api"
	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/ratelimit"
	"github.com/promptuary/promptuary/internal/service"
	"go.uber.org/zap"
)

// RateLimit throttles requests per library. Rejections are audited as
// RATE_LIMIT_EXCEEDED. A limiter failure fails open: a broken Redis must
// not take the API down with it.
func RateLimit(limiter ratelimit.Limiter, auditor service.Auditor, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			libraryID := GetLibraryID(r.Context())
			if libraryID == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.Allow(r.Context(), libraryID)
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				auditor.Record(r.Context(), service.AuditEntry{
					LibraryID:    libraryID,
					Action:       domain.AuditRateLimitExceeded,
					ResourceType: "request",
					Actor:        GetActor(r.Context()),
					Details: map[string]any{
						"path":   r.URL.Path,
						"method": r.Method,
					},
				})
				api.HandleError(w, domain.ErrRateLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
