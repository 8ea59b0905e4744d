package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/promptuary/promptuary/internal/api"
	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/service"
	"go.uber.org/zap"
)

type contextKey string

const (
	LibraryIDKey contextKey = "library_id"
	ActorKey     contextKey = "actor"
)

type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (*domain.APIKey, error)
}

// APIKeyAuth authenticates requests by bearer token. On success the key's
// library ID and name land in the request context, along with the client
// IP and user agent so downstream audit rows can carry them.
func APIKeyAuth(validator AuthValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			key, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				logger.Warn("api key rejected",
					zap.String("remote_addr", clientIP(r)),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err),
				)
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			ctx := context.WithValue(r.Context(), LibraryIDKey, key.LibraryID)
			ctx = context.WithValue(ctx, ActorKey, key.Name)
			ctx = service.WithRequestMeta(ctx, service.RequestMeta{
				IPAddress: clientIP(r),
				UserAgent: r.UserAgent(),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetLibraryID(ctx context.Context) string {
	libraryID, _ := ctx.Value(LibraryIDKey).(string)
	return libraryID
}

// GetActor returns the name of the API key that authenticated the request.
func GetActor(ctx context.Context) string {
	actor, _ := ctx.Value(ActorKey).(string)
	return actor
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
