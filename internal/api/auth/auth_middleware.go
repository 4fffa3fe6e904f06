package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aura-analytics/aura-backend/internal/api"
)

// Typed context key so identity values cannot collide with other packages.
type contextKey string

const identityKey contextKey = "authIdentity"

// Identity is the verified identity attached to a request after token
// verification. It is rebuilt per request and never persisted.
type Identity struct {
	UserID string
	Email  string
}

// IdentityFromContext returns the verified identity attached by the
// authentication middleware, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// extractBearerToken returns the token from an "Authorization: Bearer <token>"
// header. Any other form (missing header, wrong scheme, extra segments) yields
// the empty string and is treated as no token at all.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
		return ""
	}
	return headerParts[1]
}

// Authenticate is middleware that protects routes: requests without a valid
// bearer token are rejected with 401 before the handler runs.
func Authenticate(tokens TokenService, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger.With(slog.String("middleware", "Authenticate"))

			tokenString := extractBearerToken(r)
			if tokenString == "" {
				l.WarnContext(r.Context(), "Missing or malformed Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "No token provided. Please login.")
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				l.WarnContext(r.Context(), "Token verification failed", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, Identity{
				UserID: claims.UserID,
				Email:  claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate attaches an identity when a valid token is present but
// lets the request through either way. Verification failures are deliberately
// suppressed; the handler simply sees no identity.
func OptionalAuthenticate(tokens TokenService, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearerToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				logger.DebugContext(r.Context(), "Optional auth token rejected", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, Identity{
				UserID: claims.UserID,
				Email:  claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
