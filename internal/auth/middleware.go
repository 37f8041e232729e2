package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/voltmart/storefront/internal/domain"
)

type contextKey struct{}

var claimsKey contextKey

// ClaimsFrom returns the verified claims attached by Authenticate.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// ContextWithClaims attaches claims directly, bypassing token verification.
// Handlers under test use it to impersonate a caller.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Middleware verifies bearer tokens and gates admin routes.
type Middleware struct {
	issuer *TokenIssuer
	logger *slog.Logger
}

func NewMiddleware(issuer *TokenIssuer, logger *slog.Logger) *Middleware {
	return &Middleware{issuer: issuer, logger: logger}
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// attaches the claims to the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			m.unauthorized(w, "missing authorization header")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			m.unauthorized(w, "invalid authorization header")
			return
		}

		claims, err := m.issuer.Verify(token)
		if err != nil {
			m.unauthorized(w, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects non-admin claims. It must run inside Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok || claims.Role != domain.RoleAdmin {
			m.writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	m.writeError(w, http.StatusUnauthorized, message)
}

func (m *Middleware) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		m.logger.Error("failed to encode error response", "error", err)
	}
}
