package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voltmart/storefront/internal/domain"
)

func testMiddleware() (*Middleware, *TokenIssuer) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	return NewMiddleware(issuer, slog.New(slog.NewTextHandler(io.Discard, nil))), issuer
}

func TestAuthenticate(t *testing.T) {
	mw, issuer := testMiddleware()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok {
			t.Error("expected claims in context")
		} else if claims.UserID != "user-1" {
			t.Errorf("expected user-1, got %s", claims.UserID)
		}
		w.WriteHeader(http.StatusOK)
	})

	t.Run("passes valid bearer token through", func(t *testing.T) {
		token, err := issuer.Issue(&domain.User{ID: "user-1", Role: domain.RoleCustomer})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("rejects missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("rejects non-bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("rejects tampered token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		rec := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	mw, issuer := testMiddleware()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := mw.Authenticate(mw.RequireAdmin(next))

	t.Run("allows admin", func(t *testing.T) {
		token, _ := issuer.Issue(&domain.User{ID: "admin-1", Role: domain.RoleAdmin})
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		guarded.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("forbids customer", func(t *testing.T) {
		token, _ := issuer.Issue(&domain.User{ID: "user-1", Role: domain.RoleCustomer})
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		guarded.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("expected status 403, got %d", rec.Code)
		}
	})
}
