package cart

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voltmart/storefront/internal/auth"
	"github.com/voltmart/storefront/internal/domain"
)

type fakeStore struct {
	cart        *domain.Cart
	saveErr     error
	savedLines  []domain.CartLine
	saveVersion int64
}

func (f *fakeStore) Get(_ context.Context, userID string) (*domain.Cart, error) {
	if f.cart == nil || f.cart.UserID != userID {
		return nil, nil
	}
	return f.cart, nil
}

func (f *fakeStore) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	if cart, _ := f.Get(ctx, userID); cart != nil {
		return cart, nil
	}
	f.cart = &domain.Cart{ID: "cart-1", UserID: userID, Lines: []domain.CartLine{}, Version: 1}
	return f.cart, nil
}

func (f *fakeStore) SaveLines(_ context.Context, _ string, version int64, lines []domain.CartLine) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedLines = lines
	f.saveVersion = version
	return nil
}

type fakeProducts struct {
	known map[string]bool
}

func (f *fakeProducts) Exists(_ context.Context, id string) (bool, error) {
	return f.known[id], nil
}

func newTestHandler(store *fakeStore, products *fakeProducts) *Handler {
	return NewHandler(store, products, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func authedRequest(method, target, body, userID string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := auth.ContextWithClaims(req.Context(), &auth.Claims{UserID: userID, Role: domain.RoleCustomer})
	return req.WithContext(ctx)
}

func TestHandleAdd(t *testing.T) {
	t.Run("creates a cart with a single quantity-1 line", func(t *testing.T) {
		store := &fakeStore{}
		handler := newTestHandler(store, &fakeProducts{known: map[string]bool{"prod-a": true}})

		req := authedRequest(http.MethodPost, "/cart/items", `{"product_id":"prod-a"}`, "user-1")
		rec := httptest.NewRecorder()

		handler.HandleAdd(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(store.savedLines) != 1 || store.savedLines[0].Quantity != 1 {
			t.Errorf("unexpected saved lines: %+v", store.savedLines)
		}
	})

	t.Run("increments existing line by exactly one", func(t *testing.T) {
		store := &fakeStore{cart: &domain.Cart{
			ID:      "cart-1",
			UserID:  "user-1",
			Lines:   []domain.CartLine{{ProductID: "prod-a", Quantity: 2}},
			Version: 3,
		}}
		handler := newTestHandler(store, &fakeProducts{known: map[string]bool{"prod-a": true}})

		req := authedRequest(http.MethodPost, "/cart/items", `{"product_id":"prod-a"}`, "user-1")
		rec := httptest.NewRecorder()

		handler.HandleAdd(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if len(store.savedLines) != 1 {
			t.Fatalf("expected 1 line (no duplication), got %d", len(store.savedLines))
		}
		if store.savedLines[0].Quantity != 3 {
			t.Errorf("expected quantity 3, got %d", store.savedLines[0].Quantity)
		}
		if store.saveVersion != 3 {
			t.Errorf("expected save conditioned on version 3, got %d", store.saveVersion)
		}
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		store := &fakeStore{}
		handler := newTestHandler(store, &fakeProducts{known: map[string]bool{}})

		req := authedRequest(http.MethodPost, "/cart/items", `{"product_id":"ghost"}`, "user-1")
		rec := httptest.NewRecorder()

		handler.HandleAdd(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
		if store.savedLines != nil {
			t.Error("expected no save on unknown product")
		}
	})

	t.Run("rejects missing product_id", func(t *testing.T) {
		handler := newTestHandler(&fakeStore{}, &fakeProducts{})

		req := authedRequest(http.MethodPost, "/cart/items", `{}`, "user-1")
		rec := httptest.NewRecorder()

		handler.HandleAdd(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandleDecrement(t *testing.T) {
	mux := func(h *Handler) *http.ServeMux {
		m := http.NewServeMux()
		m.HandleFunc("POST /cart/items/{productId}/decrement", h.HandleDecrement)
		m.HandleFunc("DELETE /cart/items/{productId}", h.HandleRemove)
		return m
	}

	t.Run("removes the line when quantity reaches zero", func(t *testing.T) {
		store := &fakeStore{cart: &domain.Cart{
			ID:      "cart-1",
			UserID:  "user-1",
			Lines:   []domain.CartLine{{ProductID: "prod-a", Quantity: 1}},
			Version: 1,
		}}
		handler := newTestHandler(store, &fakeProducts{})

		req := authedRequest(http.MethodPost, "/cart/items/prod-a/decrement", "", "user-1")
		rec := httptest.NewRecorder()
		mux(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(store.savedLines) != 0 {
			t.Errorf("expected line to be gone from persisted list, got %+v", store.savedLines)
		}
	})

	t.Run("404 when product not in cart", func(t *testing.T) {
		store := &fakeStore{cart: &domain.Cart{
			ID:      "cart-1",
			UserID:  "user-1",
			Lines:   []domain.CartLine{{ProductID: "prod-a", Quantity: 1}},
			Version: 1,
		}}
		handler := newTestHandler(store, &fakeProducts{})

		req := authedRequest(http.MethodPost, "/cart/items/prod-x/decrement", "", "user-1")
		rec := httptest.NewRecorder()
		mux(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("version conflict surfaces as 409", func(t *testing.T) {
		store := &fakeStore{
			cart: &domain.Cart{
				ID:      "cart-1",
				UserID:  "user-1",
				Lines:   []domain.CartLine{{ProductID: "prod-a", Quantity: 2}},
				Version: 1,
			},
			saveErr: ErrVersionConflict,
		}
		handler := newTestHandler(store, &fakeProducts{})

		req := authedRequest(http.MethodPost, "/cart/items/prod-a/decrement", "", "user-1")
		rec := httptest.NewRecorder()
		mux(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("expected status 409, got %d", rec.Code)
		}
	})

	t.Run("remove deletes the line unconditionally", func(t *testing.T) {
		store := &fakeStore{cart: &domain.Cart{
			ID:      "cart-1",
			UserID:  "user-1",
			Lines:   []domain.CartLine{{ProductID: "prod-a", Quantity: 5}},
			Version: 1,
		}}
		handler := newTestHandler(store, &fakeProducts{})

		req := authedRequest(http.MethodDelete, "/cart/items/prod-a", "", "user-1")
		rec := httptest.NewRecorder()
		mux(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if len(store.savedLines) != 0 {
			t.Errorf("expected empty lines, got %+v", store.savedLines)
		}
	})
}

func TestHandleGet(t *testing.T) {
	t.Run("returns empty cart for a fresh user", func(t *testing.T) {
		handler := newTestHandler(&fakeStore{}, &fakeProducts{})

		req := authedRequest(http.MethodGet, "/cart", "", "user-1")
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var cart domain.Cart
		if err := json.Unmarshal(rec.Body.Bytes(), &cart); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(cart.Lines) != 0 {
			t.Errorf("expected no lines, got %+v", cart.Lines)
		}
	})

	t.Run("rejects unauthenticated request", func(t *testing.T) {
		handler := newTestHandler(&fakeStore{}, &fakeProducts{})

		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})
}
