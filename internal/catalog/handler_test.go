package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voltmart/storefront/internal/domain"
)

type fakeStore struct {
	products map[string]*domain.Product
	listed   struct {
		category domain.Category
		limit    int
	}
}

func (f *fakeStore) Create(_ context.Context, product *domain.Product) error {
	product.ID = "prod-1"
	f.products[product.ID] = product
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*domain.Product, error) {
	return f.products[id], nil
}

func (f *fakeStore) List(_ context.Context, category domain.Category, limit int) ([]domain.Product, error) {
	f.listed.category = category
	f.listed.limit = limit
	out := []domain.Product{}
	for _, p := range f.products {
		if category == "" || p.Category == category {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, product *domain.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) (bool, error) {
	_, ok := f.products[id]
	delete(f.products, id)
	return ok, nil
}

type fakeMedia struct {
	ids map[string]bool
}

func (f *fakeMedia) Exists(_ context.Context, id string) (bool, error) {
	return f.ids[id], nil
}

func newTestHandler(store Store, media MediaChecker) *Handler {
	return NewHandler(store, media, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleList(t *testing.T) {
	store := &fakeStore{products: map[string]*domain.Product{
		"prod-1": {ID: "prod-1", Name: "Volt Phone", Category: domain.CategoryPhones, Price: 1000, Stock: 3},
		"prod-2": {ID: "prod-2", Name: "Volt Watch", Category: domain.CategoryWatches, Price: 500, Stock: 1},
	}}
	handler := newTestHandler(store, nil)

	t.Run("filters by category", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/products?category=Phones", nil)
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var products []domain.Product
		if err := json.NewDecoder(rec.Body).Decode(&products); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(products) != 1 || products[0].ID != "prod-1" {
			t.Errorf("expected only the phone, got %+v", products)
		}
	})

	t.Run("rejects an unknown category", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/products?category=furniture", nil)
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects a negative limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/products?limit=-1", nil)
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("passes limit through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/products?limit=5", nil)
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if store.listed.limit != 5 {
			t.Errorf("expected limit 5, got %d", store.listed.limit)
		}
	})
}

func TestHandleCreate(t *testing.T) {
	t.Run("creates a valid product", func(t *testing.T) {
		store := &fakeStore{products: map[string]*domain.Product{}}
		handler := newTestHandler(store, nil)

		body := `{"name":"Volt Phone","price":1000,"stock":3,"category":"Phones"}`
		req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if _, ok := store.products["prod-1"]; !ok {
			t.Error("expected the product to be stored")
		}
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		handler := newTestHandler(&fakeStore{products: map[string]*domain.Product{}}, nil)

		body := `{"name":"Volt Phone","price":-1,"stock":3,"category":"Phones"}`
		req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects an unknown category", func(t *testing.T) {
		handler := newTestHandler(&fakeStore{products: map[string]*domain.Product{}}, nil)

		body := `{"name":"Volt Phone","price":1000,"stock":3,"category":"furniture"}`
		req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects a dangling media reference", func(t *testing.T) {
		handler := newTestHandler(
			&fakeStore{products: map[string]*domain.Product{}},
			&fakeMedia{ids: map[string]bool{}},
		)

		body := `{"name":"Volt Phone","price":1000,"stock":3,"category":"Phones","media_id":"media-ghost"}`
		req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandleUpdate(t *testing.T) {
	t.Run("patches only the provided fields", func(t *testing.T) {
		store := &fakeStore{products: map[string]*domain.Product{
			"prod-1": {ID: "prod-1", Name: "Volt Phone", Category: domain.CategoryPhones, Price: 1000, Stock: 3},
		}}
		handler := newTestHandler(store, nil)

		mux := http.NewServeMux()
		mux.HandleFunc("PATCH /admin/products/{id}", handler.HandleUpdate)

		req := httptest.NewRequest(http.MethodPatch, "/admin/products/prod-1", strings.NewReader(`{"stock":7}`))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got := store.products["prod-1"]
		if got.Stock != 7 {
			t.Errorf("expected stock 7, got %d", got.Stock)
		}
		if got.Price != 1000 || got.Name != "Volt Phone" {
			t.Errorf("untouched fields changed: %+v", got)
		}
	})

	t.Run("404 for a missing product", func(t *testing.T) {
		handler := newTestHandler(&fakeStore{products: map[string]*domain.Product{}}, nil)

		mux := http.NewServeMux()
		mux.HandleFunc("PATCH /admin/products/{id}", handler.HandleUpdate)

		req := httptest.NewRequest(http.MethodPatch, "/admin/products/ghost", strings.NewReader(`{"stock":7}`))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandleDelete(t *testing.T) {
	store := &fakeStore{products: map[string]*domain.Product{
		"prod-1": {ID: "prod-1", Name: "Volt Phone", Category: domain.CategoryPhones},
	}}
	handler := newTestHandler(store, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /admin/products/{id}", handler.HandleDelete)

	t.Run("deletes an existing product", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/admin/products/prod-1", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("expected status 204, got %d", rec.Code)
		}
	})

	t.Run("404 on the second delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/admin/products/prod-1", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}
