package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/voltmart/storefront/internal/domain"
)

// Store is satisfied by *ProductRepository.
type Store interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, category domain.Category, limit int) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) (bool, error)
}

// MediaChecker verifies that a referenced media document exists.
type MediaChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Handler struct {
	store  Store
	media  MediaChecker
	logger *slog.Logger
}

func NewHandler(store Store, media MediaChecker, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		media:  media,
		logger: logger,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	category := domain.Category(r.URL.Query().Get("category"))
	if category != "" && !domain.ValidCategory(category) {
		h.writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	products, err := h.store.List(r.Context(), category, limit)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	product, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "product_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       int64           `json:"price"`
	Stock       int             `json:"stock"`
	Category    domain.Category `json:"category"`
	MediaID     *string         `json:"media_id"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product := &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		MediaID:     req.MediaID,
	}

	if err := product.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.checkMedia(w, r, product.MediaID) {
		return
	}

	if err := h.store.Create(r.Context(), product); err != nil {
		h.logger.Error("failed to create product", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	h.writeJSON(w, http.StatusCreated, product)
}

type productUpdateRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *int64           `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *domain.Category `json:"category"`
	MediaID     *string          `json:"media_id"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req productUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "product_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.MediaID != nil {
		if *req.MediaID == "" {
			product.MediaID = nil
		} else {
			product.MediaID = req.MediaID
		}
	}

	if err := product.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.checkMedia(w, r, product.MediaID) {
		return
	}

	if err := h.store.Update(r.Context(), product); err != nil {
		h.logger.Error("failed to update product", "error", err, "product_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("product updated", "product_id", product.ID)
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete product", "error", err, "product_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !deleted {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// checkMedia writes an error response and returns false when a referenced
// media id does not exist.
func (h *Handler) checkMedia(w http.ResponseWriter, r *http.Request, mediaID *string) bool {
	if mediaID == nil || h.media == nil {
		return true
	}

	exists, err := h.media.Exists(r.Context(), *mediaID)
	if err != nil {
		h.logger.Error("failed to check media", "error", err, "media_id", *mediaID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return false
	}
	if !exists {
		h.writeError(w, http.StatusBadRequest, "referenced media does not exist")
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
