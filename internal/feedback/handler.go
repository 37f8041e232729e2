package feedback

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/voltmart/storefront/internal/auth"
	"github.com/voltmart/storefront/internal/domain"
)

// Store is satisfied by *FeedbackRepository.
type Store interface {
	Create(ctx context.Context, f *domain.Feedback) error
	ListByProduct(ctx context.Context, productID string) ([]domain.Feedback, error)
}

type ProductChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Handler struct {
	store    Store
	products ProductChecker
	logger   *slog.Logger
}

func NewHandler(store Store, products ProductChecker, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		products: products,
		logger:   logger,
	}
}

type createRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	productID := r.PathValue("id")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f := &domain.Feedback{
		UserID:    claims.UserID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := f.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	exists, err := h.products.Exists(r.Context(), productID)
	if err != nil {
		h.logger.Error("failed to check product", "error", err, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !exists {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	if err := h.store.Create(r.Context(), f); err != nil {
		h.logger.Error("failed to create feedback", "error", err, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("feedback created", "feedback_id", f.ID, "product_id", productID, "rating", f.Rating)
	h.writeJSON(w, http.StatusCreated, f)
}

func (h *Handler) HandleListByProduct(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	items, err := h.store.ListByProduct(r.Context(), productID)
	if err != nil {
		h.logger.Error("failed to list feedback", "error", err, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, items)
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
