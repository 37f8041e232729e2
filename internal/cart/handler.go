package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/voltmart/storefront/internal/auth"
	"github.com/voltmart/storefront/internal/domain"
)

// Store is satisfied by *CartRepository.
type Store interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	SaveLines(ctx context.Context, cartID string, version int64, lines []domain.CartLine) error
}

// ProductChecker guards against lines pointing at products that never
// existed. Lines keep their product reference even if the product is
// deleted later; only the add is checked.
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

// HandleGet returns the caller's cart. A user who never added anything gets
// an empty line list, not a 404.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	cart, err := h.store.Get(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("failed to get cart", "error", err, "user_id", claims.UserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if cart == nil {
		cart = &domain.Cart{UserID: claims.UserID, Lines: []domain.CartLine{}}
	}

	h.writeJSON(w, http.StatusOK, cart)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

// HandleAdd adds a product to the caller's cart: a new quantity-1 line, or
// one more on the existing line.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	exists, err := h.products.Exists(r.Context(), req.ProductID)
	if err != nil {
		h.logger.Error("failed to check product", "error", err, "product_id", req.ProductID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !exists {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	cart, err := h.store.GetOrCreate(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("failed to get cart", "error", err, "user_id", claims.UserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	lines := domain.AddOrIncrementLine(cart.Lines, req.ProductID)
	h.save(w, r, cart, lines, "item added")
}

func (h *Handler) HandleIncrement(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, domain.IncrementLine, "quantity incremented")
}

func (h *Handler) HandleDecrement(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, domain.DecrementLine, "quantity decremented")
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, domain.RemoveLine, "item removed")
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, apply func([]domain.CartLine, string) ([]domain.CartLine, bool), logMsg string) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	cart, err := h.store.Get(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("failed to get cart", "error", err, "user_id", claims.UserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if cart == nil {
		h.writeError(w, http.StatusNotFound, "cart is empty")
		return
	}

	lines, found := apply(cart.Lines, productID)
	if !found {
		h.writeError(w, http.StatusNotFound, "product not in cart")
		return
	}

	h.save(w, r, cart, lines, logMsg)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, cart *domain.Cart, lines []domain.CartLine, logMsg string) {
	if err := h.store.SaveLines(r.Context(), cart.ID, cart.Version, lines); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			h.writeError(w, http.StatusConflict, "cart was modified concurrently, retry")
			return
		}
		h.logger.Error("failed to save cart", "error", err, "cart_id", cart.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	cart.Lines = lines
	cart.Version++

	h.logger.Info(logMsg, "cart_id", cart.ID, "user_id", cart.UserID)
	h.writeJSON(w, http.StatusOK, cart)
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
