package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/voltmart/storefront/internal/auth"
	"github.com/voltmart/storefront/internal/config"
	"github.com/voltmart/storefront/internal/domain"
)

// Store is satisfied by *OrderRepository.
type Store interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type Handler struct {
	store     Store
	guardMode config.StatusGuardMode
	logger    *slog.Logger
}

func NewHandler(store Store, guardMode config.StatusGuardMode, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		guardMode: guardMode,
		logger:    logger,
	}
}

// HandleListMine returns the caller's own orders.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	orders, err := h.store.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err, "user_id", claims.UserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

// HandleGet returns one order, visible to its owner and to admins.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil || (order.UserID != claims.UserID && claims.Role != domain.RoleAdmin) {
		// A foreign order id looks the same as a missing one.
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// HandleUpdateStatus is the admin status edit. In manual mode any status may
// be set to any other; strict mode enforces the guarded lifecycle.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !domain.ValidStatus(req.Status) {
		h.writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	if h.guardMode == config.StatusGuardStrict {
		current, err := h.store.GetByID(r.Context(), id)
		if err != nil {
			h.logger.Error("failed to get order", "error", err, "order_id", id)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if current == nil {
			h.writeError(w, http.StatusNotFound, "order not found")
			return
		}
		if !domain.CanTransition(current.Status, req.Status) {
			h.writeError(w, http.StatusConflict, "status transition not allowed")
			return
		}
	}

	order, err := h.store.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update order status", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, order)
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
