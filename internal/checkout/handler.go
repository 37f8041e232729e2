package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/voltmart/storefront/internal/auth"
	"github.com/voltmart/storefront/internal/domain"
)

// OrderPlacer is satisfied by *CheckoutRepository.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, userID, shippingAddress string) (*domain.Order, error)
}

// UserDirectory resolves the buyer's email for the order event.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Publisher is satisfied by *messaging.Producer. It may be nil when Kafka is
// not configured.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Handler struct {
	placer       OrderPlacer
	users        UserDirectory
	publisher    Publisher
	logger       *slog.Logger
	ordersPlaced metric.Int64Counter
}

func NewHandler(placer OrderPlacer, users UserDirectory, publisher Publisher, logger *slog.Logger) (*Handler, error) {
	meter := otel.Meter("storefront/checkout")
	ordersPlaced, err := meter.Int64Counter("checkout.orders_placed",
		metric.WithDescription("Orders successfully placed through checkout"),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		placer:       placer,
		users:        users,
		publisher:    publisher,
		logger:       logger,
		ordersPlaced: ordersPlaced,
	}, nil
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

// HandleCheckout validates up front, writes nothing on validation failure,
// and places the order atomically. The order.created event is best-effort:
// a publish failure is logged but the committed order stands.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.ShippingAddress) == "" {
		h.writeError(w, http.StatusBadRequest, "shipping address is required")
		return
	}

	order, err := h.placer.PlaceOrder(r.Context(), claims.UserID, req.ShippingAddress)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			h.writeError(w, http.StatusConflict, "cart is empty")
		case errors.Is(err, ErrInsufficientStock):
			h.writeError(w, http.StatusConflict, "insufficient stock")
		case errors.Is(err, ErrProductGone):
			h.writeError(w, http.StatusConflict, "a product in the cart is no longer available")
		default:
			h.logger.Error("failed to place order", "error", err, "user_id", claims.UserID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.ordersPlaced.Add(r.Context(), 1)
	h.publishOrderCreated(r.Context(), order)

	h.logger.Info("order placed", "order_id", order.ID, "user_id", order.UserID, "total", order.Total)
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) publishOrderCreated(ctx context.Context, order *domain.Order) {
	if h.publisher == nil {
		return
	}

	event := domain.OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Lines:     order.Lines,
		Total:     order.Total,
		Timestamp: time.Now().UTC(),
	}

	if h.users != nil {
		user, err := h.users.GetByID(ctx, order.UserID)
		if err != nil {
			h.logger.Error("failed to resolve buyer email", "error", err, "order_id", order.ID)
		} else if user != nil {
			event.Email = user.Email
		}
	}

	if err := h.publisher.Publish(ctx, order.ID, event); err != nil {
		h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
	}
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
