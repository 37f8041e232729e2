package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/voltmart/storefront/internal/domain"
)

// OrderHandler turns order.created events into confirmation emails.
type OrderHandler struct {
	sender Sender
	logger *slog.Logger
}

func NewOrderHandler(sender Sender, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		sender: sender,
		logger: logger,
	}
}

// Handle is the messaging.Consumer callback. An event without an email
// address is logged and dropped rather than retried forever.
func (h *OrderHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event", "order_id", event.OrderID, "user_id", event.UserID)

	if event.Email == "" {
		h.logger.Warn("order event without buyer email, skipping", "order_id", event.OrderID)
		return nil
	}

	subject, body := composeConfirmation(event)
	if err := h.sender.Send(ctx, event.Email, subject, body); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	h.logger.Info("confirmation email sent", "order_id", event.OrderID, "to", event.Email)
	return nil
}

func composeConfirmation(event domain.OrderCreatedEvent) (subject, body string) {
	var items int
	for _, line := range event.Lines {
		items += line.Quantity
	}

	subject = "Order confirmation: " + event.OrderID
	body = fmt.Sprintf(
		"Thank you for your order!\n\nOrder %s with %d item(s) has been received and is pending.\nTotal: %d.%02d\n",
		event.OrderID, items, event.Total/100, event.Total%100,
	)
	return subject, body
}
