package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/voltmart/storefront/internal/domain"
)

type fakeSender struct {
	to      string
	subject string
	body    string
	calls   int
	err     error
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	f.calls++
	f.to = to
	f.subject = subject
	f.body = body
	return f.err
}

func eventPayload(t *testing.T, event domain.OrderCreatedEvent) []byte {
	t.Helper()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return payload
}

func TestOrderHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("sends a confirmation to the buyer", func(t *testing.T) {
		sender := &fakeSender{}
		handler := NewOrderHandler(sender, logger)

		payload := eventPayload(t, domain.OrderCreatedEvent{
			OrderID: "order-1",
			UserID:  "user-1",
			Email:   "jo@example.com",
			Lines: []domain.OrderLine{
				{ProductID: "prod-1", Quantity: 2, Price: 500},
			},
			Total: 1000,
		})

		if err := handler.Handle(context.Background(), payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if sender.to != "jo@example.com" {
			t.Errorf("expected recipient jo@example.com, got %q", sender.to)
		}
		if !strings.Contains(sender.subject, "order-1") {
			t.Errorf("expected order id in subject, got %q", sender.subject)
		}
		if !strings.Contains(sender.body, "2 item(s)") || !strings.Contains(sender.body, "10.00") {
			t.Errorf("unexpected body %q", sender.body)
		}
	})

	t.Run("drops events without a buyer email", func(t *testing.T) {
		sender := &fakeSender{}
		handler := NewOrderHandler(sender, logger)

		payload := eventPayload(t, domain.OrderCreatedEvent{OrderID: "order-1", UserID: "user-1"})

		if err := handler.Handle(context.Background(), payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sender.calls != 0 {
			t.Errorf("expected no send attempt, got %d", sender.calls)
		}
	})

	t.Run("propagates sender failures", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("smtp down")}
		handler := NewOrderHandler(sender, logger)

		payload := eventPayload(t, domain.OrderCreatedEvent{
			OrderID: "order-1", Email: "jo@example.com", Total: 100,
		})

		if err := handler.Handle(context.Background(), payload); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		handler := NewOrderHandler(&fakeSender{}, logger)

		if err := handler.Handle(context.Background(), []byte("{not json")); err == nil {
			t.Fatal("expected an error")
		}
	})
}
