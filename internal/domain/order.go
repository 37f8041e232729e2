package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the guarded lifecycle allows moving from one
// status to another: pending -> shipped -> delivered, and anything may be
// cancelled until it has been delivered. The unguarded admin mode bypasses
// this check entirely.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	switch to {
	case OrderStatusShipped:
		return from == OrderStatusPending
	case OrderStatusDelivered:
		return from == OrderStatusShipped
	case OrderStatusCancelled:
		return from != OrderStatusDelivered
	}
	return false
}

// OrderLine snapshots the unit price at order time; Product.price drifting
// later does not touch it.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Lines           []OrderLine `json:"lines"`
	Total           int64       `json:"total"`
	Status          OrderStatus `json:"status"`
	ShippingAddress string      `json:"shipping_address"`
	CreatedAt       time.Time   `json:"created_at"`
}

// OrderTotal is the sum of line subtotals (price x quantity).
func OrderTotal(lines []OrderLine) int64 {
	var total int64
	for _, line := range lines {
		total += int64(line.Quantity) * line.Price
	}
	return total
}
