package domain

import "time"

// OrderCreatedEvent is published to Kafka after a checkout commits. Email is
// resolved at publish time so the notification worker does not need a
// database connection.
type OrderCreatedEvent struct {
	OrderID   string      `json:"order_id"`
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Lines     []OrderLine `json:"lines"`
	Total     int64       `json:"total"`
	Timestamp time.Time   `json:"timestamp"`
}
