package orders

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/voltmart/storefront/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, total, shipping_address, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.UserID, &order.Status, &order.Total, &order.ShippingAddress, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, price
		FROM order_lines
		WHERE order_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.Price); err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

// ListByUser returns the user's orders newest first, lines included.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT id, user_id, status, total, shipping_address, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

// ListAll is the admin view over every order.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT id, user_id, status, total, shipping_address, created_at
		FROM orders
		ORDER BY created_at DESC
	`)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.Total, &order.ShippingAddress, &order.CreatedAt); err != nil {
			return nil, err
		}
		order.Lines = []domain.OrderLine{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	// Single lines query for the whole page instead of one per order.
	lineRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, quantity, price
		FROM order_lines
		WHERE order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = lineRows.Close() }()

	for lineRows.Next() {
		var orderID string
		var line domain.OrderLine
		if err := lineRows.Scan(&orderID, &line.ProductID, &line.Quantity, &line.Price); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Lines = append(order.Lines, line)
	}

	if err := lineRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}
