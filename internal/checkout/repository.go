package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voltmart/storefront/internal/domain"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrProductGone       = errors.New("product no longer exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type CheckoutRepository struct {
	db *sql.DB
}

func NewCheckoutRepository(db *sql.DB) *CheckoutRepository {
	return &CheckoutRepository{db: db}
}

// PlaceOrder converts the user's cart into a pending order in a single
// transaction: unit prices are snapshotted from the products table, stock is
// decremented conditionally, the order and its lines are inserted, and the
// cart's lines are cleared (the cart row itself survives, version bumped).
// Any failure rolls the whole thing back.
func (r *CheckoutRepository) PlaceOrder(ctx context.Context, userID, shippingAddress string) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var cartID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM carts WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEmptyCart
		}
		return nil, err
	}

	cartLines, err := readCartLines(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	if len(cartLines) == 0 {
		return nil, ErrEmptyCart
	}

	orderLines := make([]domain.OrderLine, 0, len(cartLines))
	for _, line := range cartLines {
		var price int64
		err := tx.QueryRowContext(ctx, `
			SELECT price FROM products WHERE id = $1 FOR UPDATE
		`, line.ProductID).Scan(&price)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("%w: %s", ErrProductGone, line.ProductID)
			}
			return nil, err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock - $2, updated_at = NOW()
			WHERE id = $1 AND stock >= $2
		`, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}
		if rowsAffected == 0 {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, line.ProductID)
		}

		orderLines = append(orderLines, domain.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     price,
		})
	}

	order := &domain.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Lines:           orderLines,
		Total:           domain.OrderTotal(orderLines),
		Status:          domain.OrderStatusPending,
		ShippingAddress: shippingAddress,
		CreatedAt:       time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, total, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, order.ID, order.UserID, order.Status, order.Total, order.ShippingAddress, order.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, line := range order.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (id, order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), order.ID, line.ProductID, line.Quantity, line.Price)
		if err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE carts SET version = version + 1, updated_at = NOW() WHERE id = $1
	`, cartID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return order, nil
}

func readCartLines(ctx context.Context, tx *sql.Tx, cartID string) ([]domain.CartLine, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT product_id, quantity
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY position
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}
