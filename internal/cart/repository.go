package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/voltmart/storefront/internal/domain"
)

// ErrVersionConflict means another write landed between our read and write;
// the caller should refetch and retry.
var ErrVersionConflict = errors.New("cart was modified concurrently")

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Get returns the user's cart, or nil when the user never added anything.
// One cart per user is a database constraint (UNIQUE user_id), so this is a
// keyed lookup rather than a scan.
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart := &domain.Cart{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, version, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`, userID).Scan(&cart.ID, &cart.UserID, &cart.Version, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadLines(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// GetOrCreate lazily creates the cart row on first use.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, version, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New().String(), userID, now)
	if err != nil {
		return nil, err
	}

	// Re-read: a concurrent first-add may have won the insert.
	return r.Get(ctx, userID)
}

// SaveLines replaces the cart's line list with a compare-and-swap on the
// version the caller read. A version miss leaves the cart untouched and
// returns ErrVersionConflict.
func (r *CartRepository) SaveLines(ctx context.Context, cartID string, version int64, lines []domain.CartLine) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE carts SET version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`, cartID, version)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrVersionConflict
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return err
	}

	for i, line := range lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cart_lines (cart_id, product_id, quantity, position)
			VALUES ($1, $2, $3, $4)
		`, cartID, line.ProductID, line.Quantity, i)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *CartRepository) loadLines(ctx context.Context, cart *domain.Cart) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY position
	`, cart.ID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	cart.Lines = []domain.CartLine{}
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return err
		}
		cart.Lines = append(cart.Lines, line)
	}

	return rows.Err()
}
