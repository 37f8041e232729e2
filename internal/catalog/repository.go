package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/voltmart/storefront/internal/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	product.ID = uuid.New().String()
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, stock, category, media_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, product.ID, product.Name, product.Description, product.Price, product.Stock,
		nullIfEmpty(string(product.Category)), product.MediaID, now)
	return err
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product := &domain.Product{}
	var category sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, stock, category, media_id, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Stock, &category, &product.MediaID, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	product.Category = domain.Category(category.String)
	return product, nil
}

func (r *ProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

// List returns products newest first, optionally filtered by category.
func (r *ProductRepository) List(ctx context.Context, category domain.Category, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 100
	}

	var (
		rows *sql.Rows
		err  error
	)
	if category != "" {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, name, description, price, stock, category, media_id, created_at, updated_at
			FROM products
			WHERE category = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, string(category), limit)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, name, description, price, stock, category, media_id, created_at, updated_at
			FROM products
			ORDER BY created_at DESC
			LIMIT $1
		`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		var cat sql.NullString
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.Price,
			&product.Stock, &cat, &product.MediaID, &product.CreatedAt, &product.UpdatedAt,
		); err != nil {
			return nil, err
		}
		product.Category = domain.Category(cat.String)
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, category = $6, media_id = $7, updated_at = NOW()
		WHERE id = $1
	`, product.ID, product.Name, product.Description, product.Price, product.Stock,
		nullIfEmpty(string(product.Category)), product.MediaID)
	return err
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
