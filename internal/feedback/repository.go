package feedback

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/voltmart/storefront/internal/domain"
)

type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	f.ID = uuid.New().String()
	f.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feedback (id, user_id, product_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, f.ID, f.UserID, f.ProductID, f.Rating, f.Comment, f.CreatedAt)
	return err
}

func (r *FeedbackRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, rating, comment, created_at
		FROM feedback
		WHERE product_id = $1
		ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.Feedback{}
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.ProductID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
