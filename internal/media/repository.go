package media

import (
	"context"
	"database/sql"

	"github.com/voltmart/storefront/internal/domain"
)

type MediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) Create(ctx context.Context, m *domain.Media) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO media (id, filename, url, mime_type, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.Filename, m.URL, m.MimeType, m.Size, m.CreatedAt)
	return err
}

func (r *MediaRepository) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	m := &domain.Media{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, filename, url, mime_type, size, created_at
		FROM media
		WHERE id = $1
	`, id).Scan(&m.ID, &m.Filename, &m.URL, &m.MimeType, &m.Size, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *MediaRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM media WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}
