package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OwnerPhotoRepository handles database operations for the owner's photos
type OwnerPhotoRepository struct {
	db *pgxpool.Pool
}

// NewOwnerPhotoRepository creates a new owner photo repository
func NewOwnerPhotoRepository(db *pgxpool.Pool) *OwnerPhotoRepository {
	return &OwnerPhotoRepository{db: db}
}

// Add inserts a photo id, reporting whether it was new
func (r *OwnerPhotoRepository) Add(ctx context.Context, fileID string) (bool, error) {
	query := `
		INSERT INTO owner_photos (file_id)
		VALUES ($1)
		ON CONFLICT (file_id) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query, fileID)
	if err != nil {
		return false, fmt.Errorf("failed to add owner photo: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// List returns photo ids in upload order
func (r *OwnerPhotoRepository) List(ctx context.Context) ([]string, error) {
	query := `SELECT file_id FROM owner_photos ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner photos: %w", err)
	}
	defer rows.Close()

	photos := []string{}
	for rows.Next() {
		var fileID string
		if err := rows.Scan(&fileID); err != nil {
			return nil, fmt.Errorf("failed to scan owner photo: %w", err)
		}
		photos = append(photos, fileID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owner photos: %w", err)
	}

	return photos, nil
}

// Clear deletes every owner photo
func (r *OwnerPhotoRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM owner_photos`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear owner photos: %w", err)
	}
	return result.RowsAffected(), nil
}
