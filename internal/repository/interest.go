package repository

import (
	"context"
	"fmt"
	"time"

	"photo-exchange-bot/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InterestRepository handles database operations for interest records
type InterestRepository struct {
	db *pgxpool.Pool
}

// NewInterestRepository creates a new interest repository
func NewInterestRepository(db *pgxpool.Pool) *InterestRepository {
	return &InterestRepository{db: db}
}

// Upsert stores the record, replacing any earlier one for the same visitor
func (r *InterestRepository) Upsert(ctx context.Context, rec *models.InterestRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO interested_users (user_id, username, photo_file_id, about_text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			photo_file_id = EXCLUDED.photo_file_id,
			about_text = EXCLUDED.about_text,
			created_at = EXCLUDED.created_at
	`
	_, err := r.db.Exec(ctx, query, rec.VisitorID, rec.Username, rec.PhotoID, rec.AboutText, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert interest record: %w", err)
	}
	return nil
}

// List returns all interest records, newest first
func (r *InterestRepository) List(ctx context.Context) ([]*models.InterestRecord, error) {
	query := `
		SELECT user_id, COALESCE(username, ''), COALESCE(photo_file_id, ''), COALESCE(about_text, ''), created_at
		FROM interested_users
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list interest records: %w", err)
	}
	defer rows.Close()

	var records []*models.InterestRecord
	for rows.Next() {
		var rec models.InterestRecord
		if err := rows.Scan(&rec.VisitorID, &rec.Username, &rec.PhotoID, &rec.AboutText, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interest record: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interest records: %w", err)
	}

	return records, nil
}
