package repository

import (
	"context"
	"errors"
	"fmt"

	"photo-exchange-bot/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUnknownField is returned for text fields outside models.OwnerFields
var ErrUnknownField = errors.New("unknown owner field")

// OwnerRepository handles database operations for the owner's text fields.
// The owner is a single row with id = 1.
type OwnerRepository struct {
	db *pgxpool.Pool
}

// NewOwnerRepository creates a new owner repository
func NewOwnerRepository(db *pgxpool.Pool) *OwnerRepository {
	return &OwnerRepository{db: db}
}

// Get retrieves the owner's text fields. A missing row yields empty fields.
func (r *OwnerRepository) Get(ctx context.Context) (*models.OwnerProfile, error) {
	query := `
		SELECT COALESCE(interests, ''), COALESCE(looking_for, ''), COALESCE(about, '')
		FROM owner
		WHERE id = 1
	`
	var profile models.OwnerProfile
	err := r.db.QueryRow(ctx, query).Scan(&profile.Interests, &profile.LookingFor, &profile.About)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.OwnerProfile{}, nil
		}
		return nil, fmt.Errorf("failed to get owner profile: %w", err)
	}
	return &profile, nil
}

// SetField overwrites one text field, creating the owner row if needed
func (r *OwnerRepository) SetField(ctx context.Context, field models.OwnerField, value string) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	// field is whitelisted above, so it is safe to splice into the statement
	query := fmt.Sprintf(`
		INSERT INTO owner (id, %[1]s) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET %[1]s = EXCLUDED.%[1]s
	`, field)
	if _, err := r.db.Exec(ctx, query, value); err != nil {
		return fmt.Errorf("failed to set owner %s: %w", field, err)
	}
	return nil
}

// ClearField resets one text field to empty
func (r *OwnerRepository) ClearField(ctx context.Context, field models.OwnerField) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	query := fmt.Sprintf(`UPDATE owner SET %s = NULL WHERE id = 1`, field)
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to clear owner %s: %w", field, err)
	}
	return nil
}
