package repository

import (
	"context"
	"fmt"

	"photo-exchange-bot/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS owner (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	interests TEXT,
	looking_for TEXT,
	about TEXT
);
CREATE TABLE IF NOT EXISTS owner_photos (
	id BIGSERIAL PRIMARY KEY,
	file_id TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS interested_users (
	user_id BIGINT PRIMARY KEY,
	username TEXT,
	photo_file_id TEXT,
	about_text TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PostgresStore composes the per-entity repositories into one store
type PostgresStore struct {
	db        *pgxpool.Pool
	owner     *OwnerRepository
	photos    *OwnerPhotoRepository
	interests *InterestRepository
}

// OpenPostgres connects, pings and prepares the schema
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore wraps an existing pool
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		db:        db,
		owner:     NewOwnerRepository(db),
		photos:    NewOwnerPhotoRepository(db),
		interests: NewInterestRepository(db),
	}
}

// EnsureSchema creates missing tables
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetOwnerProfile(ctx context.Context) (*models.OwnerProfile, error) {
	return s.owner.Get(ctx)
}

func (s *PostgresStore) SetOwnerField(ctx context.Context, field models.OwnerField, value string) error {
	return s.owner.SetField(ctx, field, value)
}

func (s *PostgresStore) ClearOwnerField(ctx context.Context, field models.OwnerField) error {
	return s.owner.ClearField(ctx, field)
}

func (s *PostgresStore) AddOwnerPhoto(ctx context.Context, fileID string) (bool, error) {
	return s.photos.Add(ctx, fileID)
}

func (s *PostgresStore) ListOwnerPhotos(ctx context.Context) ([]string, error) {
	return s.photos.List(ctx)
}

func (s *PostgresStore) ClearOwnerPhotos(ctx context.Context) error {
	_, err := s.photos.Clear(ctx)
	return err
}

func (s *PostgresStore) UpsertInterestRecord(ctx context.Context, rec *models.InterestRecord) error {
	return s.interests.Upsert(ctx, rec)
}

func (s *PostgresStore) ListInterestRecords(ctx context.Context) ([]*models.InterestRecord, error) {
	return s.interests.List(ctx)
}

// Close releases the pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
