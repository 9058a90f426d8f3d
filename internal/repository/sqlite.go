package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"photo-exchange-bot/internal/models"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS owner (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	interests TEXT,
	looking_for TEXT,
	about TEXT
);
CREATE TABLE IF NOT EXISTS owner_photos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS interested_users (
	user_id INTEGER PRIMARY KEY,
	username TEXT,
	photo_file_id TEXT,
	about_text TEXT,
	created_at INTEGER NOT NULL
);
`

// SQLiteStore persists bot state in a local SQLite file
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens a SQLite store and creates missing tables
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single writer keeps read-modify-write statements serialised
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	store := &SQLiteStore{sqlDB: sqlDB}
	if err := store.EnsureSchema(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return store, nil
}

// EnsureSchema creates missing tables
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the SQLite handle
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLiteStore) GetOwnerProfile(ctx context.Context) (*models.OwnerProfile, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT COALESCE(interests, ''), COALESCE(looking_for, ''), COALESCE(about, '') FROM owner WHERE id = 1`)
	var profile models.OwnerProfile
	if err := row.Scan(&profile.Interests, &profile.LookingFor, &profile.About); err != nil {
		if err == sql.ErrNoRows {
			return &models.OwnerProfile{}, nil
		}
		return nil, fmt.Errorf("get owner profile: %w", err)
	}
	return &profile, nil
}

func (s *SQLiteStore) SetOwnerField(ctx context.Context, field models.OwnerField, value string) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	query := fmt.Sprintf(
		`INSERT INTO owner (id, %[1]s) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET %[1]s = excluded.%[1]s`, field)
	if _, err := s.sqlDB.ExecContext(ctx, query, value); err != nil {
		return fmt.Errorf("set owner %s: %w", field, err)
	}
	return nil
}

func (s *SQLiteStore) ClearOwnerField(ctx context.Context, field models.OwnerField) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if _, err := s.sqlDB.ExecContext(ctx, fmt.Sprintf(`UPDATE owner SET %s = NULL WHERE id = 1`, field)); err != nil {
		return fmt.Errorf("clear owner %s: %w", field, err)
	}
	return nil
}

func (s *SQLiteStore) AddOwnerPhoto(ctx context.Context, fileID string) (bool, error) {
	result, err := s.sqlDB.ExecContext(ctx, `INSERT OR IGNORE INTO owner_photos (file_id) VALUES (?)`, fileID)
	if err != nil {
		return false, fmt.Errorf("add owner photo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add owner photo: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListOwnerPhotos(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT file_id FROM owner_photos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list owner photos: %w", err)
	}
	defer rows.Close()

	photos := []string{}
	for rows.Next() {
		var fileID string
		if err := rows.Scan(&fileID); err != nil {
			return nil, fmt.Errorf("scan owner photo: %w", err)
		}
		photos = append(photos, fileID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owner photos: %w", err)
	}
	return photos, nil
}

func (s *SQLiteStore) ClearOwnerPhotos(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM owner_photos`); err != nil {
		return fmt.Errorf("clear owner photos: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertInterestRecord(ctx context.Context, rec *models.InterestRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR REPLACE INTO interested_users (user_id, username, photo_file_id, about_text, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.VisitorID, rec.Username, rec.PhotoID, rec.AboutText, rec.CreatedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert interest record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListInterestRecords(ctx context.Context) ([]*models.InterestRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT user_id, COALESCE(username, ''), COALESCE(photo_file_id, ''), COALESCE(about_text, ''), created_at
		 FROM interested_users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list interest records: %w", err)
	}
	defer rows.Close()

	var records []*models.InterestRecord
	for rows.Next() {
		var (
			rec       models.InterestRecord
			createdAt int64
		)
		if err := rows.Scan(&rec.VisitorID, &rec.Username, &rec.PhotoID, &rec.AboutText, &createdAt); err != nil {
			return nil, fmt.Errorf("scan interest record: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interest records: %w", err)
	}
	return records, nil
}
