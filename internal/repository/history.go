package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/vaultpass/passgen-go/internal/model"
)

const schemaQuery = `
	CREATE TABLE IF NOT EXISTS generations (
		id         CHAR(36)     NOT NULL PRIMARY KEY,
		length     INT          NOT NULL,
		classes    VARCHAR(64)  NOT NULL,
		each_class VARCHAR(16)  NOT NULL,
		entropy    DOUBLE       NOT NULL,
		label      VARCHAR(16)  NOT NULL,
		created_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_generations_created_at (created_at)
	)`

// HistoryRepository persists generation events. Passwords are never stored.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// EnsureSchema creates the generations table if it does not exist.
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaQuery); err != nil {
		return fmt.Errorf("creating generations table: %w", err)
	}
	return nil
}

// Insert stores rec, assigning a new ID when rec.ID is empty.
func (r *HistoryRepository) Insert(ctx context.Context, rec *model.GenerationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `INSERT INTO generations (id, length, classes, each_class, entropy, label) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.Length, rec.Classes, rec.EachClass, rec.Entropy, rec.Label)
	return err
}

// Recent returns up to limit records, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]model.GenerationRecord, error) {
	query := `SELECT id, length, classes, each_class, entropy, label, created_at
		FROM generations ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.GenerationRecord{}
	for rows.Next() {
		var rec model.GenerationRecord
		if err := rows.Scan(
			&rec.ID, &rec.Length, &rec.Classes, &rec.EachClass,
			&rec.Entropy, &rec.Label, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountByLabel returns the number of generation events per strength label.
func (r *HistoryRepository) CountByLabel(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM generations GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			label string
			n     int
		)
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}

	return counts, rows.Err()
}
