// Package postgres holds the optional relational persistence layer: an
// audit log of CSV imports. The engine itself never touches the database;
// the table exists for operational history across restarts.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/ingest"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ImportRecord is one logged CSV import.
type ImportRecord struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"` // campaigns, flows, subscribers
	Filename    string    `json:"filename"`
	RowsRead    int       `json:"rows_read"`
	Imported    int       `json:"imported"`
	SkippedRows int       `json:"skipped_rows"`
	MissingDate int       `json:"missing_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// ImportRepo logs imports to PostgreSQL.
type ImportRepo struct{ db *sql.DB }

// NewImportRepo creates a Postgres-backed import log.
func NewImportRepo(db *sql.DB) *ImportRepo { return &ImportRepo{db: db} }

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the import log table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analytics_imports (
			id           UUID PRIMARY KEY,
			kind         TEXT NOT NULL,
			filename     TEXT NOT NULL DEFAULT '',
			rows_read    INTEGER NOT NULL,
			imported     INTEGER NOT NULL,
			skipped_rows INTEGER NOT NULL,
			missing_date INTEGER NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate imports: %w", err)
	}
	return nil
}

// Record logs a completed import and returns its ID.
func (r *ImportRepo) Record(ctx context.Context, kind, filename string, stats ingest.ImportStats) (string, error) {
	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analytics_imports
			(id, kind, filename, rows_read, imported, skipped_rows, missing_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, id, kind, filename, stats.RowsRead, stats.Imported, stats.SkippedRows, stats.MissingDate)
	if err != nil {
		return "", fmt.Errorf("record import: %w", err)
	}
	return id, nil
}

// Get fetches one import record by ID.
func (r *ImportRepo) Get(ctx context.Context, id string) (*ImportRecord, error) {
	rec := &ImportRecord{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, kind, filename, rows_read, imported, skipped_rows, missing_date, created_at
		FROM analytics_imports
		WHERE id = $1
	`, id).Scan(
		&rec.ID, &rec.Kind, &rec.Filename, &rec.RowsRead,
		&rec.Imported, &rec.SkippedRows, &rec.MissingDate, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import: %w", err)
	}
	return rec, nil
}

// List returns the most recent imports, newest first.
func (r *ImportRepo) List(ctx context.Context, limit int) ([]ImportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, filename, rows_read, imported, skipped_rows, missing_date, created_at
		FROM analytics_imports
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var rec ImportRecord
		if err := rows.Scan(
			&rec.ID, &rec.Kind, &rec.Filename, &rec.RowsRead,
			&rec.Imported, &rec.SkippedRows, &rec.MissingDate, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
