package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/ingest"
)

func TestRecordImport(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO analytics_imports").
		WithArgs(sqlmock.AnyArg(), "campaigns", "march.csv", 100, 95, 3, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewImportRepo(db)
	id, err := repo.Record(context.Background(), "campaigns", "march.csv", ingest.ImportStats{
		RowsRead:    100,
		Imported:    95,
		SkippedRows: 3,
		MissingDate: 2,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetImport(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "kind", "filename", "rows_read", "imported", "skipped_rows", "missing_date", "created_at",
	}).AddRow("abc", "flows", "flows.csv", 50, 48, 2, 0, created)

	mock.ExpectQuery("SELECT id, kind, filename").
		WithArgs("abc").
		WillReturnRows(rows)

	repo := NewImportRepo(db)
	rec, err := repo.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "flows", rec.Kind)
	assert.Equal(t, 48, rec.Imported)
	assert.True(t, rec.CreatedAt.Equal(created))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetImportNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, kind, filename").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "kind", "filename", "rows_read", "imported", "skipped_rows", "missing_date", "created_at",
		}))

	repo := NewImportRepo(db)
	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListImports(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "kind", "filename", "rows_read", "imported", "skipped_rows", "missing_date", "created_at",
	}).
		AddRow("b", "subscribers", "", 200, 199, 1, 0, now).
		AddRow("a", "campaigns", "q1.csv", 100, 100, 0, 0, now.Add(-time.Hour))

	mock.ExpectQuery("SELECT id, kind, filename").
		WithArgs(50).
		WillReturnRows(rows)

	repo := NewImportRepo(db)
	records, err := repo.List(context.Background(), 0) // zero limit defaults to 50
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "subscribers", records[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}
