package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFiles() fstest.MapFS {
	return fstest.MapFS{
		"migrations/001_create_customers.sql": {Data: []byte("CREATE TABLE customers (id UUID)")},
		"migrations/002_add_index.sql":        {Data: []byte("CREATE INDEX customers_name ON customers (name)")},
	}
}

func TestMigrator_AppliesPendingInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM schema_migrations WHERE name = \$1`).
		WithArgs("001_create_customers.sql").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM schema_migrations WHERE name = \$1`).
		WithArgs("002_add_index.sql").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE INDEX customers_name").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("002_add_index.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, newMigrator(db, testFiles(), nil).Run(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_RollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	files := fstest.MapFS{
		"migrations/001_create_customers.sql": {Data: []byte("CREATE TABLE customers (id UUID)")},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE customers").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err = newMigrator(db, files, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_create_customers.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddedMigrations(t *testing.T) {
	data, err := migrationsFS.ReadFile("migrations/001_create_customers.sql")
	require.NoError(t, err)
	assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS customers")
	assert.Contains(t, string(data), "images TEXT[] NOT NULL DEFAULT '{}'")
}
